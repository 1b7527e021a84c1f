package models

import (
	"time"
)

// Role is a user's permission level
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleUser:      true,
	RoleModerator: true,
	RoleAdmin:     true,
}

// User represents a user in the system
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	Email          string    `json:"email,omitempty"`
	Role           Role      `json:"role"`
	Bio            string    `json:"bio"`
	FollowersCount int       `json:"followers_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Name returns the display name, falling back to the username
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Actor is the authenticated caller of an operation
type Actor struct {
	ID   string
	Name string
	Role Role
}

// CanModerate reports whether the actor may approve/reject/unpublish
func (a Actor) CanModerate() bool {
	return a.Role == RoleModerator || a.Role == RoleAdmin
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
