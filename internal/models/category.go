package models

import "time"

// DefaultCategoryName is assigned to stories created without a category
const DefaultCategoryName = "general"

// Category classifies stories
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
