package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/repository"
	"github.com/storyhub-api/internal/validation"
)

// userService is the concrete implementation of UserService
type userService struct {
	repo repository.UserRepository
	log  zerolog.Logger
}

// newUserService creates a new UserService
func newUserService(repo repository.UserRepository, log zerolog.Logger) *userService {
	return &userService{
		repo: repo,
		log:  log.With().Str("service", "user").Logger(),
	}
}

// Create registers a user. Missing id and role are filled in.
func (s *userService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	user.Email = strings.TrimSpace(user.Email)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := validation.ValidateUser(user); err != nil {
		return nil, err
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

// Delete removes a user with their stories and comments. Admin only.
func (s *userService) Delete(ctx context.Context, id string, by models.Actor) error {
	if !by.IsAdmin() {
		return apperror.Forbidden("only admins can delete users")
	}
	if id == by.ID {
		return apperror.Validation("admins cannot delete their own account")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return apperror.NotFound("user %s not found", id)
	}

	s.log.Info().Str("user_id", id).Str("by", by.ID).Msg("User deleted")
	return nil
}

// Count returns the number of users
func (s *userService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
