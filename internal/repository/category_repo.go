package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/models"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// GetOrCreate returns the category with the given name, creating it on first use
func (r *categoryRepo) GetOrCreate(ctx context.Context, name string) (*models.Category, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, slug, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, uuid.NewString(), name, models.Slugify(name), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	var c models.Category
	err = r.db.QueryRowContext(ctx,
		"SELECT id, name, slug, created_at FROM categories WHERE name = $1", name,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Exists checks if a category with the given ID exists
func (r *categoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)", id).Scan(&exists)
	return exists, err
}
