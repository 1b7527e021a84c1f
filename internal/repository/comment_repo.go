package repository

import (
	"context"
	"database/sql"

	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/models"
)

const commentColumns = "id, story_id, author_id, author_name, parent_id, body, hidden, created_at, updated_at"

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var (
		c        models.Comment
		parentID sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.StoryID, &c.AuthorID, &c.AuthorName, &parentID,
		&c.Body, &c.Hidden, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	return &c, nil
}

// Create inserts a comment and refreshes the story's comment count
func (r *commentRepo) Create(ctx context.Context, c *models.Comment) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comments (id, story_id, author_id, author_name, parent_id, body, hidden, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			c.ID, c.StoryID, c.AuthorID, c.AuthorName, c.ParentID,
			c.Body, c.Hidden, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return recountEngagement(ctx, tx, []string{c.StoryID})
	})
}

// GetByID retrieves a comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := scanComment(r.db.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id = $1", id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByStory returns the story's comments oldest first
func (r *commentRepo) ListByStory(ctx context.Context, storyID string, includeHidden bool) ([]models.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments WHERE story_id = $1"
	if !includeHidden {
		query += " AND NOT hidden"
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// SetHidden hides or restores a comment and refreshes the story's comment count
func (r *commentRepo) SetHidden(ctx context.Context, id string, hidden bool) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var storyID string
		err := tx.QueryRowContext(ctx,
			"UPDATE comments SET hidden = $2, updated_at = NOW() WHERE id = $1 RETURNING story_id",
			id, hidden,
		).Scan(&storyID)
		if err != nil {
			return err
		}
		return recountEngagement(ctx, tx, []string{storyID})
	})
}
