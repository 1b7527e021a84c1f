package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/models"
)

const storyColumns = `id, slug, title, content, excerpt, read_time, genre, hashtags, tags,
	category_id, author_id, author_name, status, rejection_feedback, last_moderated_by,
	last_moderated_at, submitted_at, published_at, views, likes, saves, comments, shares, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanStory reads one row selected with storyColumns
func scanStory(row rowScanner) (*models.Story, error) {
	var (
		s           models.Story
		feedback    sql.NullString
		moderatedBy sql.NullString
		moderatedAt sql.NullTime
		submittedAt sql.NullTime
		publishedAt sql.NullTime
	)

	err := row.Scan(
		&s.ID, &s.Slug, &s.Title, &s.Content, &s.Excerpt, &s.ReadTime, &s.Genre,
		pq.Array(&s.Hashtags), pq.Array(&s.Tags),
		&s.CategoryID, &s.AuthorID, &s.AuthorName, &s.Status, &feedback, &moderatedBy,
		&moderatedAt, &submittedAt, &publishedAt, &s.Views, &s.Likes, &s.Saves, &s.Comments, &s.Shares,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if feedback.Valid {
		s.RejectionFeedback = &feedback.String
	}
	if moderatedBy.Valid {
		s.LastModeratedBy = &moderatedBy.String
	}
	if moderatedAt.Valid {
		s.LastModeratedAt = &moderatedAt.Time
	}
	if submittedAt.Valid {
		s.SubmittedAt = &submittedAt.Time
	}
	if publishedAt.Valid {
		s.PublishedAt = &publishedAt.Time
	}
	if s.Hashtags == nil {
		s.Hashtags = []string{}
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return &s, nil
}

// storyRepo is the concrete implementation of StoryRepository
type storyRepo struct {
	db *database.DB
}

// NewStoryRepo creates a new story repository
func NewStoryRepo(db *database.DB) StoryRepository {
	return &storyRepo{db: db}
}

// Create inserts a new story
func (r *storyRepo) Create(ctx context.Context, s *models.Story) error {
	query := `
		INSERT INTO stories (id, slug, title, content, excerpt, read_time, genre, hashtags, tags,
			category_id, author_id, author_name, status, submitted_at, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Slug, s.Title, s.Content, s.Excerpt, s.ReadTime, s.Genre,
		pq.Array(s.Hashtags), pq.Array(s.Tags),
		s.CategoryID, s.AuthorID, s.AuthorName, s.Status, s.SubmittedAt, s.PublishedAt,
		s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// Update writes the author-editable fields. Status and counters are untouched.
func (r *storyRepo) Update(ctx context.Context, s *models.Story) error {
	query := `
		UPDATE stories SET slug = $2, title = $3, content = $4, excerpt = $5, read_time = $6,
			genre = $7, hashtags = $8, tags = $9, category_id = $10, updated_at = $11
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Slug, s.Title, s.Content, s.Excerpt, s.ReadTime,
		s.Genre, pq.Array(s.Hashtags), pq.Array(s.Tags), s.CategoryID, s.UpdatedAt,
	)
	return err
}

// GetByID retrieves a story by ID
func (r *storyRepo) GetByID(ctx context.Context, id string) (*models.Story, error) {
	return r.getOne(ctx, "id", id)
}

// GetBySlug retrieves a story by slug
func (r *storyRepo) GetBySlug(ctx context.Context, slug string) (*models.Story, error) {
	return r.getOne(ctx, "slug", slug)
}

func (r *storyRepo) getOne(ctx context.Context, column, value string) (*models.Story, error) {
	query := fmt.Sprintf("SELECT %s FROM stories WHERE %s = $1", storyColumns, column)

	story, err := scanStory(r.db.QueryRowContext(ctx, query, value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return story, nil
}

// Delete removes a story and, through cascades, its history, comments and engagement rows
func (r *storyRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM stories WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// IncrementViews adds one view
func (r *storyRepo) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE stories SET views = views + 1 WHERE id = $1", id)
	return err
}

// IncrementShares adds one share and returns the new total
func (r *storyRepo) IncrementShares(ctx context.Context, id string) (int, error) {
	var shares int
	err := r.db.QueryRowContext(ctx,
		"UPDATE stories SET shares = shares + 1 WHERE id = $1 RETURNING shares", id,
	).Scan(&shares)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return shares, err
}

// ToggleLike adds or removes the user's like
func (r *storyRepo) ToggleLike(ctx context.Context, storyID, userID string) (*models.Engagement, error) {
	return r.toggle(ctx, "story_likes", "likes", storyID, userID)
}

// ToggleSave adds or removes the user's bookmark
func (r *storyRepo) ToggleSave(ctx context.Context, storyID, userID string) (*models.Engagement, error) {
	return r.toggle(ctx, "story_saves", "saves", storyID, userID)
}

// toggle flips the relationship row and recomputes the counter from the table
// in the same transaction. The story row is locked so concurrent toggles serialize.
func (r *storyRepo) toggle(ctx context.Context, table, counter, storyID, userID string) (*models.Engagement, error) {
	var result *models.Engagement

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var locked string
		err := tx.QueryRowContext(ctx, "SELECT id FROM stories WHERE id = $1 FOR UPDATE", storyID).Scan(&locked)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE story_id = $1 AND user_id = $2", table),
			storyID, userID,
		)
		if err != nil {
			return err
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return err
		}

		if removed == 0 {
			_, err = tx.ExecContext(ctx,
				fmt.Sprintf("INSERT INTO %s (story_id, user_id, created_at) VALUES ($1, $2, $3)", table),
				storyID, userID, time.Now().UTC(),
			)
			if err != nil {
				return err
			}
		}

		var count int
		err = tx.QueryRowContext(ctx, fmt.Sprintf(
			"UPDATE stories SET %[1]s = (SELECT COUNT(*) FROM %[2]s WHERE story_id = $1) WHERE id = $1 RETURNING %[1]s",
			counter, table,
		), storyID).Scan(&count)
		if err != nil {
			return err
		}

		result = &models.Engagement{StoryID: storyID, Active: removed == 0, Count: count}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StreamAll streams stories matching filter for export
func (r *storyRepo) StreamAll(ctx context.Context, filter ExportFilter, callback func(*models.Story) error) error {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}

	query := "SELECT " + storyColumns + " FROM stories"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return err
		}
		if err := callback(story); err != nil {
			return err
		}
	}

	return rows.Err()
}

// recountEngagement recomputes the derived counters of the given stories from
// their relationship tables
func recountEngagement(ctx context.Context, tx *sql.Tx, storyIDs []string) error {
	if len(storyIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE stories SET
			likes = (SELECT COUNT(*) FROM story_likes l WHERE l.story_id = stories.id),
			saves = (SELECT COUNT(*) FROM story_saves v WHERE v.story_id = stories.id),
			comments = (SELECT COUNT(*) FROM comments c WHERE c.story_id = stories.id AND NOT c.hidden)
		WHERE id = ANY($1::uuid[])
	`, pq.Array(storyIDs))
	return err
}
