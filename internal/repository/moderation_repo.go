package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/storyhub-api/internal/apperror"
	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/models"
)

// moderationRepo is the concrete implementation of ModerationRepository
type moderationRepo struct {
	db *database.DB
}

// NewModerationRepo creates a new moderation repository
func NewModerationRepo(db *database.DB) ModerationRepository {
	return &moderationRepo{db: db}
}

// Apply updates the story conditionally on its previous status and appends the history entry
func (r *moderationRepo) Apply(ctx context.Context, t *models.Transition) error {
	s := t.Story
	e := t.Entry

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE stories SET status = $2, published_at = $3, rejection_feedback = $4,
				last_moderated_by = $5, last_moderated_at = $6, submitted_at = $7, updated_at = $8
			WHERE id = $1 AND status = $9
		`,
			s.ID, s.Status, s.PublishedAt, s.RejectionFeedback,
			s.LastModeratedBy, s.LastModeratedAt, s.SubmittedAt, s.UpdatedAt, t.Expected,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.Conflict("story status changed while it was being moderated (expected %s)", t.Expected)
		}

		return tx.QueryRowContext(ctx, `
			INSERT INTO story_moderation_history
				(story_id, action, moderator_id, moderator_name, previous_status, new_status, feedback, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`,
			e.StoryID, e.Action, e.ModeratorID, e.ModeratorName,
			e.PreviousStatus, e.NewStatus, e.Feedback, e.CreatedAt,
		).Scan(&e.ID)
	})
}

// History returns the story's entries oldest first
func (r *moderationRepo) History(ctx context.Context, storyID string) ([]models.ModerationEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, story_id, action, moderator_id, moderator_name, previous_status, new_status, feedback, created_at
		FROM story_moderation_history
		WHERE story_id = $1
		ORDER BY id
	`, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.ModerationEntry, 0)
	for rows.Next() {
		var (
			e        models.ModerationEntry
			feedback sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &e.StoryID, &e.Action, &e.ModeratorID, &e.ModeratorName,
			&e.PreviousStatus, &e.NewStatus, &feedback, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if feedback.Valid {
			e.Feedback = &feedback.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByStatus returns a count for every status, zero included
func (r *moderationRepo) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	counts := make(map[models.Status]int, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		counts[st] = 0
	}

	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM stories GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status models.Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountPendingBefore counts pending stories that entered the queue before the cutoff
func (r *moderationRepo) CountPendingBefore(ctx context.Context, before time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stories WHERE status = $1 AND COALESCE(submitted_at, created_at) < $2",
		models.StatusPending, before,
	).Scan(&n)
	return n, err
}

// CountModeratedSince counts stories whose last moderation is at or after since
func (r *moderationRepo) CountModeratedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stories WHERE last_moderated_at >= $1", since,
	).Scan(&n)
	return n, err
}

// Queue lists stories in the given status, longest waiting first
func (r *moderationRepo) Queue(ctx context.Context, status models.Status, limit, offset int) ([]*models.Story, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stories WHERE status = $1", status,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+storyColumns+" FROM stories WHERE status = $1 ORDER BY updated_at ASC, id LIMIT $2 OFFSET $3",
		status, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	stories := make([]*models.Story, 0, limit)
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, 0, err
		}
		stories = append(stories, s)
	}
	return stories, total, rows.Err()
}
