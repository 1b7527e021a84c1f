package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/models"
)

const userColumns = "id, username, display_name, email, role, bio, followers_count, created_at, updated_at"

// userRepo is the concrete implementation of UserRepository
type userRepo struct {
	db *database.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *database.DB) UserRepository {
	return &userRepo{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.Role, &u.Bio,
		&u.FollowersCount, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, display_name, email, role, bio, followers_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.DisplayName, user.Email, user.Role, user.Bio,
		user.FollowersCount, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByIDs retrieves the users that exist among ids, keyed by ID
func (r *userRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ANY($1::uuid[])", pq.Array(ids),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

// Delete removes a user. Their stories, comments, likes and saves go with them
// through cascades; counters of other stories they engaged with are recomputed.
func (r *userRepo) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT story_id FROM story_likes WHERE user_id = $1
			UNION SELECT story_id FROM story_saves WHERE user_id = $1
			UNION SELECT story_id FROM comments WHERE author_id = $1
		`, id)
		if err != nil {
			return err
		}
		var touched []string
		for rows.Next() {
			var storyID string
			if err := rows.Scan(&storyID); err != nil {
				rows.Close()
				return err
			}
			touched = append(touched, storyID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		deleted = true

		// Stories owned by the user are gone; the update skips them.
		return recountEngagement(ctx, tx, touched)
	})
	return deleted, err
}

// Count returns the total number of users
func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
