package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/storyhub-api/internal/database"
	"github.com/storyhub-api/internal/models"
	"github.com/storyhub-api/internal/search"
)

// searchRepo is the concrete implementation of SearchRepository
type searchRepo struct {
	db *database.DB
}

// NewSearchRepo creates a new search repository
func NewSearchRepo(db *database.DB) SearchRepository {
	return &searchRepo{db: db}
}

// SearchStories runs the story query and a COUNT over the same filter
func (r *searchRepo) SearchStories(ctx context.Context, q search.StoryQuery, limit, offset int) ([]models.StoryHit, int, error) {
	c := search.BuildStoryClause(q)
	from := "FROM stories s JOIN users u ON u.id = s.author_id WHERE " + c.Where

	var total int
	countArgs := append([]interface{}(nil), c.Args...)
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+from, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stories: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT s.id, s.slug, s.title, s.excerpt, s.genre, s.hashtags, s.read_time, s.status,
			u.id, u.username, u.display_name, s.views, s.likes, s.comments, s.published_at, s.created_at
		%s
		ORDER BY %s
		LIMIT %s OFFSET %s
	`, from, c.OrderBy, c.NextArg(limit), c.NextArg(offset))

	rows, err := r.db.QueryContext(ctx, query, c.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search stories: %w", err)
	}
	defer rows.Close()

	hits := make([]models.StoryHit, 0, limit)
	for rows.Next() {
		var (
			h           models.StoryHit
			publishedAt sql.NullTime
		)
		if err := rows.Scan(
			&h.ID, &h.Slug, &h.Title, &h.Excerpt, &h.Genre, pq.Array(&h.Hashtags), &h.ReadTime, &h.Status,
			&h.Author.ID, &h.Author.Username, &h.Author.DisplayName,
			&h.Views, &h.Likes, &h.Comments, &publishedAt, &h.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		if publishedAt.Valid {
			h.PublishedAt = &publishedAt.Time
		}
		if h.Hashtags == nil {
			h.Hashtags = []string{}
		}
		hits = append(hits, h)
	}
	return hits, total, rows.Err()
}

// SearchUsers ranks users matching text by username / display name
func (r *searchRepo) SearchUsers(ctx context.Context, text string, sort search.SortMode, limit, offset int) ([]models.UserHit, int, error) {
	c := search.BuildUserClause(text, sort)

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users u WHERE "+c.Where, c.Args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT u.id, u.username, u.display_name, u.bio, u.followers_count, u.created_at, %s AS score
		FROM users u
		WHERE %s
		ORDER BY %s
		LIMIT %s OFFSET %s
	`, c.Score, c.Where, c.OrderBy, c.NextArg(limit), c.NextArg(offset))

	rows, err := r.db.QueryContext(ctx, query, c.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	hits := make([]models.UserHit, 0, limit)
	for rows.Next() {
		var h models.UserHit
		if err := rows.Scan(
			&h.ID, &h.Username, &h.DisplayName, &h.Bio, &h.FollowersCount, &h.CreatedAt, &h.Score,
		); err != nil {
			return nil, 0, err
		}
		hits = append(hits, h)
	}
	return hits, total, rows.Err()
}

// SuggestTitles returns titles of published stories containing text
func (r *searchRepo) SuggestTitles(ctx context.Context, text string, limit int) ([]string, error) {
	return r.strings(ctx, `
		SELECT title FROM stories
		WHERE status = $1 AND title ILIKE $2
		ORDER BY views DESC, id
		LIMIT $3
	`, models.StatusPublished, search.Contains(text), limit)
}

// SuggestUsernames returns usernames containing text
func (r *searchRepo) SuggestUsernames(ctx context.Context, text string, limit int) ([]string, error) {
	return r.strings(ctx, `
		SELECT username FROM users
		WHERE username ILIKE $1
		ORDER BY followers_count DESC, id
		LIMIT $2
	`, search.Contains(text), limit)
}

// SuggestHashtags returns distinct hashtags of published stories containing text
func (r *searchRepo) SuggestHashtags(ctx context.Context, text string, limit int) ([]string, error) {
	return r.strings(ctx, `
		SELECT DISTINCT tag FROM stories s, unnest(s.hashtags) AS tag
		WHERE s.status = $1 AND tag ILIKE $2
		ORDER BY tag
		LIMIT $3
	`, models.StatusPublished, search.Contains(text), limit)
}

// Genres returns the distinct genres of published stories
func (r *searchRepo) Genres(ctx context.Context) ([]string, error) {
	return r.strings(ctx,
		"SELECT DISTINCT genre FROM stories WHERE status = $1 ORDER BY genre",
		models.StatusPublished,
	)
}

// PopularTags returns the most used hashtags of published stories
func (r *searchRepo) PopularTags(ctx context.Context, limit int) ([]models.TagCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tag, COUNT(*) AS n FROM stories s, unnest(s.hashtags) AS tag
		WHERE s.status = $1
		GROUP BY tag
		ORDER BY n DESC, tag
		LIMIT $2
	`, models.StatusPublished, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]models.TagCount, 0, limit)
	for rows.Next() {
		var t models.TagCount
		if err := rows.Scan(&t.Tag, &t.Count); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// TopAuthors returns the authors with the most published stories
func (r *searchRepo) TopAuthors(ctx context.Context, limit int) ([]models.AuthorCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.display_name, COUNT(*) AS n
		FROM stories s JOIN users u ON u.id = s.author_id
		WHERE s.status = $1
		GROUP BY u.id, u.username, u.display_name
		ORDER BY n DESC, u.username
		LIMIT $2
	`, models.StatusPublished, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := make([]models.AuthorCount, 0, limit)
	for rows.Next() {
		var a models.AuthorCount
		if err := rows.Scan(&a.ID, &a.Username, &a.DisplayName, &a.Stories); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *searchRepo) strings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
