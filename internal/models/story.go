package models

import (
	"strings"
	"time"
)

// Status is the story lifecycle state
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
)

// AllStatuses lists the canonical statuses in lifecycle order
var AllStatuses = []Status{StatusDraft, StatusPending, StatusPublished, StatusRejected}

// statusAliases maps legacy vocabulary onto the canonical statuses
var statusAliases = map[string]Status{
	"draft":       StatusDraft,
	"pending":     StatusPending,
	"in_review":   StatusPending,
	"published":   StatusPublished,
	"approved":    StatusPublished,
	"rejected":    StatusRejected,
	"unpublished": StatusDraft,
}

// ParseStatus normalizes a status name, accepting legacy aliases
func ParseStatus(s string) (Status, bool) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return status, ok
}

// Genres is the closed set of story genres
var Genres = []string{
	"Fantasy",
	"Science Fiction",
	"Mystery",
	"Thriller",
	"Romance",
	"Horror",
	"Historical Fiction",
	"Literary Fiction",
	"Young Adult",
	"Adventure",
	"Drama",
	"Poetry",
}

// Story is the central content entity
type Story struct {
	ID                string     `json:"id"`
	Slug              string     `json:"slug"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Excerpt           string     `json:"excerpt"`
	ReadTime          int        `json:"read_time"`
	Genre             string     `json:"genre"`
	Hashtags          []string   `json:"hashtags"`
	Tags              []string   `json:"tags"`
	CategoryID        string     `json:"category_id"`
	AuthorID          string     `json:"author_id"`
	AuthorName        string     `json:"author_name"`
	Status            Status     `json:"status"`
	RejectionFeedback *string    `json:"rejection_feedback,omitempty"`
	LastModeratedBy   *string    `json:"last_moderated_by,omitempty"`
	LastModeratedAt   *time.Time `json:"last_moderated_at,omitempty"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	PublishedAt       *time.Time `json:"published_at,omitempty"`
	Views             int        `json:"views"`
	Likes             int        `json:"likes"`
	Saves             int        `json:"saves"`
	Comments          int        `json:"comments"`
	Shares            int        `json:"shares"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// StoryInput is the author-supplied part of a story
type StoryInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Excerpt    string   `json:"excerpt"`
	Genre      string   `json:"genre"`
	Hashtags   []string `json:"hashtags"`
	Tags       []string `json:"tags"`
	CategoryID string   `json:"category_id"`
	Submit     bool     `json:"submit"`
}

// SetTitle updates the title and regenerates the slug when it changed
func (s *Story) SetTitle(title string, now time.Time) {
	title = strings.TrimSpace(title)
	if s.Slug != "" && title == s.Title {
		return
	}
	s.Title = title
	s.Slug = NewSlug(title, now)
}

// Derive recomputes excerpt, read time and normalized hashtags.
// An explicitly supplied excerpt is kept.
func (s *Story) Derive(explicitExcerpt string) {
	if e := strings.TrimSpace(explicitExcerpt); e != "" {
		s.Excerpt = e
	} else {
		s.Excerpt = MakeExcerpt(s.Content, ExcerptLength)
	}
	s.ReadTime = ReadTime(s.Content)
	s.Hashtags = NormalizeHashtags(s.Hashtags)
	if s.Tags == nil {
		s.Tags = []string{}
	}
}

// IsPublic reports whether anonymous readers may see the story
func (s *Story) IsPublic() bool {
	return s.Status == StatusPublished
}

// StorySummary is the compact representation returned by moderation endpoints
type StorySummary struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Slug              string     `json:"slug"`
	AuthorID          string     `json:"author_id"`
	AuthorName        string     `json:"author_name"`
	Status            Status     `json:"status"`
	PublishedAt       *time.Time `json:"published_at"`
	RejectionFeedback *string    `json:"rejection_feedback,omitempty"`
	LastModeratedBy   *string    `json:"last_moderated_by,omitempty"`
	LastModeratedAt   *time.Time `json:"last_moderated_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Summary returns the compact form of the story
func (s *Story) Summary() StorySummary {
	return StorySummary{
		ID:                s.ID,
		Title:             s.Title,
		Slug:              s.Slug,
		AuthorID:          s.AuthorID,
		AuthorName:        s.AuthorName,
		Status:            s.Status,
		PublishedAt:       s.PublishedAt,
		RejectionFeedback: s.RejectionFeedback,
		LastModeratedBy:   s.LastModeratedBy,
		LastModeratedAt:   s.LastModeratedAt,
		CreatedAt:         s.CreatedAt,
	}
}

// Engagement is the result of a like/save toggle
type Engagement struct {
	StoryID string `json:"story_id"`
	Active  bool   `json:"active"`
	Count   int    `json:"count"`
}
