package models

import (
	"strings"
	"time"

	"github.com/storyhub-api/internal/apperror"
)

// ModerationAction tags a history entry
type ModerationAction string

const (
	ActionApproved    ModerationAction = "approved"
	ActionRejected    ModerationAction = "rejected"
	ActionUnpublished ModerationAction = "unpublished"
	ActionResubmitted ModerationAction = "resubmitted"
)

// ModerationEntry is one immutable record of a status transition
type ModerationEntry struct {
	ID             int64            `json:"id"`
	StoryID        string           `json:"story_id"`
	Action         ModerationAction `json:"action"`
	ModeratorID    string           `json:"moderator_id"`
	ModeratorName  string           `json:"moderator_name"`
	PreviousStatus Status           `json:"previous_status"`
	NewStatus      Status           `json:"new_status"`
	Feedback       *string          `json:"feedback,omitempty"`
	CreatedAt      time.Time        `json:"timestamp"`
}

// ModerationHistory is the audit trail plus the story's current moderation state
type ModerationHistory struct {
	StoryID           string            `json:"story_id"`
	Title             string            `json:"title"`
	Status            Status            `json:"status"`
	RejectionFeedback *string           `json:"rejection_feedback,omitempty"`
	PublishedAt       *time.Time        `json:"published_at"`
	History           []ModerationEntry `json:"history"`
}

// ModerationStats aggregates the moderation queue
type ModerationStats struct {
	ByStatus        map[Status]int `json:"by_status"`
	StuckPending    int            `json:"stuck_pending"`
	RecentlyHandled int            `json:"recently_moderated"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// Transition is a validated status change ready to be persisted.
// Expected is the status the story had when the change was computed.
type Transition struct {
	Story    *Story
	Expected Status
	Entry    *ModerationEntry
}

// Approve publishes the story. Fails if it is already published.
func (s *Story) Approve(by Actor, feedback string, now time.Time) (*Transition, error) {
	if s.Status == StatusPublished {
		return nil, apperror.Conflict("story is already published")
	}
	t := s.begin(ActionApproved, StatusPublished, by, feedback, now)
	if s.PublishedAt == nil {
		s.PublishedAt = &now
	}
	s.RejectionFeedback = nil
	return t, nil
}

// Reject rejects the story with mandatory feedback
func (s *Story) Reject(by Actor, feedback string, now time.Time) (*Transition, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, apperror.Validation("feedback is required when rejecting a story")
	}
	if s.Status == StatusRejected {
		return nil, apperror.Conflict("story is already rejected")
	}
	t := s.begin(ActionRejected, StatusRejected, by, feedback, now)
	s.PublishedAt = nil
	s.RejectionFeedback = &feedback
	return t, nil
}

// Unpublish folds a published story back to draft
func (s *Story) Unpublish(by Actor, feedback string, now time.Time) (*Transition, error) {
	if s.Status != StatusPublished {
		return nil, apperror.Conflict("story is not published (current status: %s)", s.Status)
	}
	t := s.begin(ActionUnpublished, StatusDraft, by, feedback, now)
	s.PublishedAt = nil
	s.RejectionFeedback = nil
	return t, nil
}

// Resubmit sends a draft or rejected story back to the moderation queue.
// Only the author may resubmit.
func (s *Story) Resubmit(by Actor, now time.Time) (*Transition, error) {
	if by.ID != s.AuthorID {
		return nil, apperror.Forbidden("only the author can resubmit a story")
	}
	if s.Status != StatusDraft && s.Status != StatusRejected {
		return nil, apperror.Conflict("story cannot be resubmitted from status %s", s.Status)
	}
	t := s.begin(ActionResubmitted, StatusPending, by, "", now)
	s.RejectionFeedback = nil
	s.SubmittedAt = &now
	return t, nil
}

func (s *Story) begin(action ModerationAction, next Status, by Actor, feedback string, now time.Time) *Transition {
	prev := s.Status
	entry := &ModerationEntry{
		StoryID:        s.ID,
		Action:         action,
		ModeratorID:    by.ID,
		ModeratorName:  by.Name,
		PreviousStatus: prev,
		NewStatus:      next,
		CreatedAt:      now,
	}
	if f := strings.TrimSpace(feedback); f != "" {
		entry.Feedback = &f
	}

	s.Status = next
	s.UpdatedAt = now
	// Last-moderated fields track moderator decisions only
	if action != ActionResubmitted {
		s.LastModeratedBy = &by.ID
		s.LastModeratedAt = &now
	}

	return &Transition{Story: s, Expected: prev, Entry: entry}
}
