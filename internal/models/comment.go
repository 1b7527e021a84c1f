package models

import (
	"time"
)

// Comment represents a comment on a story.
// Top-level comments have a nil ParentID; replies point at a top-level comment.
type Comment struct {
	ID         string    `json:"id"`
	StoryID    string    `json:"story_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	ParentID   *string   `json:"parent_id"`
	Body       string    `json:"body"`
	Hidden     bool      `json:"hidden"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CommentThread is a top-level comment with its replies
type CommentThread struct {
	Comment
	Replies []Comment `json:"replies"`
}

// CommentInput is the body of a new comment
type CommentInput struct {
	Body     string `json:"body"`
	ParentID string `json:"parent_id"`
}

// MaxCommentWords is the maximum allowed words in a comment body
const MaxCommentWords = 500

// BuildThreads groups comments (ordered oldest first) into a two-level tree.
// Replies whose parent is missing from the slice are dropped.
func BuildThreads(comments []Comment) []CommentThread {
	threads := make([]CommentThread, 0)
	index := make(map[string]int)

	for _, c := range comments {
		if c.ParentID == nil {
			index[c.ID] = len(threads)
			threads = append(threads, CommentThread{Comment: c, Replies: []Comment{}})
		}
	}
	for _, c := range comments {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			threads[i].Replies = append(threads[i].Replies, c)
		}
	}
	return threads
}
