// Package notify delivers author notifications about moderation decisions.
// Delivery is best effort: callers submit work to a Dispatcher and never see
// send failures.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Kind identifies a notification template
type Kind string

const (
	KindStoryApproved    Kind = "story_approved"
	KindStoryRejected    Kind = "story_rejected"
	KindStoryUnpublished Kind = "story_unpublished"
)

// Message is one notification to a story's author
type Message struct {
	Kind       Kind
	StoryID    string
	StoryTitle string
	StorySlug  string
	Feedback   string
	ToName     string
	ToEmail    string
}

// Sender delivers a message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render builds the subject and plain-text body of msg.
// baseURL is the frontend address used for the story link.
func Render(msg Message, baseURL string) (subject, body string) {
	link := strings.TrimRight(baseURL, "/") + "/stories/" + msg.StorySlug
	greeting := "Hello"
	if msg.ToName != "" {
		greeting = "Hello " + msg.ToName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s,\n\n", greeting)

	switch msg.Kind {
	case KindStoryApproved:
		subject = fmt.Sprintf("Your story %q has been published", msg.StoryTitle)
		fmt.Fprintf(&b, "Good news! Your story %q was approved and is now live.\n", msg.StoryTitle)
		fmt.Fprintf(&b, "Read it here: %s\n", link)
	case KindStoryRejected:
		subject = fmt.Sprintf("Your story %q needs changes", msg.StoryTitle)
		fmt.Fprintf(&b, "Your story %q was not approved.\n", msg.StoryTitle)
		fmt.Fprintf(&b, "\nModerator feedback:\n%s\n", msg.Feedback)
		fmt.Fprintf(&b, "\nYou can edit and resubmit it: %s\n", link)
	case KindStoryUnpublished:
		subject = fmt.Sprintf("Your story %q has been unpublished", msg.StoryTitle)
		fmt.Fprintf(&b, "Your story %q is no longer public and has been moved back to drafts.\n", msg.StoryTitle)
		if msg.Feedback != "" {
			fmt.Fprintf(&b, "\nReason:\n%s\n", msg.Feedback)
		}
	default:
		subject = "Update about your story " + msg.StoryTitle
		fmt.Fprintf(&b, "There is an update about your story %q.\n", msg.StoryTitle)
	}

	b.WriteString("\nThe StoryHub team\n")
	return subject, b.String()
}

// LogSender writes notifications to the log instead of delivering them
type LogSender struct {
	log     zerolog.Logger
	baseURL string
}

// NewLogSender creates a sender that only logs
func NewLogSender(baseURL string, log zerolog.Logger) *LogSender {
	return &LogSender{
		log:     log.With().Str("sender", "log").Logger(),
		baseURL: baseURL,
	}
}

// Send logs the rendered message
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	subject, _ := Render(msg, s.baseURL)
	s.log.Info().
		Str("kind", string(msg.Kind)).
		Str("story_id", msg.StoryID).
		Str("to", msg.ToEmail).
		Str("subject", subject).
		Msg("Notification")
	return nil
}
