package mocks

import (
	"context"
	"sync"

	"github.com/storyhub-api/internal/cache"
	"github.com/storyhub-api/internal/notify"
)

// RecordingSender captures sent notifications
type RecordingSender struct {
	mu       sync.Mutex
	Messages []notify.Message
	Err      error
}

// Verify interface compliance
var _ notify.Sender = (*RecordingSender)(nil)

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{Messages: make([]notify.Message, 0)}
}

func (r *RecordingSender) Send(ctx context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Messages = append(r.Messages, msg)
	return nil
}

// Sent returns a copy of the captured messages
func (r *RecordingSender) Sent() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.Messages...)
}

// MemoryViewTracker de-duplicates views in memory without expiry
type MemoryViewTracker struct {
	mu      sync.Mutex
	seen    map[string]bool
	PingErr error
}

// Verify interface compliance
var _ cache.ViewTracker = (*MemoryViewTracker)(nil)

func NewMemoryViewTracker() *MemoryViewTracker {
	return &MemoryViewTracker{seen: make(map[string]bool)}
}

func (m *MemoryViewTracker) FirstView(ctx context.Context, storyID, viewer string) (bool, error) {
	if viewer == "" {
		return true, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := storyID + ":" + viewer
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *MemoryViewTracker) Ping(ctx context.Context) error {
	return m.PingErr
}
