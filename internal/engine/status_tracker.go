package engine

import (
	"context"
	"sync"

	"chat-sync/internal/models"
	"chat-sync/internal/observability"
)

// ReadVisibilityThreshold is the intersection ratio at which a rendered
// message counts as seen.
const ReadVisibilityThreshold = 0.5

// StatusClient issues idempotent message status transitions. Calls are fire
// and forget: failures are recorded and dropped, never retried.
type StatusClient interface {
	UpdateMessageStatus(ctx context.Context, messageID string, status models.MessageStatus) error
}

// Visibility is one rendered element's intersection report.
type Visibility struct {
	MessageID string
	Ratio     float64
}

// StatusTracker drives the sent -> delivered -> read machine for received
// messages from load-time and viewport-visibility signals.
type StatusTracker struct {
	client StatusClient
	user   UserProvider

	// Foreground reports whether the document is currently visible. When
	// nil the tracker assumes background and never auto-reads on arrival.
	Foreground func() bool

	mu         sync.Mutex
	readIssued map[string]struct{}
}

// NewStatusTracker constructs a tracker.
func NewStatusTracker(client StatusClient, user UserProvider) *StatusTracker {
	return &StatusTracker{
		client:     client,
		user:       user,
		readIssued: make(map[string]struct{}),
	}
}

// DeliveryPass runs once per loaded batch: every message from another sender
// that is not yet read gets a delivered transition.
func (t *StatusTracker) DeliveryPass(msgs []models.Message) {
	self := t.user.CurrentUserID()
	for _, m := range msgs {
		if m.SenderID == self || m.Status == models.StatusRead {
			continue
		}
		t.transition(m.ID, models.StatusDelivered)
	}
}

// HandleIncoming applies the receiver-side machine to a pushed insert: a
// freshly sent message is marked delivered, and read as well when the
// document is in the foreground.
func (t *StatusTracker) HandleIncoming(m models.Message) {
	if m.SenderID == t.user.CurrentUserID() {
		return
	}
	if m.Status == models.StatusSent {
		t.transition(m.ID, models.StatusDelivered)
	}
	if m.Status != models.StatusRead && t.Foreground != nil && t.Foreground() {
		t.markRead(m.ID)
	}
}

// ReadPass consumes one batch of visibility reports. Every non-self message
// crossing the threshold that is not already read gets exactly one read
// transition while it stays continuously visible; dropping below the
// threshold re-arms the element.
func (t *StatusTracker) ReadPass(msgs []models.Message, entries []Visibility) {
	self := t.user.CurrentUserID()
	byID := make(map[string]models.Message, len(msgs))
	for _, m := range msgs {
		byID[m.ID] = m
	}

	for _, e := range entries {
		if e.Ratio < ReadVisibilityThreshold {
			t.mu.Lock()
			delete(t.readIssued, e.MessageID)
			t.mu.Unlock()
			continue
		}
		m, ok := byID[e.MessageID]
		if !ok || m.SenderID == self || m.Status == models.StatusRead {
			continue
		}
		t.markRead(e.MessageID)
	}
}

// Reset clears the per-conversation read bookkeeping.
func (t *StatusTracker) Reset() {
	t.mu.Lock()
	t.readIssued = make(map[string]struct{})
	t.mu.Unlock()
}

func (t *StatusTracker) markRead(messageID string) {
	t.mu.Lock()
	if _, done := t.readIssued[messageID]; done {
		t.mu.Unlock()
		return
	}
	t.readIssued[messageID] = struct{}{}
	t.mu.Unlock()

	t.transition(messageID, models.StatusRead)
}

// transition issues the status update without blocking the caller. In-flight
// calls may be dropped on teardown; the server-side guard keeps repeats and
// stale calls harmless.
func (t *StatusTracker) transition(messageID string, status models.MessageStatus) {
	observability.IncStatusTransition(string(status))
	userID := t.user.CurrentUserID()
	go func() {
		if err := t.client.UpdateMessageStatus(context.Background(), messageID, status); err != nil {
			observability.RecordDroppedFailure("status_transition", userID, err)
		}
	}()
}
