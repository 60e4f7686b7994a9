package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"chat-sync/internal/models"
	"chat-sync/internal/push"
)

// statusRecorder is a StatusClient that records every transition call.
type statusCall struct {
	MessageID string
	Status    models.MessageStatus
}

type statusRecorder struct {
	calls chan statusCall
}

func newStatusRecorder() *statusRecorder {
	return &statusRecorder{calls: make(chan statusCall, 32)}
}

func (r *statusRecorder) UpdateMessageStatus(_ context.Context, messageID string, status models.MessageStatus) error {
	r.calls <- statusCall{MessageID: messageID, Status: status}
	return nil
}

func (r *statusRecorder) wait(t *testing.T) statusCall {
	t.Helper()
	select {
	case call := <-r.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected a status transition call")
		return statusCall{}
	}
}

func (r *statusRecorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case call := <-r.calls:
		t.Fatalf("unexpected status transition %s -> %s", call.MessageID, call.Status)
	case <-time.After(100 * time.Millisecond):
	}
}

// fakeSubscriber delivers emitted events synchronously to matching handlers.
type fakeSubscriber struct {
	mu   sync.Mutex
	subs []*fakeSub
}

type fakeSub struct {
	parent       *fakeSubscriber
	scope        models.Scope
	filter       push.Filter
	fn           push.Handler
	unsubscribed bool
}

func (s *fakeSubscriber) Subscribe(scope models.Scope, filter push.Filter, fn push.Handler) (push.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &fakeSub{parent: s, scope: scope, filter: filter, fn: fn}
	s.subs = append(s.subs, sub)
	return sub, nil
}

func (s *fakeSubscriber) emit(ev models.ChangeEvent) {
	s.mu.Lock()
	targets := make([]push.Handler, 0, len(s.subs))
	for _, sub := range s.subs {
		if !sub.unsubscribed && sub.scope == ev.Scope && sub.filter.Matches(ev) {
			targets = append(targets, sub.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range targets {
		fn(ev)
	}
}

// emitAll skips filter checks, simulating a misrouted late event.
func (s *fakeSubscriber) emitAll(ev models.ChangeEvent) {
	s.mu.Lock()
	targets := make([]push.Handler, 0, len(s.subs))
	for _, sub := range s.subs {
		if !sub.unsubscribed && sub.scope == ev.Scope {
			targets = append(targets, sub.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range targets {
		fn(ev)
	}
}

func (s *fakeSubscriber) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.subs {
		if !sub.unsubscribed {
			n++
		}
	}
	return n
}

func (s *fakeSub) Unsubscribe() {
	s.parent.mu.Lock()
	s.unsubscribed = true
	s.parent.mu.Unlock()
}

// noticeRecorder captures user-facing notices.
type noticeRecorder struct {
	mu      sync.Mutex
	notices []string
}

func (n *noticeRecorder) Notify(message string) {
	n.mu.Lock()
	n.notices = append(n.notices, message)
	n.mu.Unlock()
}

func (n *noticeRecorder) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}
