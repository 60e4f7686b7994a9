package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"chat-sync/internal/fallback"
	"chat-sync/internal/models"
	"chat-sync/internal/observability"
	"chat-sync/internal/push"
)

// ConversationStore owns the ordered conversation list. It is the only
// component that mutates the list; consumers read snapshots.
type ConversationStore struct {
	backend  *Backend
	user     UserProvider
	pins     *PinRegistry
	notifier Notifier

	// degraded, when set, substitutes local data after a failed live load.
	// Reads only; write behavior never switches modes.
	degraded *fallback.Dataset

	mu            sync.RWMutex
	conversations []models.Conversation
	subs          []push.Subscription
}

// NewConversationStore constructs a store. notifier may be nil.
func NewConversationStore(backend *Backend, user UserProvider, pins *PinRegistry, notifier Notifier) *ConversationStore {
	return &ConversationStore{
		backend:  backend,
		user:     user,
		pins:     pins,
		notifier: orLogNotifier(notifier),
	}
}

// UseDegradedReads installs a local dataset served when a live load fails.
func (s *ConversationStore) UseDegradedReads(ds *fallback.Dataset) {
	s.degraded = ds
}

// Load fetches the user's conversations, merges pin membership, derives 1:1
// display fields and sorts by latest activity, newest first.
func (s *ConversationStore) Load(ctx context.Context) error {
	userID := s.user.CurrentUserID()
	if userID == "" {
		s.notifier.Notify("sign in to load conversations")
		return ErrNotAuthenticated
	}

	convs, err := s.backend.Conversations.ListConversations(ctx, userID)
	if err != nil && s.degraded != nil {
		log.Printf("live conversation load failed, serving local data: %v", err)
		convs, err = s.degraded.ListConversations(ctx, userID)
	}
	if err != nil {
		s.notifier.Notify("conversations could not be loaded")
		return fmt.Errorf("load conversations: %w", err)
	}

	// A failed pin load degrades to an unpinned view of otherwise complete
	// records rather than failing the whole load.
	if err := s.pins.Load(ctx); err != nil {
		log.Printf("pin enrichment failed: %v", err)
	}

	for i := range convs {
		convs[i].DeriveDirect(userID)
		convs[i].IsPinned = s.pins.Contains(convs[i].ID)
	}
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].ActivityTime().After(convs[j].ActivityTime())
	})

	s.mu.Lock()
	s.conversations = convs
	s.mu.Unlock()
	return nil
}

// Subscribe attaches list-level change listeners. Any event in the
// conversation, message or pin scope triggers a full reload; the coarse
// invalidation is fine for the small conversation counts this store holds.
// In fallback mode no channel exists and Subscribe is a no-op.
func (s *ConversationStore) Subscribe() error {
	if s.backend.Subscriber == nil {
		return nil
	}
	userID := s.user.CurrentUserID()
	if userID == "" {
		return ErrNotAuthenticated
	}

	scopes := []struct {
		scope  models.Scope
		filter push.Filter
	}{
		{models.ScopeConversations, push.Filter{}},
		{models.ScopeMessages, push.Filter{}},
		{models.ScopePins, push.Filter{UserID: userID}},
	}

	subs := make([]push.Subscription, 0, len(scopes))
	for _, sc := range scopes {
		sub, err := s.backend.Subscriber.Subscribe(sc.scope, sc.filter, func(models.ChangeEvent) {
			s.reload()
		})
		if err != nil {
			for _, prev := range subs {
				prev.Unsubscribe()
			}
			return fmt.Errorf("subscribe %s: %w", sc.scope, err)
		}
		subs = append(subs, sub)
	}

	s.mu.Lock()
	s.subs = append(s.subs, subs...)
	s.mu.Unlock()
	return nil
}

// Conversations returns a snapshot of the current list.
func (s *ConversationStore) Conversations() []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// TogglePin flips the pin state of a conversation and merges the result into
// the list. Persistence failures inside the registry are best effort and do
// not roll the flag back.
func (s *ConversationStore) TogglePin(ctx context.Context, conversationID string) (bool, error) {
	pinned, err := s.pins.Toggle(ctx, conversationID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	for i := range s.conversations {
		if s.conversations[i].ID == conversationID {
			s.conversations[i].IsPinned = pinned
			break
		}
	}
	s.mu.Unlock()
	return pinned, nil
}

// Close releases every list-level subscription.
func (s *ConversationStore) Close() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.conversations = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

func (s *ConversationStore) reload() {
	observability.IncReload()
	if err := s.Load(context.Background()); err != nil {
		log.Printf("conversation reload failed: %v", err)
	}
}
