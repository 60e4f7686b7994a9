package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"chat-sync/internal/observability"
	"chat-sync/internal/repositories"
)

// PinRegistry owns the per-user set of pinned conversation ids. Toggles flip
// the local membership first and then issue the opposite persistence
// operation; persistence failures are logged, never rolled back, so the last
// writer wins across sessions.
type PinRegistry struct {
	repo repositories.PinRepository
	user UserProvider

	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewPinRegistry constructs an empty registry.
func NewPinRegistry(repo repositories.PinRepository, user UserProvider) *PinRegistry {
	return &PinRegistry{repo: repo, user: user, ids: make(map[string]struct{})}
}

// Load replaces the membership with the persisted pin set.
func (r *PinRegistry) Load(ctx context.Context) error {
	userID := r.user.CurrentUserID()
	if userID == "" {
		return ErrNotAuthenticated
	}

	ids, err := r.repo.ListPinned(ctx, userID)
	if err != nil {
		return fmt.Errorf("load pins: %w", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	r.mu.Lock()
	r.ids = set
	r.mu.Unlock()
	return nil
}

// Contains reports whether the conversation is pinned.
func (r *PinRegistry) Contains(conversationID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[conversationID]
	return ok
}

// IDs returns a copy of the pinned id set.
func (r *PinRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	return out
}

// Toggle flips the pin membership of a conversation and returns the new
// state. The persistence call is best effort: a conflict (for example a
// concurrent session pinning the same id) is non-fatal, and other failures
// are recorded but leave the flipped local state in place.
func (r *PinRegistry) Toggle(ctx context.Context, conversationID string) (bool, error) {
	userID := r.user.CurrentUserID()
	if userID == "" {
		return false, ErrNotAuthenticated
	}

	r.mu.Lock()
	_, wasPinned := r.ids[conversationID]
	if wasPinned {
		delete(r.ids, conversationID)
	} else {
		r.ids[conversationID] = struct{}{}
	}
	r.mu.Unlock()

	var err error
	if wasPinned {
		err = r.repo.DeletePin(ctx, userID, conversationID)
	} else {
		err = r.repo.InsertPin(ctx, userID, conversationID)
	}
	if errors.Is(err, repositories.ErrConflict) {
		log.Printf("pin toggle conflict for %s: %v", conversationID, err)
		err = nil
	}
	if err != nil {
		observability.RecordDroppedFailure("pin_toggle", userID, err)
	}

	return !wasPinned, nil
}
