package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"chat-sync/internal/models"
	"chat-sync/internal/repositories"
)

// ReactionAggregator keeps raw per-user reaction rows per message, loaded on
// demand, and folds them into per-emoji summaries. Every mutation is
// followed by a full refetch; duplicate prevention lives in the persistence
// layer, not here.
type ReactionAggregator struct {
	repo     repositories.ReactionRepository
	user     UserProvider
	notifier Notifier

	mu   sync.RWMutex
	rows map[string][]models.Reaction
}

// NewReactionAggregator constructs an aggregator. notifier may be nil.
func NewReactionAggregator(repo repositories.ReactionRepository, user UserProvider, notifier Notifier) *ReactionAggregator {
	return &ReactionAggregator{
		repo:     repo,
		user:     user,
		notifier: orLogNotifier(notifier),
		rows:     make(map[string][]models.Reaction),
	}
}

// Load refetches the raw rows for a message.
func (a *ReactionAggregator) Load(ctx context.Context, messageID string) error {
	rows, err := a.repo.ListReactions(ctx, messageID)
	if err != nil {
		return fmt.Errorf("load reactions: %w", err)
	}

	a.mu.Lock()
	a.rows[messageID] = rows
	a.mu.Unlock()
	return nil
}

// Add inserts the current user's reaction and refetches. A duplicate insert
// is a persistence-layer conflict and non-fatal.
func (a *ReactionAggregator) Add(ctx context.Context, messageID, emoji string) error {
	userID := a.user.CurrentUserID()
	if userID == "" {
		a.notifier.Notify("sign in to react")
		return ErrNotAuthenticated
	}

	err := a.repo.AddReaction(ctx, messageID, userID, emoji)
	if errors.Is(err, repositories.ErrConflict) {
		log.Printf("duplicate reaction %s on %s: %v", emoji, messageID, err)
		err = nil
	}
	if err != nil {
		a.notifier.Notify("reaction could not be added")
		return fmt.Errorf("add reaction: %w", err)
	}
	return a.Load(ctx, messageID)
}

// Remove deletes the current user's reaction row and refetches.
func (a *ReactionAggregator) Remove(ctx context.Context, messageID, emoji string) error {
	userID := a.user.CurrentUserID()
	if userID == "" {
		a.notifier.Notify("sign in to react")
		return ErrNotAuthenticated
	}

	if err := a.repo.RemoveReaction(ctx, messageID, userID, emoji); err != nil {
		a.notifier.Notify("reaction could not be removed")
		return fmt.Errorf("remove reaction: %w", err)
	}
	return a.Load(ctx, messageID)
}

// Groups aggregates the loaded rows of a message by emoji, in first-seen
// order. HasReacted is true iff the current user has a row for that emoji.
func (a *ReactionAggregator) Groups(messageID string) []models.ReactionGroup {
	self := a.user.CurrentUserID()

	a.mu.RLock()
	rows := a.rows[messageID]
	a.mu.RUnlock()

	index := make(map[string]int, len(rows))
	groups := make([]models.ReactionGroup, 0, len(rows))
	for _, row := range rows {
		i, ok := index[row.Emoji]
		if !ok {
			i = len(groups)
			index[row.Emoji] = i
			groups = append(groups, models.ReactionGroup{Emoji: row.Emoji})
		}
		groups[i].Count++
		if row.UserID == self {
			groups[i].HasReacted = true
		}
	}
	return groups
}
