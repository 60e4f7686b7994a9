// Package fallback provides a fully local, in-memory substitute for the live
// persistence collaborator. It satisfies the same repository interfaces; no
// push channel exists and no remote call is ever made.
package fallback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-sync/internal/models"
	"chat-sync/internal/repositories"
)

// Seed is the initial content of a dataset.
type Seed struct {
	Conversations []models.Conversation
	// Messages maps conversation id to its ascending message history.
	Messages map[string][]models.Message
	// Reactions maps message id to its raw reaction rows.
	Reactions map[string][]models.Reaction
	// Pins maps user id to pinned conversation ids.
	Pins map[string][]string
}

// Dataset is the in-memory store. All operations work on copies so callers
// never alias internal state.
type Dataset struct {
	mu            sync.RWMutex
	conversations []models.Conversation
	messages      map[string][]models.Message
	reactions     map[string][]models.Reaction
	pins          map[string]map[string]struct{}
}

// New builds a dataset from a seed.
func New(seed Seed) *Dataset {
	ds := &Dataset{
		conversations: append([]models.Conversation(nil), seed.Conversations...),
		messages:      make(map[string][]models.Message),
		reactions:     make(map[string][]models.Reaction),
		pins:          make(map[string]map[string]struct{}),
	}
	for id, msgs := range seed.Messages {
		ds.messages[id] = append([]models.Message(nil), msgs...)
	}
	for id, rows := range seed.Reactions {
		ds.reactions[id] = append([]models.Reaction(nil), rows...)
	}
	for userID, ids := range seed.Pins {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		ds.pins[userID] = set
	}
	return ds
}

// ListConversations returns the conversations the user participates in,
// with the last message derived from the message tail.
func (ds *Dataset) ListConversations(_ context.Context, userID string) ([]models.Conversation, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var out []models.Conversation
	for _, conv := range ds.conversations {
		if !participates(conv, userID) {
			continue
		}
		c := conv
		c.Participants = append([]models.Participant(nil), conv.Participants...)
		if msgs := ds.messages[c.ID]; len(msgs) > 0 {
			tail := msgs[len(msgs)-1]
			c.LastMessage = &models.LastMessage{
				Content:   tail.Content,
				CreatedAt: tail.CreatedAt,
				Status:    tail.Status,
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// IsParticipant reports conversation membership.
func (ds *Dataset) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	for _, conv := range ds.conversations {
		if conv.ID == conversationID {
			return participates(conv, userID), nil
		}
	}
	return false, nil
}

// ListMessages returns the conversation history, oldest first.
func (ds *Dataset) ListMessages(_ context.Context, conversationID string) ([]models.Message, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]models.Message(nil), ds.messages[conversationID]...), nil
}

// InsertMessage appends a locally constructed message and bumps the owning
// conversation's activity time, so the list's lastMessage follows.
func (ds *Dataset) InsertMessage(_ context.Context, msg models.NewMessage) (models.Message, error) {
	now := time.Now()
	out := models.Message{
		ID:             uuid.NewString(),
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		AttachmentURL:  msg.AttachmentURL,
		ReplyToID:      msg.ReplyToID,
		ThreadID:       msg.ThreadID,
		Status:         models.StatusSent,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	ds.mu.Lock()
	ds.messages[msg.ConversationID] = append(ds.messages[msg.ConversationID], out)
	for i := range ds.conversations {
		if ds.conversations[i].ID == msg.ConversationID {
			ds.conversations[i].UpdatedAt = now
			break
		}
	}
	ds.mu.Unlock()
	return out, nil
}

// DeleteMessage removes a message, scoped to its author.
func (ds *Dataset) DeleteMessage(_ context.Context, messageID, userID string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	for convID, msgs := range ds.messages {
		for i, m := range msgs {
			if m.ID != messageID {
				continue
			}
			if m.SenderID != userID {
				return repositories.ErrMessageNotFound
			}
			ds.messages[convID] = append(msgs[:i], msgs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrMessageNotFound
}

// UpdateMessageStatus advances a status; regressions and repeats are no-ops.
func (ds *Dataset) UpdateMessageStatus(_ context.Context, messageID string, status models.MessageStatus) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	for convID, msgs := range ds.messages {
		for i, m := range msgs {
			if m.ID != messageID {
				continue
			}
			if m.Status.CanAdvanceTo(status) {
				msgs[i].Status = status
				msgs[i].UpdatedAt = time.Now()
				ds.messages[convID] = msgs
			}
			return nil
		}
	}
	return nil
}

// ListReactions returns the raw reaction rows of a message.
func (ds *Dataset) ListReactions(_ context.Context, messageID string) ([]models.Reaction, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return append([]models.Reaction(nil), ds.reactions[messageID]...), nil
}

// AddReaction inserts a reaction row; duplicates conflict like the unique
// constraint in the live store.
func (ds *Dataset) AddReaction(_ context.Context, messageID, userID, emoji string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	for _, row := range ds.reactions[messageID] {
		if row.UserID == userID && row.Emoji == emoji {
			return repositories.ErrConflict
		}
	}
	ds.reactions[messageID] = append(ds.reactions[messageID], models.Reaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	})
	return nil
}

// RemoveReaction deletes the user's row for the emoji; absent rows are a no-op.
func (ds *Dataset) RemoveReaction(_ context.Context, messageID, userID, emoji string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	rows := ds.reactions[messageID]
	for i, row := range rows {
		if row.UserID == userID && row.Emoji == emoji {
			ds.reactions[messageID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// ListPinned returns the user's pinned conversation ids.
func (ds *Dataset) ListPinned(_ context.Context, userID string) ([]string, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	out := make([]string, 0, len(ds.pins[userID]))
	for id := range ds.pins[userID] {
		out = append(out, id)
	}
	return out, nil
}

// InsertPin pins a conversation; re-pinning conflicts.
func (ds *Dataset) InsertPin(_ context.Context, userID, conversationID string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	set, ok := ds.pins[userID]
	if !ok {
		set = make(map[string]struct{})
		ds.pins[userID] = set
	}
	if _, dup := set[conversationID]; dup {
		return repositories.ErrConflict
	}
	set[conversationID] = struct{}{}
	return nil
}

// DeletePin unpins a conversation; absent pins are a no-op.
func (ds *Dataset) DeletePin(_ context.Context, userID, conversationID string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	delete(ds.pins[userID], conversationID)
	return nil
}

func participates(conv models.Conversation, userID string) bool {
	for _, p := range conv.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
