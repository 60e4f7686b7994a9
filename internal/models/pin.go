package models

import "time"

// PinnedEntry marks a conversation as pinned for one user.
type PinnedEntry struct {
	UserID         string    `db:"user_id" json:"user_id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
