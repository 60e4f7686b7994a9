package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// PinRepository defines interactions for per-user pinned conversations.
type PinRepository interface {
	ListPinned(ctx context.Context, userID string) ([]string, error)
	InsertPin(ctx context.Context, userID string, conversationID string) error
	DeletePin(ctx context.Context, userID string, conversationID string) error
}

// PinRepo is a sqlx-backed repository.
type PinRepo struct {
	db *sqlx.DB
}

// NewPinRepo constructs PinRepo.
func NewPinRepo(db *sqlx.DB) *PinRepo {
	return &PinRepo{db: db}
}

// ListPinned returns the ids of the conversations the user has pinned.
func (r *PinRepo) ListPinned(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT conversation_id FROM pinned_conversations WHERE user_id = $1`, userID)
	return ids, err
}

// InsertPin pins a conversation for the user. Re-pinning an already pinned
// conversation surfaces as ErrConflict.
func (r *PinRepo) InsertPin(ctx context.Context, userID string, conversationID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO pinned_conversations (user_id, conversation_id) VALUES ($1, $2)`,
		userID, conversationID)
	return mapConflict(err)
}

// DeletePin removes a pin; deleting an absent pin is a no-op.
func (r *PinRepo) DeletePin(ctx context.Context, userID string, conversationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pinned_conversations WHERE user_id = $1 AND conversation_id = $2`,
		userID, conversationID)
	return err
}
