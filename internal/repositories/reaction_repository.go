package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chat-sync/internal/models"
)

// ReactionRepository defines interactions for per-user message reactions.
type ReactionRepository interface {
	ListReactions(ctx context.Context, messageID string) ([]models.Reaction, error)
	AddReaction(ctx context.Context, messageID string, userID string, emoji string) error
	RemoveReaction(ctx context.Context, messageID string, userID string, emoji string) error
}

// ReactionRepo is a sqlx-backed repository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// ListReactions returns the raw reaction rows for a message.
func (r *ReactionRepo) ListReactions(ctx context.Context, messageID string) ([]models.Reaction, error) {
	var rows []models.Reaction
	err := r.db.SelectContext(ctx, &rows, `SELECT message_id, user_id, emoji, created_at
        FROM reactions WHERE message_id = $1 ORDER BY created_at ASC`, messageID)
	return rows, err
}

// AddReaction inserts the current user's reaction row. A repeated insert of
// the same (message, user, emoji) triple surfaces as ErrConflict.
func (r *ReactionRepo) AddReaction(ctx context.Context, messageID string, userID string, emoji string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO reactions (message_id, user_id, emoji) VALUES ($1, $2, $3)`,
		messageID, userID, emoji)
	return mapConflict(err)
}

// RemoveReaction deletes the current user's reaction row for the emoji.
// Removing an absent row is a no-op.
func (r *ReactionRepo) RemoveReaction(ctx context.Context, messageID string, userID string, emoji string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reactions WHERE message_id = $1 AND user_id = $2 AND emoji = $3`,
		messageID, userID, emoji)
	return err
}
