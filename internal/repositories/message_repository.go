package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"chat-sync/internal/models"
)

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	InsertMessage(ctx context.Context, msg models.NewMessage) (models.Message, error)
	DeleteMessage(ctx context.Context, messageID string, userID string) error
	UpdateMessageStatus(ctx context.Context, messageID string, status models.MessageStatus) error
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// ListMessages returns the full message history of a conversation, oldest first.
func (r *MessageRepo) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, conversation_id, sender_id, content,
            attachment_url, reply_to_id, thread_id, status, created_at, updated_at
        FROM messages
        WHERE conversation_id = $1
        ORDER BY created_at ASC`, conversationID)
	return msgs, err
}

// InsertMessage stores a new message and returns the persisted row.
func (r *MessageRepo) InsertMessage(ctx context.Context, msg models.NewMessage) (models.Message, error) {
	var out models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages
            (conversation_id, sender_id, content, attachment_url, reply_to_id, thread_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, conversation_id, sender_id, content, attachment_url, reply_to_id, thread_id, status, created_at, updated_at`,
		msg.ConversationID, msg.SenderID, msg.Content, msg.AttachmentURL, msg.ReplyToID, msg.ThreadID).
		StructScan(&out)
	return out, err
}

// DeleteMessage removes a message, scoped to its author so only self-authored
// messages can be deleted.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID string, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1 AND sender_id = $2`, messageID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// UpdateMessageStatus advances a message along sent -> delivered -> read.
// The guard keeps the transition monotone, so a stale or repeated call can
// never regress a status; affecting zero rows is not an error.
func (r *MessageRepo) UpdateMessageStatus(ctx context.Context, messageID string, status models.MessageStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages
        SET status = $2, updated_at = NOW()
        WHERE id = $1
          AND CASE status WHEN 'sent' THEN 1 WHEN 'delivered' THEN 2 ELSE 3 END
            < CASE $2::text WHEN 'sent' THEN 1 WHEN 'delivered' THEN 2 ELSE 3 END`,
		messageID, string(status))
	return err
}
