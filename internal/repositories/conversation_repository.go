package repositories

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"chat-sync/internal/models"
)

// ConversationRepository defines read access to the conversations a user
// participates in.
type ConversationRepository interface {
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error)
}

// ConversationRepo is a sqlx-backed repository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// ListConversations returns every conversation the user participates in,
// enriched with participant profiles and the latest message. Enrichment
// failures degrade to a partially filled record instead of failing the load.
func (r *ConversationRepo) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, `SELECT c.id, c.name, c.is_group, c.created_at, c.updated_at
        FROM conversations c
        JOIN conversation_participants cp ON cp.conversation_id = c.id
        WHERE cp.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if len(convs) == 0 {
		return convs, nil
	}

	ids := make([]string, 0, len(convs))
	byID := make(map[string]*models.Conversation, len(convs))
	for i := range convs {
		ids = append(ids, convs[i].ID)
		byID[convs[i].ID] = &convs[i]
	}

	if err := r.attachParticipants(ctx, ids, byID); err != nil {
		log.Printf("conversation participant enrichment failed: %v", err)
	}
	if err := r.attachLastMessages(ctx, ids, byID); err != nil {
		log.Printf("conversation last-message enrichment failed: %v", err)
	}

	return convs, nil
}

// IsParticipant reports whether the user is a member of the conversation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error) {
	var member bool
	err := r.db.GetContext(ctx, &member, `SELECT EXISTS (
        SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2)`,
		conversationID, userID)
	return member, err
}

func (r *ConversationRepo) attachParticipants(ctx context.Context, ids []string, byID map[string]*models.Conversation) error {
	query, args, err := sqlx.In(`SELECT cp.conversation_id, cp.user_id,
            COALESCE(p.display_name, '') AS display_name,
            COALESCE(p.avatar_url, '') AS avatar_url,
            COALESCE(p.online, FALSE) AS online
        FROM conversation_participants cp
        LEFT JOIN profiles p ON p.user_id = cp.user_id
        WHERE cp.conversation_id IN (?)`, ids)
	if err != nil {
		return err
	}

	var rows []struct {
		models.Participant
		ConversationID string `db:"conversation_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, row := range rows {
		if conv, ok := byID[row.ConversationID]; ok {
			conv.Participants = append(conv.Participants, row.Participant)
		}
	}
	return nil
}

func (r *ConversationRepo) attachLastMessages(ctx context.Context, ids []string, byID map[string]*models.Conversation) error {
	query, args, err := sqlx.In(`SELECT DISTINCT ON (conversation_id)
            conversation_id, content, status, created_at
        FROM messages
        WHERE conversation_id IN (?)
        ORDER BY conversation_id, created_at DESC`, ids)
	if err != nil {
		return err
	}

	var rows []struct {
		ConversationID string               `db:"conversation_id"`
		Content        string               `db:"content"`
		Status         models.MessageStatus `db:"status"`
		CreatedAt      time.Time            `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, row := range rows {
		if conv, ok := byID[row.ConversationID]; ok {
			conv.LastMessage = &models.LastMessage{
				Content:   row.Content,
				CreatedAt: row.CreatedAt,
				Status:    row.Status,
			}
		}
	}
	return nil
}
