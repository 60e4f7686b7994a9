package models

import "time"

// MessageStatus is the delivery state of a message.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// rank orders statuses along the sent -> delivered -> read progression.
func (s MessageStatus) rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	}
	return 0
}

// CanAdvanceTo reports whether moving to next keeps the status monotone.
func (s MessageStatus) CanAdvanceTo(next MessageStatus) bool {
	return next.rank() > s.rank()
}

// Message represents a single conversation message.
type Message struct {
	ID             string        `db:"id" json:"id"`
	ConversationID string        `db:"conversation_id" json:"conversation_id"`
	SenderID       string        `db:"sender_id" json:"sender_id"`
	Content        string        `db:"content" json:"content"`
	AttachmentURL  string        `db:"attachment_url" json:"attachment_url,omitempty"`
	ReplyToID      string        `db:"reply_to_id" json:"reply_to_id,omitempty"`
	ThreadID       string        `db:"thread_id" json:"thread_id,omitempty"`
	Status         MessageStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`

	// IsMe is derived from the session user id and never persisted.
	IsMe bool `db:"-" json:"is_me"`
}

// NewMessage carries the caller-supplied fields of an outgoing message.
type NewMessage struct {
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Content        string `json:"content"`
	AttachmentURL  string `json:"attachment_url,omitempty"`
	ReplyToID      string `json:"reply_to_id,omitempty"`
	ThreadID       string `json:"thread_id,omitempty"`
}

// Empty reports whether the message has neither content nor attachment.
func (m NewMessage) Empty() bool {
	return m.Content == "" && m.AttachmentURL == ""
}
