package models

import "time"

// Participant is a conversation member with its profile enrichment.
type Participant struct {
	UserID      string `db:"user_id" json:"user_id"`
	DisplayName string `db:"display_name" json:"display_name"`
	AvatarURL   string `db:"avatar_url" json:"avatar_url,omitempty"`
	Online      bool   `db:"online" json:"online"`
}

// LastMessage is the denormalized tail of a conversation.
type LastMessage struct {
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Status    MessageStatus `json:"status"`
}

// Conversation represents a chat thread as shown in the conversation list.
type Conversation struct {
	ID           string        `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	IsGroup      bool          `db:"is_group" json:"is_group"`
	Participants []Participant `json:"participants"`
	LastMessage  *LastMessage  `json:"last_message,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`

	// IsPinned is merged in from the pin registry, never persisted here.
	IsPinned bool `db:"-" json:"is_pinned"`
	// AvatarURL and Online are derived from the other participant for 1:1 chats.
	AvatarURL string `db:"-" json:"avatar_url,omitempty"`
	Online    bool   `db:"-" json:"online"`
}

// ActivityTime is the sort key for the conversation list: the last message
// time when one exists, the conversation's own update time otherwise.
func (c *Conversation) ActivityTime() time.Time {
	if c.LastMessage != nil {
		return c.LastMessage.CreatedAt
	}
	return c.UpdatedAt
}

// DeriveDirect fills the display name, avatar and online flag of a 1:1
// conversation from the participant that is not selfID. Group conversations
// keep their stored name.
func (c *Conversation) DeriveDirect(selfID string) {
	if c.IsGroup {
		return
	}
	for _, p := range c.Participants {
		if p.UserID != selfID {
			if p.DisplayName != "" {
				c.Name = p.DisplayName
			}
			c.AvatarURL = p.AvatarURL
			c.Online = p.Online
			return
		}
	}
}
