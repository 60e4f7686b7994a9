package fallback

import (
	"time"

	"chat-sync/internal/models"
)

// Demo returns the canned dataset used when no live backend is configured.
// selfID becomes a participant of every conversation.
func Demo(selfID string) Seed {
	base := time.Now().Add(-48 * time.Hour)

	alice := models.Participant{UserID: "user-alice", DisplayName: "Alice Moreau", AvatarURL: "https://i.pravatar.cc/150?u=alice", Online: true}
	bram := models.Participant{UserID: "user-bram", DisplayName: "Bram de Vries", AvatarURL: "https://i.pravatar.cc/150?u=bram"}
	chloe := models.Participant{UserID: "user-chloe", DisplayName: "Chloe Tanaka", AvatarURL: "https://i.pravatar.cc/150?u=chloe", Online: true}
	self := models.Participant{UserID: selfID, DisplayName: "You"}

	return Seed{
		Conversations: []models.Conversation{
			{
				ID:           "conv-alice",
				Participants: []models.Participant{self, alice},
				CreatedAt:    base,
				UpdatedAt:    base.Add(26 * time.Hour),
			},
			{
				ID:           "conv-bram",
				Participants: []models.Participant{self, bram},
				CreatedAt:    base,
				UpdatedAt:    base.Add(20 * time.Hour),
			},
			{
				ID:           "conv-studio",
				Name:         "Studio crew",
				IsGroup:      true,
				Participants: []models.Participant{self, alice, bram, chloe},
				CreatedAt:    base,
				UpdatedAt:    base.Add(30 * time.Hour),
			},
		},
		Messages: map[string][]models.Message{
			"conv-alice": {
				{ID: "msg-a1", ConversationID: "conv-alice", SenderID: alice.UserID, Content: "Did you see the new drop?", Status: models.StatusRead, CreatedAt: base.Add(25 * time.Hour), UpdatedAt: base.Add(25 * time.Hour)},
				{ID: "msg-a2", ConversationID: "conv-alice", SenderID: selfID, Content: "Just now, it looks great", Status: models.StatusRead, CreatedAt: base.Add(25*time.Hour + 10*time.Minute), UpdatedAt: base.Add(25*time.Hour + 10*time.Minute)},
				{ID: "msg-a3", ConversationID: "conv-alice", SenderID: alice.UserID, Content: "Posting the teaser tonight", Status: models.StatusSent, CreatedAt: base.Add(26 * time.Hour), UpdatedAt: base.Add(26 * time.Hour)},
			},
			"conv-bram": {
				{ID: "msg-b1", ConversationID: "conv-bram", SenderID: selfID, Content: "Invoice is on its way", Status: models.StatusDelivered, CreatedAt: base.Add(20 * time.Hour), UpdatedAt: base.Add(20 * time.Hour)},
			},
			"conv-studio": {
				{ID: "msg-s1", ConversationID: "conv-studio", SenderID: chloe.UserID, Content: "Rehearsal moved to 7pm", Status: models.StatusRead, CreatedAt: base.Add(29 * time.Hour), UpdatedAt: base.Add(29 * time.Hour)},
				{ID: "msg-s2", ConversationID: "conv-studio", SenderID: bram.UserID, Content: "Works for me", Status: models.StatusSent, CreatedAt: base.Add(30 * time.Hour), UpdatedAt: base.Add(30 * time.Hour)},
			},
		},
		Reactions: map[string][]models.Reaction{
			"msg-s1": {
				{MessageID: "msg-s1", UserID: bram.UserID, Emoji: "👍", CreatedAt: base.Add(29*time.Hour + 5*time.Minute)},
				{MessageID: "msg-s1", UserID: alice.UserID, Emoji: "👍", CreatedAt: base.Add(29*time.Hour + 6*time.Minute)},
			},
		},
		Pins: map[string][]string{
			selfID: {"conv-studio"},
		},
	}
}
