package fallback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-sync/internal/models"
	"chat-sync/internal/repositories"
)

func TestListConversationsFiltersByParticipant(t *testing.T) {
	ds := New(Demo("me"))

	convs, err := ds.ListConversations(context.Background(), "me")
	require.NoError(t, err)
	assert.Len(t, convs, 3)

	convs, err = ds.ListConversations(context.Background(), "stranger")
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestInsertMessagePatchesLastMessage(t *testing.T) {
	ds := New(Demo("me"))

	out, err := ds.InsertMessage(context.Background(), models.NewMessage{
		ConversationID: "conv-bram",
		SenderID:       "me",
		Content:        "hi",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, models.StatusSent, out.Status)

	convs, err := ds.ListConversations(context.Background(), "me")
	require.NoError(t, err)
	found := false
	for _, c := range convs {
		if c.ID == "conv-bram" {
			found = true
			require.NotNil(t, c.LastMessage)
			assert.Equal(t, "hi", c.LastMessage.Content)
			assert.Equal(t, models.StatusSent, c.LastMessage.Status)
		}
	}
	assert.True(t, found)
}

func TestDeleteMessageScopedToAuthor(t *testing.T) {
	ds := New(Demo("me"))

	// msg-a1 belongs to alice
	err := ds.DeleteMessage(context.Background(), "msg-a1", "me")
	assert.ErrorIs(t, err, repositories.ErrMessageNotFound)

	require.NoError(t, ds.DeleteMessage(context.Background(), "msg-a2", "me"))
	msgs, err := ds.ListMessages(context.Background(), "conv-alice")
	require.NoError(t, err)
	for _, m := range msgs {
		assert.NotEqual(t, "msg-a2", m.ID)
	}

	// deleting again is not found, never a panic
	err = ds.DeleteMessage(context.Background(), "msg-a2", "me")
	assert.ErrorIs(t, err, repositories.ErrMessageNotFound)
}

func TestUpdateMessageStatusNeverRegresses(t *testing.T) {
	ds := New(Demo("me"))

	require.NoError(t, ds.UpdateMessageStatus(context.Background(), "msg-a3", models.StatusDelivered))
	require.NoError(t, ds.UpdateMessageStatus(context.Background(), "msg-a3", models.StatusRead))
	// regression attempt is a silent no-op
	require.NoError(t, ds.UpdateMessageStatus(context.Background(), "msg-a3", models.StatusDelivered))

	msgs, err := ds.ListMessages(context.Background(), "conv-alice")
	require.NoError(t, err)
	for _, m := range msgs {
		if m.ID == "msg-a3" {
			assert.Equal(t, models.StatusRead, m.Status)
		}
	}
}

func TestReactionsConflictOnDuplicate(t *testing.T) {
	ds := New(Demo("me"))

	require.NoError(t, ds.AddReaction(context.Background(), "msg-b1", "me", "👍"))
	err := ds.AddReaction(context.Background(), "msg-b1", "me", "👍")
	assert.ErrorIs(t, err, repositories.ErrConflict)

	require.NoError(t, ds.RemoveReaction(context.Background(), "msg-b1", "me", "👍"))
	rows, err := ds.ListReactions(context.Background(), "msg-b1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	// removing an absent row is a no-op
	require.NoError(t, ds.RemoveReaction(context.Background(), "msg-b1", "me", "👍"))
}

func TestPinsConflictAndDelete(t *testing.T) {
	ds := New(Demo("me"))

	ids, err := ds.ListPinned(context.Background(), "me")
	require.NoError(t, err)
	assert.Contains(t, ids, "conv-studio")

	err = ds.InsertPin(context.Background(), "me", "conv-studio")
	assert.ErrorIs(t, err, repositories.ErrConflict)

	require.NoError(t, ds.DeletePin(context.Background(), "me", "conv-studio"))
	ids, err = ds.ListPinned(context.Background(), "me")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListMessagesReturnsCopies(t *testing.T) {
	ds := New(Demo("me"))

	msgs, err := ds.ListMessages(context.Background(), "conv-alice")
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	msgs[0].Content = "mutated"

	again, err := ds.ListMessages(context.Background(), "conv-alice")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again[0].Content)
}
