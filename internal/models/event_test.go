package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMessageInsert(t *testing.T) {
	raw := []byte(`{"eventType":"INSERT","table":"messages","new":{
        "id":"m1","conversation_id":"c1","sender_id":"u2","content":"hi","status":"sent"}}`)

	ev, err := DecodeChangeEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, ScopeMessages, ev.Scope)
	assert.Equal(t, EventInsert, ev.Type)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "m1", ev.Message.ID)
	assert.Equal(t, StatusSent, ev.Message.Status)
	assert.Equal(t, "c1", ev.ConversationID)
}

func TestDecodeMessageDelete(t *testing.T) {
	raw := []byte(`{"eventType":"DELETE","table":"messages","old":{"id":"m9","conversation_id":"c1"}}`)

	ev, err := DecodeChangeEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, EventDelete, ev.Type)
	assert.Nil(t, ev.Message)
	assert.Equal(t, "m9", ev.DeletedID)
	assert.Equal(t, "c1", ev.ConversationID)
}

func TestDecodePinInsert(t *testing.T) {
	raw := []byte(`{"eventType":"INSERT","table":"pinned_conversations","new":{"user_id":"u1","conversation_id":"c3"}}`)

	ev, err := DecodeChangeEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, ScopePins, ev.Scope)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "c3", ev.DeletedID)
}

func TestDecodeUnknownTable(t *testing.T) {
	_, err := DecodeChangeEvent([]byte(`{"eventType":"INSERT","table":"payments","new":{"id":"x"}}`))
	require.Error(t, err)
}

func TestDecodeUnknownEventType(t *testing.T) {
	_, err := DecodeChangeEvent([]byte(`{"eventType":"TRUNCATE","table":"messages","new":{"id":"x"}}`))
	require.Error(t, err)
}

func TestDecodeMissingRow(t *testing.T) {
	_, err := DecodeChangeEvent([]byte(`{"eventType":"INSERT","table":"messages"}`))
	require.Error(t, err)
}

func TestEnvelopeRoundTripMessage(t *testing.T) {
	ev := ChangeEvent{
		Scope:          ScopeMessages,
		Type:           EventInsert,
		Message:        &Message{ID: "m1", ConversationID: "c1", SenderID: "u2", Content: "hi", Status: StatusSent},
		ConversationID: "c1",
	}

	env, err := ev.Envelope()
	require.NoError(t, err)

	decoded, err := env.Decode()
	require.NoError(t, err)
	require.NotNil(t, decoded.Message)
	assert.Equal(t, "m1", decoded.Message.ID)
	assert.Equal(t, "c1", decoded.ConversationID)
}

func TestStatusMonotone(t *testing.T) {
	assert.True(t, StatusSent.CanAdvanceTo(StatusDelivered))
	assert.True(t, StatusSent.CanAdvanceTo(StatusRead))
	assert.True(t, StatusDelivered.CanAdvanceTo(StatusRead))
	assert.False(t, StatusRead.CanAdvanceTo(StatusDelivered))
	assert.False(t, StatusDelivered.CanAdvanceTo(StatusSent))
	assert.False(t, StatusRead.CanAdvanceTo(StatusRead))
}

func TestConversationDeriveDirect(t *testing.T) {
	conv := Conversation{
		ID: "c1",
		Participants: []Participant{
			{UserID: "me", DisplayName: "Me"},
			{UserID: "u2", DisplayName: "Alice", AvatarURL: "http://a", Online: true},
		},
	}
	conv.DeriveDirect("me")

	assert.Equal(t, "Alice", conv.Name)
	assert.Equal(t, "http://a", conv.AvatarURL)
	assert.True(t, conv.Online)

	group := Conversation{ID: "c2", Name: "Crew", IsGroup: true, Participants: conv.Participants}
	group.DeriveDirect("me")
	assert.Equal(t, "Crew", group.Name)
}
