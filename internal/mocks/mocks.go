package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-sync/internal/models"
	"chat-sync/internal/push"
)

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	var list []models.Conversation
	if val := args.Get(0); val != nil {
		list = val.([]models.Conversation)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) IsParticipant(ctx context.Context, conversationID string, userID string) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) InsertMessage(ctx context.Context, msg models.NewMessage) (models.Message, error) {
	args := m.Called(ctx, msg)
	var out models.Message
	if val := args.Get(0); val != nil {
		out = val.(models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID string, userID string) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) UpdateMessageStatus(ctx context.Context, messageID string, status models.MessageStatus) error {
	args := m.Called(ctx, messageID, status)
	return args.Error(0)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) ListReactions(ctx context.Context, messageID string) ([]models.Reaction, error) {
	args := m.Called(ctx, messageID)
	var rows []models.Reaction
	if val := args.Get(0); val != nil {
		rows = val.([]models.Reaction)
	}
	return rows, args.Error(1)
}

func (m *ReactionRepositoryMock) AddReaction(ctx context.Context, messageID string, userID string, emoji string) error {
	args := m.Called(ctx, messageID, userID, emoji)
	return args.Error(0)
}

func (m *ReactionRepositoryMock) RemoveReaction(ctx context.Context, messageID string, userID string, emoji string) error {
	args := m.Called(ctx, messageID, userID, emoji)
	return args.Error(0)
}

type PinRepositoryMock struct {
	mock.Mock
}

func (m *PinRepositoryMock) ListPinned(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *PinRepositoryMock) InsertPin(ctx context.Context, userID string, conversationID string) error {
	args := m.Called(ctx, userID, conversationID)
	return args.Error(0)
}

func (m *PinRepositoryMock) DeletePin(ctx context.Context, userID string, conversationID string) error {
	args := m.Called(ctx, userID, conversationID)
	return args.Error(0)
}

type SubscriberMock struct {
	mock.Mock
}

func (m *SubscriberMock) Subscribe(scope models.Scope, filter push.Filter, fn push.Handler) (push.Subscription, error) {
	args := m.Called(scope, filter, fn)
	var sub push.Subscription
	if val := args.Get(0); val != nil {
		sub = val.(push.Subscription)
	}
	return sub, args.Error(1)
}

type SubscriptionMock struct {
	mock.Mock
}

func (m *SubscriptionMock) Unsubscribe() {
	m.Called()
}
