package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chat-sync/internal/models"
	"chat-sync/internal/push"
	"chat-sync/internal/repositories"
)

// MessageStream owns the ordered message list of the active conversation and
// exactly one scoped push subscription. Switching conversations tears the
// previous subscription down; its handler closure stays bound to the
// conversation id captured at subscribe time, so a late event from the old
// conversation can never touch the new list.
type MessageStream struct {
	backend  *Backend
	user     UserProvider
	tracker  *StatusTracker
	notifier Notifier

	mu             sync.RWMutex
	conversationID string
	messages       []models.Message
	sub            push.Subscription
}

// NewMessageStream constructs a stream. notifier may be nil.
func NewMessageStream(backend *Backend, user UserProvider, tracker *StatusTracker, notifier Notifier) *MessageStream {
	return &MessageStream{
		backend:  backend,
		user:     user,
		tracker:  tracker,
		notifier: orLogNotifier(notifier),
	}
}

// SwitchConversation makes conversationID the active conversation: the old
// subscription is released, the full ascending history is loaded, the
// delivery pass runs over it and a new scoped subscription is opened.
func (s *MessageStream) SwitchConversation(ctx context.Context, conversationID string) error {
	self := s.user.CurrentUserID()
	if self == "" {
		s.notifier.Notify("sign in to open a conversation")
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
	s.conversationID = conversationID
	s.messages = nil
	s.mu.Unlock()
	s.tracker.Reset()

	msgs, err := s.backend.Messages.ListMessages(ctx, conversationID)
	if err != nil {
		s.notifier.Notify("messages could not be loaded")
		return fmt.Errorf("load messages: %w", err)
	}
	for i := range msgs {
		msgs[i].IsMe = msgs[i].SenderID == self
	}
	s.tracker.DeliveryPass(msgs)

	s.mu.Lock()
	if s.conversationID != conversationID {
		// switched away while loading
		s.mu.Unlock()
		return nil
	}
	s.messages = msgs
	s.mu.Unlock()

	if s.backend.Subscriber == nil {
		return nil
	}

	convID := conversationID
	sub, err := s.backend.Subscriber.Subscribe(models.ScopeMessages, push.Filter{ConversationID: convID},
		func(ev models.ChangeEvent) {
			s.apply(convID, ev)
		})
	if err != nil {
		s.notifier.Notify("live updates are unavailable")
		return fmt.Errorf("subscribe messages: %w", err)
	}

	s.mu.Lock()
	if s.conversationID == convID {
		s.sub = sub
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	sub.Unsubscribe()
	return nil
}

// apply reconciles one push event into the list. conversationID is the id
// captured when the subscription was opened; events for any other active
// conversation are discarded.
func (s *MessageStream) apply(conversationID string, ev models.ChangeEvent) {
	self := s.user.CurrentUserID()
	if ev.ConversationID != "" && ev.ConversationID != conversationID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversationID != conversationID {
		return
	}

	switch ev.Type {
	case models.EventInsert:
		if ev.Message == nil {
			return
		}
		msg := *ev.Message
		msg.IsMe = msg.SenderID == self
		if !msg.IsMe {
			s.tracker.HandleIncoming(msg)
		}
		s.messages = append(s.messages, msg)
	case models.EventUpdate:
		if ev.Message == nil {
			return
		}
		msg := *ev.Message
		msg.IsMe = msg.SenderID == self
		for i := range s.messages {
			if s.messages[i].ID == msg.ID {
				s.messages[i] = msg
				break
			}
		}
	case models.EventDelete:
		s.removeLocked(ev.DeletedID)
	}
}

// Send issues an insert for the active conversation. An empty send (no
// content, no attachment) is a no-op. In live mode the local list is not
// touched; the message appears when its confirming insert event arrives. In
// fallback mode the constructed message is appended synchronously.
func (s *MessageStream) Send(ctx context.Context, content, attachmentURL, replyToID, threadID string) error {
	self := s.user.CurrentUserID()
	if self == "" {
		s.notifier.Notify("sign in to send messages")
		return ErrNotAuthenticated
	}

	s.mu.RLock()
	convID := s.conversationID
	s.mu.RUnlock()
	if convID == "" {
		return ErrNoActiveConversation
	}

	msg := models.NewMessage{
		ConversationID: convID,
		SenderID:       self,
		Content:        content,
		AttachmentURL:  attachmentURL,
		ReplyToID:      replyToID,
		ThreadID:       threadID,
	}
	if msg.Empty() {
		return nil
	}

	out, err := s.backend.Messages.InsertMessage(ctx, msg)
	if err != nil {
		s.notifier.Notify("message could not be sent")
		return fmt.Errorf("send message: %w", err)
	}
	if s.backend.Live() {
		return nil
	}

	out.IsMe = true
	s.mu.Lock()
	if s.conversationID == convID {
		s.messages = append(s.messages, out)
	}
	s.mu.Unlock()
	return nil
}

// Delete removes a self-authored message. The persistence call is scoped to
// (messageID, current user); a rejected delete leaves the list untouched.
func (s *MessageStream) Delete(ctx context.Context, messageID string) error {
	self := s.user.CurrentUserID()
	if self == "" {
		s.notifier.Notify("sign in to delete messages")
		return ErrNotAuthenticated
	}

	if err := s.backend.Messages.DeleteMessage(ctx, messageID, self); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			s.notifier.Notify("only your own messages can be deleted")
			return err
		}
		s.notifier.Notify("message could not be deleted")
		return fmt.Errorf("delete message: %w", err)
	}

	s.mu.Lock()
	s.removeLocked(messageID)
	s.mu.Unlock()
	return nil
}

// ReportVisibility feeds viewport intersection reports to the read pass.
func (s *MessageStream) ReportVisibility(entries []Visibility) {
	s.tracker.ReadPass(s.Messages(), entries)
}

// Messages returns a snapshot of the active conversation's list.
func (s *MessageStream) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// ActiveConversation returns the id of the active conversation, if any.
func (s *MessageStream) ActiveConversation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversationID
}

// Close releases the scoped subscription and clears the list.
func (s *MessageStream) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.conversationID = ""
	s.messages = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

// removeLocked drops a message by id; removing an absent id is a no-op.
func (s *MessageStream) removeLocked(messageID string) {
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}
