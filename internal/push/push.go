// Package push delivers row-level change events to scoped subscribers.
package push

import "chat-sync/internal/models"

// Filter narrows a subscription to rows matching the set keys. Empty fields
// match everything.
type Filter struct {
	ConversationID string
	UserID         string
}

// Matches reports whether the event's row keys satisfy the filter.
func (f Filter) Matches(ev models.ChangeEvent) bool {
	if f.ConversationID != "" && ev.ConversationID != f.ConversationID {
		return false
	}
	if f.UserID != "" && ev.UserID != f.UserID {
		return false
	}
	return true
}

// Handler consumes decoded change events.
type Handler func(models.ChangeEvent)

// Subscription is a live scoped channel; Unsubscribe releases it and is safe
// to call more than once.
type Subscription interface {
	Unsubscribe()
}

// Subscriber attaches change handlers for a scope.
type Subscriber interface {
	Subscribe(scope models.Scope, filter Filter, fn Handler) (Subscription, error)
}
