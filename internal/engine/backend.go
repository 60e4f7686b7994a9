// Package engine keeps a local mirror of conversations and messages
// consistent with a push-driven remote store.
package engine

import (
	"errors"
	"log"

	"github.com/jmoiron/sqlx"

	"chat-sync/internal/fallback"
	"chat-sync/internal/push"
	"chat-sync/internal/repositories"
)

// ErrNotAuthenticated aborts an operation before any remote call is made.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrNoActiveConversation is returned by stream operations that need one.
var ErrNoActiveConversation = errors.New("no active conversation")

// Backend bundles the persistence collaborators behind one interface set.
// Live and fallback modes satisfy the same interfaces; the mode is a single
// startup-time choice, never a runtime branch scattered through call sites.
type Backend struct {
	Conversations repositories.ConversationRepository
	Messages      repositories.MessageRepository
	Reactions     repositories.ReactionRepository
	Pins          repositories.PinRepository

	// Subscriber is nil in fallback mode: no push channel is ever opened
	// and sends echo into the local list directly.
	Subscriber push.Subscriber
}

// NewLiveBackend wires the sqlx repositories and a push subscriber.
func NewLiveBackend(db *sqlx.DB, sub push.Subscriber) *Backend {
	return &Backend{
		Conversations: repositories.NewConversationRepo(db),
		Messages:      repositories.NewMessageRepo(db),
		Reactions:     repositories.NewReactionRepo(db),
		Pins:          repositories.NewPinRepo(db),
		Subscriber:    sub,
	}
}

// NewFallbackBackend serves every repository from the in-memory dataset.
func NewFallbackBackend(ds *fallback.Dataset) *Backend {
	return &Backend{
		Conversations: ds,
		Messages:      ds,
		Reactions:     ds,
		Pins:          ds,
	}
}

// Live reports whether a push channel backs this backend.
func (b *Backend) Live() bool {
	return b.Subscriber != nil
}

// UserProvider supplies the current user id; empty means signed out.
type UserProvider interface {
	CurrentUserID() string
}

// StaticUser is a fixed-identity UserProvider.
type StaticUser string

func (u StaticUser) CurrentUserID() string { return string(u) }

// Notifier surfaces dismissable user-facing notices. The UI layer supplies
// its own; the default writes to the log.
type Notifier interface {
	Notify(message string)
}

type logNotifier struct{}

func (logNotifier) Notify(message string) {
	log.Printf("notice: %s", message)
}

func orLogNotifier(n Notifier) Notifier {
	if n == nil {
		return logNotifier{}
	}
	return n
}
