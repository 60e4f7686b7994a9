package push

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lib/pq"

	"chat-sync/internal/models"
	"chat-sync/internal/observability"
)

var scopeChannels = map[string]models.Scope{
	"conversations_changed": models.ScopeConversations,
	"messages_changed":      models.ScopeMessages,
	"pins_changed":          models.ScopePins,
}

// Listener adapts Postgres LISTEN/NOTIFY into scoped change subscriptions.
type Listener struct {
	pl   *pq.Listener
	mu   sync.RWMutex
	subs map[models.Scope]map[*listenerSub]struct{}
	done chan struct{}
}

// NewListener connects to the database notification channels and starts the
// dispatch loop.
func NewListener(dsn string) (*Listener, error) {
	pl := pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("push listener state change: %v", err)
		}
	})
	for ch := range scopeChannels {
		if err := pl.Listen(ch); err != nil {
			pl.Close()
			return nil, fmt.Errorf("listen %s: %w", ch, err)
		}
	}

	l := &Listener{
		pl:   pl,
		subs: make(map[models.Scope]map[*listenerSub]struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Subscribe registers a handler for events in the scope that match the filter.
func (l *Listener) Subscribe(scope models.Scope, filter Filter, fn Handler) (Subscription, error) {
	sub := &listenerSub{l: l, scope: scope, filter: filter, fn: fn}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subs[scope]; !ok {
		l.subs[scope] = make(map[*listenerSub]struct{})
	}
	l.subs[scope][sub] = struct{}{}
	return sub, nil
}

// Close stops the dispatch loop and drops every subscription.
func (l *Listener) Close() error {
	close(l.done)
	l.mu.Lock()
	l.subs = make(map[models.Scope]map[*listenerSub]struct{})
	l.mu.Unlock()
	return l.pl.Close()
}

func (l *Listener) run() {
	for {
		select {
		case n, ok := <-l.pl.Notify:
			if !ok {
				return
			}
			if n == nil {
				// reconnect marker; subscribers reload on the next event
				continue
			}
			ev, err := models.DecodeChangeEvent([]byte(n.Extra))
			if err != nil {
				log.Printf("push dispatch decode error: %v", err)
				continue
			}
			if expected, ok := scopeChannels[n.Channel]; !ok || expected != ev.Scope {
				log.Printf("push event scope mismatch on channel %s", n.Channel)
				continue
			}
			l.dispatch(ev)
		case <-l.done:
			return
		}
	}
}

// dispatch delivers the event to matching subscribers in subscription order.
// Handlers run on the listener goroutine so events within one scope keep the
// store's commit order.
func (l *Listener) dispatch(ev models.ChangeEvent) {
	l.mu.RLock()
	targets := make([]*listenerSub, 0, len(l.subs[ev.Scope]))
	for sub := range l.subs[ev.Scope] {
		if sub.filter.Matches(ev) {
			targets = append(targets, sub)
		}
	}
	l.mu.RUnlock()

	observability.IncPushEvent(string(ev.Scope), string(ev.Type))
	for _, sub := range targets {
		sub.fn(ev)
	}
}

func (l *Listener) remove(sub *listenerSub) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if set, ok := l.subs[sub.scope]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(l.subs, sub.scope)
		}
	}
}

type listenerSub struct {
	l      *Listener
	scope  models.Scope
	filter Filter
	fn     Handler
	once   sync.Once
}

func (s *listenerSub) Unsubscribe() {
	s.once.Do(func() { s.l.remove(s) })
}
