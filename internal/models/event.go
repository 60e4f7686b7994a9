package models

import (
	"encoding/json"
	"fmt"
)

// Scope identifies the table family a subscription or event belongs to.
type Scope string

const (
	ScopeConversations Scope = "conversations"
	ScopeMessages      Scope = "messages"
	ScopePins          Scope = "pins"
)

// EventType is the kind of row change carried by a push event.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEnvelope is the loosely typed wire form emitted by the push channel.
type ChangeEnvelope struct {
	EventType string          `json:"eventType"`
	Table     string          `json:"table"`
	New       json.RawMessage `json:"new,omitempty"`
	Old       json.RawMessage `json:"old,omitempty"`
}

// ChangeEvent is the typed event handed to the sync core. Message is set for
// inserts and updates in the message scope; DeletedID for deletes. The
// envelope is decoded exactly once, at the boundary, so no other component
// ever inspects raw payloads.
type ChangeEvent struct {
	Scope   Scope
	Type    EventType
	Message *Message
	// DeletedID is the primary key of a deleted row.
	DeletedID string
	// ConversationID and UserID are the filterable keys of the changed row.
	ConversationID string
	UserID         string
}

// Envelope re-encodes the event into its wire form. Message-scope events
// carry the full row; other scopes carry only the filterable keys, which is
// all coarse list invalidation needs.
func (ev ChangeEvent) Envelope() (ChangeEnvelope, error) {
	env := ChangeEnvelope{EventType: string(ev.Type)}
	switch ev.Scope {
	case ScopeConversations:
		env.Table = "conversations"
	case ScopeMessages:
		env.Table = "messages"
	case ScopePins:
		env.Table = "pinned_conversations"
	}

	var row []byte
	var err error
	if ev.Scope == ScopeMessages && ev.Message != nil {
		row, err = json.Marshal(ev.Message)
	} else {
		id := ev.DeletedID
		convID := ev.ConversationID
		if ev.Scope == ScopePins {
			id = ""
			if convID == "" {
				convID = ev.DeletedID
			}
		}
		row, err = json.Marshal(rowKeys{ID: id, ConversationID: convID, UserID: ev.UserID})
	}
	if err != nil {
		return ChangeEnvelope{}, fmt.Errorf("encode change row: %w", err)
	}

	if ev.Type == EventDelete {
		env.Old = row
	} else {
		env.New = row
	}
	return env, nil
}

type rowKeys struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// DecodeChangeEvent parses a raw push payload into a ChangeEvent.
func DecodeChangeEvent(raw []byte) (ChangeEvent, error) {
	var env ChangeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode change envelope: %w", err)
	}
	return env.Decode()
}

// Decode converts the envelope into the closed event variant.
func (env ChangeEnvelope) Decode() (ChangeEvent, error) {
	ev := ChangeEvent{}

	switch env.Table {
	case "conversations", "conversation_participants":
		ev.Scope = ScopeConversations
	case "messages":
		ev.Scope = ScopeMessages
	case "pinned_conversations":
		ev.Scope = ScopePins
	default:
		return ChangeEvent{}, fmt.Errorf("unknown change table %q", env.Table)
	}

	switch EventType(env.EventType) {
	case EventInsert, EventUpdate, EventDelete:
		ev.Type = EventType(env.EventType)
	default:
		return ChangeEvent{}, fmt.Errorf("unknown change event type %q", env.EventType)
	}

	row := env.New
	if ev.Type == EventDelete {
		row = env.Old
	}
	if len(row) == 0 {
		return ChangeEvent{}, fmt.Errorf("change event %s/%s carries no row", env.Table, env.EventType)
	}

	var keys rowKeys
	if err := json.Unmarshal(row, &keys); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode change row keys: %w", err)
	}
	ev.ConversationID = keys.ConversationID
	ev.UserID = keys.UserID
	if ev.Scope == ScopePins {
		// Pin rows are keyed by (user, conversation); the conversation id is
		// what the registry cares about.
		ev.DeletedID = keys.ConversationID
	}

	if ev.Scope == ScopeMessages {
		switch ev.Type {
		case EventInsert, EventUpdate:
			var msg Message
			if err := json.Unmarshal(row, &msg); err != nil {
				return ChangeEvent{}, fmt.Errorf("decode message row: %w", err)
			}
			ev.Message = &msg
		case EventDelete:
			ev.DeletedID = keys.ID
		}
	}

	return ev, nil
}
