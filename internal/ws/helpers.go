package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"chat-sync/internal/models"
	"chat-sync/internal/observability"
)

func newConnID() string {
	return uuid.NewString()
}

func envelopeJSON(env models.ChangeEnvelope) ([]byte, error) {
	return json.Marshal(env)
}

// publishSubscriptionEvent reports a gateway connection lifecycle event to
// the event bus; with no publisher configured it is a no-op.
func publishSubscriptionEvent(key RoomKey, info ConnInfo, event, reason string) {
	payload := map[string]interface{}{
		"subscription": map[string]interface{}{
			"scope":           string(key.Scope),
			"conversation_id": key.ConversationID,
			"event":           event,
			"conn_id":         info.ConnID,
			"duration_ms":     time.Since(info.ConnectedAt).Milliseconds(),
			"reason":          reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events."+string(key.Scope), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
}
