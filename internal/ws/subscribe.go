package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"chat-sync/internal/models"
	"chat-sync/internal/observability"
	"chat-sync/internal/push"
	"chat-sync/internal/repositories"
)

// TokenResolver maps a bearer token to the authenticated user id.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// SubscribeHandler upgrades gateway subscription requests.
type SubscribeHandler struct {
	hub      *Hub
	convRepo repositories.ConversationRepository
	resolver TokenResolver
}

// NewSubscribeHandler constructs a SubscribeHandler.
func NewSubscribeHandler(hub *Hub, convRepo repositories.ConversationRepository, resolver TokenResolver) *SubscribeHandler {
	return &SubscribeHandler{hub: hub, convRepo: convRepo, resolver: resolver}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the request, validates the requested scope and
// registers the upgraded connection with the hub.
func (h *SubscribeHandler) Handle(c *gin.Context) {
	scope := models.Scope(c.Query("scope"))
	switch scope {
	case models.ScopeConversations, models.ScopeMessages, models.ScopePins:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scope"})
		return
	}

	ctx, span := otel.Tracer("chat-sync/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
	}
	userID, err := h.resolver.Resolve(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	key := RoomKey{Scope: scope, ConversationID: c.Query("conversation_id")}
	if scope == models.ScopePins {
		// pin events are private; the room is always scoped to the caller
		key.UserID = userID
	}
	if key.ConversationID != "" {
		member, err := h.convRepo.IsParticipant(ctx, key.ConversationID, userID)
		if err != nil || !member {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(key, conn, info)

	observability.IncWSActive(string(scope))
	observability.IncWSEvent(string(scope), "ws_connect")
	publishSubscriptionEvent(key, info, "ws_connect", "")

	// Keep the connection alive and clean up on close.
	go func() {
		defer func() {
			h.hub.RemoveClient(key, conn)
			observability.DecWSActive(string(scope))
			observability.IncWSEvent(string(scope), "ws_disconnect")
			publishSubscriptionEvent(key, info, "ws_disconnect", "")
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// AttachListener bridges the database push listener into the hub: every
// decoded change event is fanned out to matching rooms.
func AttachListener(l *push.Listener, hub *Hub) ([]push.Subscription, error) {
	scopes := []models.Scope{models.ScopeConversations, models.ScopeMessages, models.ScopePins}
	subs := make([]push.Subscription, 0, len(scopes))
	for _, scope := range scopes {
		sub, err := l.Subscribe(scope, push.Filter{}, hub.Broadcast)
		if err != nil {
			for _, prev := range subs {
				prev.Unsubscribe()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
