package push

import (
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"chat-sync/internal/models"
)

// Client is a Subscriber that receives change events from the realtime
// gateway over one websocket connection per subscription.
type Client struct {
	baseURL string
	token   string
	dialer  *websocket.Dialer
}

// NewClient constructs a gateway client. baseURL uses the ws scheme,
// e.g. "ws://localhost:8083".
func NewClient(baseURL, token string) *Client {
	return &Client{baseURL: baseURL, token: token, dialer: websocket.DefaultDialer}
}

// Subscribe dials the gateway for the scope and starts a read loop that
// decodes and dispatches matching events.
func (c *Client) Subscribe(scope models.Scope, filter Filter, fn Handler) (Subscription, error) {
	q := url.Values{}
	q.Set("scope", string(scope))
	q.Set("token", c.token)
	if filter.ConversationID != "" {
		q.Set("conversation_id", filter.ConversationID)
	}
	if filter.UserID != "" {
		q.Set("user_id", filter.UserID)
	}

	endpoint := fmt.Sprintf("%s/ws/subscribe?%s", c.baseURL, q.Encode())
	conn, _, err := c.dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}

	sub := &clientSub{conn: conn}
	go sub.readLoop(scope, filter, fn)
	return sub, nil
}

type clientSub struct {
	conn *websocket.Conn
	once sync.Once
}

func (s *clientSub) readLoop(scope models.Scope, filter Filter, fn Handler) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		ev, err := models.DecodeChangeEvent(data)
		if err != nil {
			log.Printf("gateway event decode error: %v", err)
			continue
		}
		// The gateway filters server-side; the re-check keeps a
		// misrouted frame from crossing scopes.
		if ev.Scope != scope || !filter.Matches(ev) {
			continue
		}
		fn(ev)
	}
}

func (s *clientSub) Unsubscribe() {
	s.once.Do(func() { _ = s.conn.Close() })
}
