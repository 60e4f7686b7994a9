package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPTokenResolver validates tokens against an external auth service
// exposing GET /validate?token=... with a {"user_id": "..."} response.
type HTTPTokenResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTokenResolver constructs a resolver for the auth service base URL.
func NewHTTPTokenResolver(baseURL string) *HTTPTokenResolver {
	return &HTTPTokenResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Resolve returns the user id the token authenticates.
func (r *HTTPTokenResolver) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return "", errors.New("empty token")
	}

	endpoint := fmt.Sprintf("%s/validate?token=%s", r.baseURL, url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("validate token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("validate token: status %d", resp.StatusCode)
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.UserID == "" {
		return "", errors.New("invalid token")
	}
	return body.UserID, nil
}
