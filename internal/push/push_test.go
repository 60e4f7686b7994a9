package push

import (
	"testing"

	"chat-sync/internal/models"
)

func TestFilterMatches(t *testing.T) {
	ev := models.ChangeEvent{
		Scope:          models.ScopeMessages,
		Type:           models.EventInsert,
		ConversationID: "c1",
		UserID:         "u1",
	}

	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty matches all", Filter{}, true},
		{"conversation match", Filter{ConversationID: "c1"}, true},
		{"conversation mismatch", Filter{ConversationID: "c2"}, false},
		{"user match", Filter{UserID: "u1"}, true},
		{"user mismatch", Filter{UserID: "u2"}, false},
		{"both match", Filter{ConversationID: "c1", UserID: "u1"}, true},
		{"one mismatch", Filter{ConversationID: "c1", UserID: "u2"}, false},
	}

	for _, tc := range cases {
		if got := tc.filter.Matches(ev); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
