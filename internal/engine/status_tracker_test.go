package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chat-sync/internal/models"
)

func TestDeliveryPassMarksReceivedMessages(t *testing.T) {
	rec := newStatusRecorder()
	tracker := NewStatusTracker(rec, StaticUser("me"))

	tracker.DeliveryPass([]models.Message{
		{ID: "m1", SenderID: "other", Status: models.StatusSent},
		{ID: "m2", SenderID: "me", Status: models.StatusSent},
		{ID: "m3", SenderID: "other", Status: models.StatusRead},
	})

	call := rec.wait(t)
	assert.Equal(t, "m1", call.MessageID)
	assert.Equal(t, models.StatusDelivered, call.Status)
	rec.expectNone(t)
}

func TestReadPassThresholdAndExactlyOnce(t *testing.T) {
	rec := newStatusRecorder()
	tracker := NewStatusTracker(rec, StaticUser("me"))

	msgs := []models.Message{
		{ID: "m1", SenderID: "other", Status: models.StatusDelivered},
		{ID: "m2", SenderID: "me", Status: models.StatusDelivered},
	}

	tracker.ReadPass(msgs, []Visibility{
		{MessageID: "m1", Ratio: 0.4},
		{MessageID: "m2", Ratio: 0.9},
	})
	rec.expectNone(t)

	tracker.ReadPass(msgs, []Visibility{{MessageID: "m1", Ratio: 0.6}})
	call := rec.wait(t)
	assert.Equal(t, "m1", call.MessageID)
	assert.Equal(t, models.StatusRead, call.Status)

	// still visible: no second call
	tracker.ReadPass(msgs, []Visibility{{MessageID: "m1", Ratio: 0.8}})
	rec.expectNone(t)
}

func TestReadPassRearmsBelowThreshold(t *testing.T) {
	rec := newStatusRecorder()
	tracker := NewStatusTracker(rec, StaticUser("me"))

	msgs := []models.Message{{ID: "m1", SenderID: "other", Status: models.StatusDelivered}}

	tracker.ReadPass(msgs, []Visibility{{MessageID: "m1", Ratio: 0.7}})
	rec.wait(t)

	tracker.ReadPass(msgs, []Visibility{{MessageID: "m1", Ratio: 0.2}})
	tracker.ReadPass(msgs, []Visibility{{MessageID: "m1", Ratio: 0.7}})
	call := rec.wait(t)
	assert.Equal(t, models.StatusRead, call.Status)
}

func TestReadPassSkipsAlreadyRead(t *testing.T) {
	rec := newStatusRecorder()
	tracker := NewStatusTracker(rec, StaticUser("me"))

	msgs := []models.Message{{ID: "m1", SenderID: "other", Status: models.StatusRead}}
	tracker.ReadPass(msgs, []Visibility{{MessageID: "m1", Ratio: 1}})
	rec.expectNone(t)
}

func TestHandleIncomingForeground(t *testing.T) {
	rec := newStatusRecorder()
	tracker := NewStatusTracker(rec, StaticUser("me"))
	tracker.Foreground = func() bool { return true }

	tracker.HandleIncoming(models.Message{ID: "m1", SenderID: "other", Status: models.StatusSent})

	seen := map[models.MessageStatus]string{}
	first := rec.wait(t)
	seen[first.Status] = first.MessageID
	second := rec.wait(t)
	seen[second.Status] = second.MessageID

	assert.Equal(t, "m1", seen[models.StatusDelivered])
	assert.Equal(t, "m1", seen[models.StatusRead])
	rec.expectNone(t)
}

func TestHandleIncomingBackgroundOnlyDelivers(t *testing.T) {
	rec := newStatusRecorder()
	tracker := NewStatusTracker(rec, StaticUser("me"))

	tracker.HandleIncoming(models.Message{ID: "m1", SenderID: "other", Status: models.StatusSent})

	call := rec.wait(t)
	assert.Equal(t, models.StatusDelivered, call.Status)
	rec.expectNone(t)
}

func TestHandleIncomingIgnoresOwnMessages(t *testing.T) {
	rec := newStatusRecorder()
	tracker := NewStatusTracker(rec, StaticUser("me"))
	tracker.Foreground = func() bool { return true }

	tracker.HandleIncoming(models.Message{ID: "m1", SenderID: "me", Status: models.StatusSent})
	rec.expectNone(t)
}

func TestResetClearsReadBookkeeping(t *testing.T) {
	rec := newStatusRecorder()
	tracker := NewStatusTracker(rec, StaticUser("me"))

	msgs := []models.Message{{ID: "m1", SenderID: "other", Status: models.StatusDelivered}}
	tracker.ReadPass(msgs, []Visibility{{MessageID: "m1", Ratio: 0.9}})
	rec.wait(t)

	tracker.Reset()
	tracker.ReadPass(msgs, []Visibility{{MessageID: "m1", Ratio: 0.9}})
	rec.wait(t)
}
