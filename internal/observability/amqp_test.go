package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chat-sync/internal/mocks"
	"chat-sync/internal/observability"
)

func TestPublishEventWithoutPublisherIsNoop(t *testing.T) {
	observability.SetPublisher(nil)
	require.NoError(t, observability.PublishEvent(context.Background(), "sync_events.test", observability.EventEnvelope{
		EventType: "sync_events",
		EventName: "test",
	}, nil))
}

func TestPublishEventDelegatesToPublisher(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	publisher.On("PublishJSON", mock.Anything, "sync_events.test", mock.Anything, mock.Anything).Return(nil).Once()
	observability.SetPublisher(publisher)
	defer observability.SetPublisher(nil)

	require.NoError(t, observability.PublishEvent(context.Background(), "sync_events.test", observability.EventEnvelope{
		EventType: "sync_events",
		EventName: "test",
	}, map[string]string{"x-request-id": "r1"}))
	publisher.AssertExpectations(t)
}

func TestPublishEventSurfacesPublisherError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	publisher.On("PublishJSON", mock.Anything, "sync_events.test", mock.Anything, mock.Anything).Return(assert.AnError).Once()
	observability.SetPublisher(publisher)
	defer observability.SetPublisher(nil)

	assert.Error(t, observability.PublishEvent(context.Background(), "sync_events.test", observability.EventEnvelope{}, nil))
	publisher.AssertExpectations(t)
}

func TestRecordDroppedFailurePublishesEvent(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	publisher.On("PublishJSON", mock.Anything, "sync_events.dropped", mock.Anything, mock.Anything).Return(nil).Once()
	observability.SetPublisher(publisher)
	defer observability.SetPublisher(nil)

	observability.RecordDroppedFailure("pin_toggle", "user-1", assert.AnError)
	publisher.AssertExpectations(t)
}

func TestBuildHeaders(t *testing.T) {
	assert.Empty(t, observability.BuildHeaders("", ""))
	headers := observability.BuildHeaders("r1", "t1")
	assert.Equal(t, map[string]string{"x-request-id": "r1", "trace_id": "t1"}, headers)
}
