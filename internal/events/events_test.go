package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event, err := NewEvent(WordAdded, "mia_01", WordAddedPayload{Word: "serendipity"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, WordAdded, event.Type)
	assert.Equal(t, "mia_01", event.Username)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var payload WordAddedPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "serendipity", payload.Word)
}

func TestNewEventWithoutPayload(t *testing.T) {
	event, err := NewEvent(SessionEnded, "mia_01", nil)
	require.NoError(t, err)
	assert.Empty(t, event.Payload)
}

func TestNewEventUnencodablePayload(t *testing.T) {
	_, err := NewEvent(WordAdded, "mia_01", make(chan int))
	assert.Error(t, err)
}

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *Event
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestHandlerFunc(t *testing.T) {
	var got *Event
	h := HandlerFunc(func(_ context.Context, e *Event) error {
		got = e
		return errors.New("boom")
	})

	event, err := NewEvent(ReviewCompleted, "mia_01", ReviewCompletedPayload{Reviewed: 2})
	require.NoError(t, err)

	assert.EqualError(t, h.HandleEvent(context.Background(), event), "boom")
	assert.Same(t, event, got)
}
