package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribedHandlers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var seen []string
	dispatcher.Subscribe(EventReaderLoggedIn, func(_ context.Context, event Event) error {
		seen = append(seen, event.ReaderID)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		ID:        "evt-1",
		Type:      EventReaderLoggedIn,
		ReaderID:  "r1",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, seen)
}

func TestDispatcherContinuesPastFailingHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var secondRan bool
	dispatcher.Subscribe(EventReaderLoggedIn, func(context.Context, Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventReaderLoggedIn, func(context.Context, Event) error {
		secondRan = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventReaderLoggedIn, ReaderID: "r1"})
	require.NoError(t, err)
	assert.True(t, secondRan)
}

func TestDispatcherIgnoresOtherEventTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var ran bool
	dispatcher.Subscribe(EventReaderLoggedIn, func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventType("something_else")})
	require.NoError(t, err)
	assert.False(t, ran)
}
