package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublish(t *testing.T) {
	t.Parallel()

	registry := NewInMemoryRegistry(nil)
	hub := NewHub(registry, nil)

	first := &memorySink{}
	second := &memorySink{}
	registry.Add("user-1", first)
	registry.Add("user-2", second)

	hub.Publish(context.Background(), NewEvent(EventTaskCreated, map[string]string{"title": "Task"}))

	require.Equal(t, 1, first.received())
	require.Equal(t, 1, second.received())

	// Wire form carries the event name and payload
	var decoded struct {
		Name    string          `json:"event"`
		Payload json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.messages[0], &decoded))
	assert.Equal(t, EventTaskCreated, decoded.Name)
	assert.JSONEq(t, `{"title": "Task"}`, string(decoded.Payload))
}

func TestHubPublishTo(t *testing.T) {
	t.Parallel()

	registry := NewInMemoryRegistry(nil)
	hub := NewHub(registry, nil)

	mine := &memorySink{}
	theirs := &memorySink{}
	registry.Add("user-1", mine)
	registry.Add("user-2", theirs)

	hub.PublishTo(context.Background(), "user-1", NewEvent(EventNotification, map[string]string{"message": "hi"}))

	assert.Equal(t, 1, mine.received())
	assert.Equal(t, 0, theirs.received())

	// No connections for the user is a quiet no-op
	hub.PublishTo(context.Background(), "user-3", NewEvent(EventNotification, nil))
}

func TestHubDropsDeadSinks(t *testing.T) {
	t.Parallel()

	registry := NewInMemoryRegistry(nil)
	hub := NewHub(registry, nil)

	dead := &memorySink{sendErr: errors.New("connection reset")}
	alive := &memorySink{}
	registry.Add("user-1", dead)
	registry.Add("user-2", alive)

	hub.Publish(context.Background(), NewEvent(EventTaskUpdated, nil))

	// The dead sink is closed; the healthy one still gets the event
	assert.True(t, dead.closed)
	assert.Equal(t, 1, alive.received())
}

func TestNewHubRequiresRegistry(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewHub(nil, nil) })
}
