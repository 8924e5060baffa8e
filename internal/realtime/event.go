package realtime

import (
	"context"
	"encoding/json"
	"time"
)

// Well-known event names sent to clients. Broadcast events go to every
// connected client; the notification event is scoped to one recipient.
const (
	EventTaskCreated  = "task_created"
	EventTaskUpdated  = "task_updated"
	EventTaskDeleted  = "task_deleted"
	EventCommentAdded = "comment_added"
	EventNotification = "notification"
)

// Event is a named payload delivered to clients. The payload must be
// JSON-serializable; it is marshaled once per publish, not per sink.
type Event struct {
	Name       string    `json:"event"`
	Payload    any       `json:"data"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(name string, payload any) Event {
	return Event{
		Name:       name,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Marshal encodes the event to its wire form.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Broadcaster publishes events to connected clients. Implementations must
// treat delivery as best-effort: a slow or dead client never blocks or
// fails the publisher.
type Broadcaster interface {
	// Publish delivers the event to every connected client.
	Publish(ctx context.Context, event Event)

	// PublishTo delivers the event to all connections of a single user,
	// identified by the string form of the user's ID. Users with no open
	// connections are silently skipped.
	PublishTo(ctx context.Context, userID string, event Event)
}
