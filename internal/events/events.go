package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Source identifies this service in every published event.
const Source = "requests-service"

// Event types published by the portal.
const (
	TypeRequestSubmitted     = "request.submitted"
	TypeRequestStatusChanged = "request.status_changed"
	TypeRequestDeleted       = "request.deleted"
	TypeSyncCompleted        = "sync.completed"
)

// Event is the envelope for every domain event. Data is event-specific and
// JSON-encoded on the wire.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent builds an event envelope with a fresh identifier.
func NewEvent(eventType string, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    Source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events. Publishing is opportunistic and
// synchronous with the triggering operation; a publish failure is the
// caller's warning to log, never a reason to fail the operation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
