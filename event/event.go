// Package event provides the in-process event dispatcher the SDK uses to
// connect mutations to cache invalidation.
package event

import "time"

// Event is anything dispatchable.
type Event interface {
	// Name is the event identifier, e.g. "article.updated".
	Name() string
}

// BaseEvent can be embedded into concrete event structs.
type BaseEvent struct {
	name       string
	occurredAt time.Time
}

// NewEvent creates a base event stamped with the current time.
func NewEvent(name string) BaseEvent {
	return BaseEvent{
		name:       name,
		occurredAt: time.Now(),
	}
}

// Name returns the event name.
func (e BaseEvent) Name() string {
	return e.name
}

// OccurredAt returns the event creation time.
func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}
