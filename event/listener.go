package event

import "context"

// Listener handles one event.
type Listener interface {
	// Handle processes the event. A returned error stops synchronous
	// dispatch for later listeners; ErrStopPropagation stops it without
	// being treated as a failure.
	Handle(ctx context.Context, event Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, event Event) error

// Handle implements Listener.
func (f ListenerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}
