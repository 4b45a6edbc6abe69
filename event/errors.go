package event

import "errors"

// ErrStopPropagation stops later listeners without being treated as a
// dispatch failure.
var ErrStopPropagation = errors.New("stop propagation")

// ErrDispatcherClosed is returned when dispatching on a closed dispatcher.
var ErrDispatcherClosed = errors.New("dispatcher closed")
