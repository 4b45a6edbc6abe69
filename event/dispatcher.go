package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/scribehub/go-scribe/logger"
)

// UnsubscribeFunc removes a previously registered listener.
type UnsubscribeFunc func()

// Dispatcher routes events to listeners, synchronously or on a worker pool.
type Dispatcher interface {
	// Subscribe registers a listener, returning its unsubscribe function.
	Subscribe(eventName string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc

	// Dispatch delivers the event to every listener in priority order.
	Dispatch(ctx context.Context, event Event) error

	// DispatchAsync delivers the event on the worker pool.
	DispatchAsync(ctx context.Context, event Event)

	// Close drains the worker pool.
	Close() error
}

type listenerEntry struct {
	id       uint64
	listener Listener
	priority int
	async    bool
}

// SubscribeOption tunes one subscription.
type SubscribeOption func(*listenerEntry)

// WithPriority orders listeners; lower runs first.
func WithPriority(priority int) SubscribeOption {
	return func(e *listenerEntry) {
		e.priority = priority
	}
}

// WithAsync runs the listener on the worker pool even for sync dispatch.
func WithAsync() SubscribeOption {
	return func(e *listenerEntry) {
		e.async = true
	}
}

type dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]listenerEntry
	nextID    uint64
	pool      *ants.Pool
	poolSize  int
	logger    *logger.CtxZapLogger
	closed    int32
}

// DispatcherOption tunes the dispatcher.
type DispatcherOption func(*dispatcher)

// WithPoolSize sets the async worker pool size.
func WithPoolSize(size int) DispatcherOption {
	return func(d *dispatcher) {
		if size > 0 {
			d.poolSize = size
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *logger.CtxZapLogger) DispatcherOption {
	return func(d *dispatcher) {
		d.logger = l
	}
}

// NewDispatcher creates an in-process dispatcher.
func NewDispatcher(opts ...DispatcherOption) Dispatcher {
	d := &dispatcher{
		listeners: make(map[string][]listenerEntry),
		poolSize:  100,
		logger:    logger.GetLogger("event"),
	}

	for _, opt := range opts {
		opt(d)
	}

	var err error
	d.pool, err = ants.NewPool(d.poolSize)
	if err != nil {
		d.logger.Error("event pool creation failed, using default size", zap.Error(err))
		d.pool, _ = ants.NewPool(100)
	}

	return d
}

// Subscribe registers a listener for one event name.
func (d *dispatcher) Subscribe(eventName string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc {
	if eventName == "" || listener == nil {
		return func() {}
	}

	entry := listenerEntry{
		id:       atomic.AddUint64(&d.nextID, 1),
		listener: listener,
	}
	for _, opt := range opts {
		opt(&entry)
	}

	d.mu.Lock()
	d.listeners[eventName] = append(d.listeners[eventName], entry)
	sort.SliceStable(d.listeners[eventName], func(i, j int) bool {
		return d.listeners[eventName][i].priority < d.listeners[eventName][j].priority
	})
	d.mu.Unlock()

	return func() {
		d.unsubscribe(eventName, entry.id)
	}
}

func (d *dispatcher) unsubscribe(eventName string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.listeners[eventName]
	for i, e := range entries {
		if e.id == id {
			d.listeners[eventName] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Dispatch delivers the event synchronously; async-subscribed listeners go
// to the pool.
func (d *dispatcher) Dispatch(ctx context.Context, event Event) error {
	if atomic.LoadInt32(&d.closed) == 1 {
		return ErrDispatcherClosed
	}

	d.mu.RLock()
	entries := make([]listenerEntry, len(d.listeners[event.Name()]))
	copy(entries, d.listeners[event.Name()])
	d.mu.RUnlock()

	for _, entry := range entries {
		if entry.async {
			d.submit(ctx, entry, event)
			continue
		}
		if err := entry.listener.Handle(ctx, event); err != nil {
			if errors.Is(err, ErrStopPropagation) {
				return nil
			}
			return err
		}
	}
	return nil
}

// DispatchAsync delivers the whole event on the worker pool.
func (d *dispatcher) DispatchAsync(ctx context.Context, event Event) {
	if atomic.LoadInt32(&d.closed) == 1 {
		return
	}

	d.mu.RLock()
	entries := make([]listenerEntry, len(d.listeners[event.Name()]))
	copy(entries, d.listeners[event.Name()])
	d.mu.RUnlock()

	for _, entry := range entries {
		d.submit(ctx, entry, event)
	}
}

func (d *dispatcher) submit(ctx context.Context, entry listenerEntry, event Event) {
	e := entry
	err := d.pool.Submit(func() {
		if err := e.listener.Handle(ctx, event); err != nil && !errors.Is(err, ErrStopPropagation) {
			d.logger.WarnCtx(ctx, "async event listener failed",
				zap.String("event", event.Name()),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		d.logger.WarnCtx(ctx, "event pool submit failed, running inline",
			zap.String("event", event.Name()),
			zap.Error(err),
		)
		_ = e.listener.Handle(ctx, event)
	}
}

// Close releases the worker pool.
func (d *dispatcher) Close() error {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return nil
	}
	d.pool.Release()
	return nil
}
