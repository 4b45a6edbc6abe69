package fetchcache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is the in-process backend: a map with per-item expiry,
// a periodic sweep, and FIFO-ish eviction when full.
type MemoryStore struct {
	name    string
	data    map[string]*memoryItem
	mu      sync.RWMutex
	maxSize int
	stop    chan struct{}
	once    sync.Once
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
	timer     *time.Timer
}

// NewMemoryStore creates the in-memory backend.
func NewMemoryStore(name string, maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 10000
	}
	store := &MemoryStore{
		name:    name,
		data:    make(map[string]*memoryItem),
		maxSize: maxSize,
		stop:    make(chan struct{}),
	}
	go store.sweepLoop()
	return store
}

// Name returns the backend name.
func (s *MemoryStore) Name() string {
	return s.name
}

// Get returns the value, treating expired entries as misses even when the
// eviction timer has not fired yet.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	item, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		s.Delete(ctx, key)
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

// Set stores the value and arms a cancellable eviction timer. Overwriting
// a key cancels the previous timer so a stale one cannot evict the fresh
// value early.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.data[key]; ok && old.timer != nil {
		old.timer.Stop()
	}

	if len(s.data) >= s.maxSize {
		s.evictOne()
	}

	item := &memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
		item.timer = time.AfterFunc(ttl, func() {
			s.expire(key, item)
		})
	}
	s.data[key] = item
	return nil
}

// Delete removes one key and cancels its timer.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.data[key]; ok {
		if item.timer != nil {
			item.timer.Stop()
		}
		delete(s.data, key)
	}
	return nil
}

// DeleteByPrefix removes every key sharing the prefix.
func (s *MemoryStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, item := range s.data {
		if strings.HasPrefix(key, prefix) {
			if item.timer != nil {
				item.timer.Stop()
			}
			delete(s.data, key)
		}
	}
	return nil
}

// Clear removes every key.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.data {
		if item.timer != nil {
			item.timer.Stop()
		}
	}
	s.data = make(map[string]*memoryItem)
	return nil
}

// Close stops the sweep loop and drops all entries.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return s.Clear(context.Background())
}

// Size returns the current entry count.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// expire is the timer callback. It only removes the exact item it was
// armed for, so a late firing after the slot was overwritten is a no-op.
func (s *MemoryStore) expire(key string, expected *memoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.data[key]; ok && item == expected {
		delete(s.data, key)
	}
}

// evictOne drops the entry expiring soonest, or an arbitrary one when
// nothing carries an expiry. Caller holds the lock.
func (s *MemoryStore) evictOne() {
	var oldest string
	var oldestTime time.Time

	for key, item := range s.data {
		if oldest == "" || (!item.expiresAt.IsZero() && item.expiresAt.Before(oldestTime)) {
			oldest = key
			oldestTime = item.expiresAt
		}
	}
	if oldest != "" {
		if item := s.data[oldest]; item.timer != nil {
			item.timer.Stop()
		}
		delete(s.data, oldest)
	}
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, item := range s.data {
		if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
			if item.timer != nil {
				item.timer.Stop()
			}
			delete(s.data, key)
		}
	}
}
