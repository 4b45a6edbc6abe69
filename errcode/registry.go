package errcode

import (
	"fmt"
	"sync"
)

// Registry guards against two packages claiming the same error code.
type Registry struct {
	mu     sync.RWMutex
	codes  map[int]string // code -> module:msgKey
	locked bool
}

var globalRegistry = &Registry{
	codes: make(map[int]string),
}

// Register records an error code in the global registry.
// Panics if the code is already taken by a different module:msgKey.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register records an error code. Re-registering the identical code is a no-op.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.locked {
		panic(fmt.Sprintf("errcode: registry is locked, cannot register code %d", err.Code()))
	}

	code := err.Code()
	key := fmt.Sprintf("%s:%s", err.Module(), err.MsgKey())

	if existingKey, exists := r.codes[code]; exists {
		if existingKey != key {
			panic(fmt.Sprintf(
				"errcode: code %d already registered as %s, cannot register as %s",
				code, existingKey, key,
			))
		}
		return err
	}

	r.codes[code] = key
	return err
}

// Lock freezes the registry. Called once startup registration is done.
func (r *Registry) Lock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = true
}

// Unlock re-opens the registry.
func (r *Registry) Unlock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = false
}

// IsLocked reports whether the registry is frozen.
func (r *Registry) IsLocked() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked
}

// GetAll returns a copy of every registered code.
func (r *Registry) GetAll() map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make(map[int]string, len(r.codes))
	for k, v := range r.codes {
		codes[k] = v
	}
	return codes
}

// Count returns the number of registered codes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Clear empties the registry. Test helper only.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = make(map[int]string)
	r.locked = false
}

// LockGlobalRegistry freezes the global registry.
func LockGlobalRegistry() {
	globalRegistry.Lock()
}

// UnlockGlobalRegistry re-opens the global registry.
func UnlockGlobalRegistry() {
	globalRegistry.Unlock()
}

// GetAllRegisteredCodes returns every code in the global registry.
func GetAllRegisteredCodes() map[int]string {
	return globalRegistry.GetAll()
}

// ClearGlobalRegistry empties the global registry. Test helper only.
func ClearGlobalRegistry() {
	globalRegistry.Clear()
}
