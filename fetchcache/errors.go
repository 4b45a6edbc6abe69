package fetchcache

import (
	"net/http"

	"github.com/scribehub/go-scribe/errcode"
)

// Error codes for the cache layer: 70xxxx.
const (
	errCodeCacheMiss     = 1
	errCodeSerialize     = 4
	errCodeDeserialize   = 5
	errCodeStoreGet      = 6
	errCodeStoreSet      = 7
	errCodeStoreDelete   = 8
	errCodeConfigInvalid = 9
)

var (
	// ErrCacheMiss marks a missing or expired entry.
	ErrCacheMiss = errcode.New(
		errcode.ModuleCache, errCodeCacheMiss,
		"cache", "error.cache.miss", "cache miss",
		http.StatusOK,
	)

	// ErrSerialize marks a value that could not be serialized for storage.
	ErrSerialize = errcode.New(
		errcode.ModuleCache, errCodeSerialize,
		"cache", "error.cache.serialize", "cache serialize failed",
		http.StatusInternalServerError,
	)

	// ErrDeserialize marks a stored value that could not be decoded.
	ErrDeserialize = errcode.New(
		errcode.ModuleCache, errCodeDeserialize,
		"cache", "error.cache.deserialize", "cache deserialize failed",
		http.StatusInternalServerError,
	)

	// ErrStoreGet marks a backend read failure.
	ErrStoreGet = errcode.New(
		errcode.ModuleCache, errCodeStoreGet,
		"cache", "error.cache.store_get", "cache store get failed",
		http.StatusInternalServerError,
	)

	// ErrStoreSet marks a backend write failure.
	ErrStoreSet = errcode.New(
		errcode.ModuleCache, errCodeStoreSet,
		"cache", "error.cache.store_set", "cache store set failed",
		http.StatusInternalServerError,
	)

	// ErrStoreDelete marks a backend delete failure.
	ErrStoreDelete = errcode.New(
		errcode.ModuleCache, errCodeStoreDelete,
		"cache", "error.cache.store_delete", "cache store delete failed",
		http.StatusInternalServerError,
	)

	// ErrConfigInvalid marks an unusable cache configuration.
	ErrConfigInvalid = errcode.New(
		errcode.ModuleCache, errCodeConfigInvalid,
		"cache", "error.cache.config_invalid", "cache config invalid",
		http.StatusInternalServerError,
	)
)
