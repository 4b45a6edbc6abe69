package fetchcache

import (
	"time"
)

// Policy defaults observed across the listing and statistics paths.
const (
	// DefaultTTL is how long a resolved collection stays fresh.
	DefaultTTL = 5 * time.Minute

	// DefaultPageSize is the standard listing page size.
	DefaultPageSize = 12

	// DefaultLoadAllPageSize is the page size used in load-all mode.
	DefaultLoadAllPageSize = 100

	// DefaultLoadAllMaxPages caps a load-all session.
	DefaultLoadAllMaxPages = 50
)

// Config configures the fetch-coordination cache.
type Config struct {
	// Enabled toggles caching; disabled means every call fetches directly.
	Enabled bool `mapstructure:"enabled"`

	// TTL is the result cache expiry.
	TTL time.Duration `mapstructure:"ttl"`

	// PageSize is the standard listing page size.
	PageSize int `mapstructure:"page_size"`

	// LoadAllPageSize is the per-page size for load-all sessions.
	LoadAllPageSize int `mapstructure:"load_all_page_size"`

	// LoadAllMaxPages caps the pages one load-all session may fetch.
	LoadAllMaxPages int `mapstructure:"load_all_max_pages"`

	// Store selects the backend: memory or redis.
	Store string `mapstructure:"store"`

	// MaxEntries bounds the memory store.
	MaxEntries int `mapstructure:"max_entries"`

	// KeyPrefix namespaces keys in shared backends (redis).
	KeyPrefix string `mapstructure:"key_prefix"`

	// InvalidateOn lists the event names that trigger subject invalidation.
	InvalidateOn []string `mapstructure:"invalidate_on"`
}

// DefaultConfig returns the enabled in-memory defaults.
func DefaultConfig() *Config {
	cfg := &Config{Enabled: true}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills the zero fields in place.
func (c *Config) ApplyDefaults() {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.LoadAllPageSize <= 0 {
		c.LoadAllPageSize = DefaultLoadAllPageSize
	}
	if c.LoadAllMaxPages <= 0 {
		c.LoadAllMaxPages = DefaultLoadAllMaxPages
	}
	if c.Store == "" {
		c.Store = "memory"
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = 10000
	}
}

// Validate rejects unusable configurations.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Store {
	case "", "memory", "redis":
	default:
		return ErrConfigInvalid.WithMsgf("unknown store type %q", c.Store)
	}
	if c.TTL < 0 {
		return ErrConfigInvalid.WithMsg("negative ttl")
	}
	return nil
}
