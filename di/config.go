// Package di assembles the SDK with samber/do: config in, wired
// services out.
package di

import (
	"time"

	"github.com/scribehub/go-scribe/config"
	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/logger"
)

// Config is the full SDK configuration tree.
type Config struct {
	AppName string               `mapstructure:"app_name"`
	API     APIConfig            `mapstructure:"api"`
	Log     logger.ManagerConfig `mapstructure:"log"`
	Cache   fetchcache.Config    `mapstructure:"cache"`
	Redis   RedisConfig          `mapstructure:"redis"`
}

// APIConfig points at the platform API.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RequestID bool          `mapstructure:"request_id"`
}

// RedisConfig is used when the cache store is "redis".
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DefaultConfig returns the in-memory, localhost defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		AppName: "scribe",
		API: APIConfig{
			BaseURL:   "http://localhost:8080",
			Timeout:   30 * time.Second,
			RequestID: true,
		},
		Log:   logger.DefaultManagerConfig(),
		Cache: *fetchcache.DefaultConfig(),
	}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig unmarshals the tree from a loader and fills defaults.
func LoadConfig(loader *config.Loader) (*Config, error) {
	loader.GetViper().SetDefault("cache.enabled", true)

	cfg := &Config{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Cache.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "scribe"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.Log.AppName == "" {
		c.Log.AppName = c.AppName
	}
	c.Log.ApplyDefaults()
	c.Cache.ApplyDefaults()
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
}
