package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/scribehub/go-scribe/admin"
	"github.com/scribehub/go-scribe/articles"
	"github.com/scribehub/go-scribe/auth"
	"github.com/scribehub/go-scribe/config"
	"github.com/scribehub/go-scribe/event"
	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/logger"
	"github.com/scribehub/go-scribe/stats"
	"github.com/scribehub/go-scribe/transport"
)

// SDK is the assembled client.
type SDK struct {
	Config     *Config
	Auth       *auth.Manager
	Articles   *articles.Service
	Stats      *stats.Service
	Admin      *admin.Service
	Cache      *fetchcache.Orchestrator
	Client     *transport.Client
	Dispatcher event.Dispatcher

	injector *do.RootScope
	loglayer *logger.Manager
}

// New assembles the SDK from an explicit configuration.
func New(cfg *Config) (*SDK, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.Provide(injector, provideLoggerManager)
	do.Provide(injector, provideDispatcher)
	do.Provide(injector, provideStore)
	do.Provide(injector, provideOrchestrator)
	do.Provide(injector, provideSession)
	do.Provide(injector, provideArticles)
	do.Provide(injector, provideStats)
	do.Provide(injector, provideAdmin)

	sdk := &SDK{
		Config:   cfg,
		injector: injector,
	}

	var err error
	if sdk.Auth, err = do.Invoke[*auth.Manager](injector); err != nil {
		return nil, err
	}
	if sdk.Articles, err = do.Invoke[*articles.Service](injector); err != nil {
		return nil, err
	}
	if sdk.Stats, err = do.Invoke[*stats.Service](injector); err != nil {
		return nil, err
	}
	if sdk.Admin, err = do.Invoke[*admin.Service](injector); err != nil {
		return nil, err
	}
	if sdk.Cache, err = do.Invoke[*fetchcache.Orchestrator](injector); err != nil {
		return nil, err
	}
	if sdk.Client, err = do.Invoke[*transport.Client](injector); err != nil {
		return nil, err
	}
	if sdk.Dispatcher, err = do.Invoke[event.Dispatcher](injector); err != nil {
		return nil, err
	}
	if sdk.loglayer, err = do.Invoke[*logger.Manager](injector); err != nil {
		return nil, err
	}
	return sdk, nil
}

// NewFromLoader assembles the SDK from a config loader.
func NewFromLoader(loader *config.Loader) (*SDK, error) {
	cfg, err := LoadConfig(loader)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// Shutdown releases everything the SDK holds.
func (s *SDK) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.Dispatcher != nil {
		if err := s.Dispatcher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.Cache != nil {
		if err := s.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.loglayer != nil {
		s.loglayer.CloseAll()
	}
	if s.injector != nil {
		if err := s.injector.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
