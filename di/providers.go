package di

import (
	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	"github.com/scribehub/go-scribe/admin"
	"github.com/scribehub/go-scribe/articles"
	"github.com/scribehub/go-scribe/auth"
	"github.com/scribehub/go-scribe/event"
	"github.com/scribehub/go-scribe/fetchcache"
	"github.com/scribehub/go-scribe/logger"
	"github.com/scribehub/go-scribe/stats"
	"github.com/scribehub/go-scribe/transport"
)

func provideLoggerManager(i do.Injector) (*logger.Manager, error) {
	cfg := do.MustInvoke[*Config](i)
	return logger.NewManager(cfg.Log), nil
}

func provideDispatcher(i do.Injector) (event.Dispatcher, error) {
	mgr := do.MustInvoke[*logger.Manager](i)
	return event.NewDispatcher(event.WithLogger(mgr.GetLogger("event"))), nil
}

// provideStore picks the cache backend the config names.
func provideStore(i do.Injector) (fetchcache.Store, error) {
	cfg := do.MustInvoke[*Config](i)
	if cfg.Cache.Store == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return fetchcache.NewRedisStore("redis", client, cfg.Cache.KeyPrefix), nil
	}
	return fetchcache.NewMemoryStore("memory", cfg.Cache.MaxEntries), nil
}

func provideOrchestrator(i do.Injector) (*fetchcache.Orchestrator, error) {
	cfg := do.MustInvoke[*Config](i)
	store := do.MustInvoke[fetchcache.Store](i)
	mgr := do.MustInvoke[*logger.Manager](i)

	cacheCfg := cfg.Cache
	if len(cacheCfg.InvalidateOn) == 0 {
		cacheCfg.InvalidateOn = articles.MutationEvents
	}
	orchestrator := fetchcache.NewOrchestrator(&cacheCfg, store, mgr.GetLogger("fetchcache"))
	orchestrator.BindInvalidation(do.MustInvoke[event.Dispatcher](i))
	return orchestrator, nil
}

// provideSession builds the auth manager and the transport together, the
// client reads the manager's live token.
func provideSession(i do.Injector) (*auth.Manager, error) {
	cfg := do.MustInvoke[*Config](i)
	mgr := do.MustInvoke[*logger.Manager](i)
	cache := do.MustInvoke[*fetchcache.Orchestrator](i)

	session := auth.NewManager(nil, cache, mgr.GetLogger("auth"))

	opts := []transport.Option{
		transport.WithBaseURL(cfg.API.BaseURL),
		transport.WithTimeout(cfg.API.Timeout),
		transport.WithTokenProvider(session.TokenProvider()),
	}
	if cfg.API.RequestID {
		opts = append(opts, transport.WithRequestID())
	}
	client := transport.NewClient(opts...)
	session.SetClient(client)

	do.ProvideValue(i, client)
	return session, nil
}

func provideArticles(i do.Injector) (*articles.Service, error) {
	// Session first, it registers the transport client.
	do.MustInvoke[*auth.Manager](i)
	client := do.MustInvoke[*transport.Client](i)
	cache := do.MustInvoke[*fetchcache.Orchestrator](i)
	dispatcher := do.MustInvoke[event.Dispatcher](i)
	mgr := do.MustInvoke[*logger.Manager](i)
	return articles.NewService(client, cache, dispatcher, mgr.GetLogger("articles")), nil
}

func provideStats(i do.Injector) (*stats.Service, error) {
	articleService := do.MustInvoke[*articles.Service](i)
	mgr := do.MustInvoke[*logger.Manager](i)
	return stats.NewService(articleService, mgr.GetLogger("stats")), nil
}

func provideAdmin(i do.Injector) (*admin.Service, error) {
	do.MustInvoke[*auth.Manager](i)
	client := do.MustInvoke[*transport.Client](i)
	cache := do.MustInvoke[*fetchcache.Orchestrator](i)
	mgr := do.MustInvoke[*logger.Manager](i)
	return admin.NewService(client, cache, mgr.GetLogger("admin")), nil
}
