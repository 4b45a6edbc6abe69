package fetchcache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/scribehub/go-scribe/event"
	"github.com/scribehub/go-scribe/logger"
)

// FetchFunc performs the underlying network fetch for one key and returns
// the raw response body. The caller closes over its filters and page.
type FetchFunc func(ctx context.Context) ([]byte, error)

// FetchOptions tune a single FetchCollection call.
type FetchOptions struct {
	// Provided short-circuits everything: the result is returned as-is,
	// with no fetch and no cache write.
	Provided *Result

	// Relevance marks a relevance-ranked search, see NormalizeOptions.
	Relevance bool

	// TTL overrides the configured expiry for this entry when positive.
	TTL time.Duration
}

// SubjectEvent is implemented by events that carry the subject whose
// cached collections they obsolete.
type SubjectEvent interface {
	Subject() string
}

// SubjectsEvent is implemented by events that obsolete several subjects'
// collections at once, e.g. a create touching both the author's listings
// and the unscoped ones. Checked before SubjectEvent.
type SubjectsEvent interface {
	Subjects() []string
}

// Orchestrator is the fetch-coordination cache. It guarantees at most one
// in-flight fetch per key, caches successful results for the configured
// TTL, never caches failures, and invalidates by subject prefix.
type Orchestrator struct {
	config *Config
	store  Store
	logger *logger.CtxZapLogger
	sf     singleflight.Group

	mu       sync.Mutex
	clearGen uint64
	gens     map[string]uint64
	pending  map[string]map[string]int

	metrics *Metrics
}

// NewOrchestrator builds the orchestrator around a store. A nil store
// gets the in-memory default; a nil logger is replaced with a no-op one.
func NewOrchestrator(cfg *Config, store Store, log *logger.CtxZapLogger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyDefaults()
	if store == nil {
		store = NewMemoryStore("memory", cfg.MaxEntries)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		config:  cfg,
		store:   store,
		logger:  log,
		gens:    make(map[string]uint64),
		pending: make(map[string]map[string]int),
	}
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() *Config {
	return o.config
}

// SetMetrics attaches an instrument set. Safe to leave nil.
func (o *Orchestrator) SetMetrics(m *Metrics) {
	o.metrics = m
}

// FetchCollection resolves one collection:
//
//  1. provided data is returned untouched,
//  2. a fresh cache entry is returned without fetching,
//  3. otherwise concurrent callers for the same key share one fetch,
//     and the normalized result is cached unless an invalidation for the
//     key's subject landed while the fetch was in flight.
//
// Fetch errors propagate to every waiting caller and are never cached.
func (o *Orchestrator) FetchCollection(ctx context.Context, key Key, opts FetchOptions, fetch FetchFunc) (*Result, error) {
	if opts.Provided != nil {
		return opts.Provided, nil
	}

	if !o.config.Enabled {
		return o.fetchDirect(ctx, opts, fetch)
	}

	cacheKey := key.String()
	prefix := key.SubjectPrefix()

	if result, ok := o.lookup(ctx, cacheKey); ok {
		o.metrics.RecordHit(ctx, key.Subject)
		o.logger.DebugCtx(ctx, "cache hit", zap.String("key", cacheKey))
		return result, nil
	}
	o.metrics.RecordMiss(ctx, key.Subject)

	v, err, shared := o.sf.Do(cacheKey, func() (any, error) {
		// Double-check: a concurrent flight may have filled the slot
		// between our miss and acquiring the flight.
		if result, ok := o.lookup(ctx, cacheKey); ok {
			return result, nil
		}

		gen := o.snapshotGeneration(prefix)
		o.trackPending(prefix, cacheKey)
		defer o.untrackPending(prefix, cacheKey)

		o.metrics.RecordFetch(ctx, key.Subject)
		raw, err := fetch(ctx)
		if err != nil {
			// Failures are never cached, the next caller retries.
			return nil, err
		}

		result := Normalize(raw, NormalizeOptions{
			Relevance: opts.Relevance,
			Page:      key.Page,
		})

		if o.generationChanged(prefix, gen) {
			o.logger.DebugCtx(ctx, "result discarded, subject invalidated mid-flight",
				zap.String("key", cacheKey))
			return result, nil
		}

		ttl := o.config.TTL
		if opts.TTL > 0 {
			ttl = opts.TTL
		}
		data, serErr := json.Marshal(result)
		if serErr != nil {
			o.logger.WarnCtx(ctx, "cache serialize failed",
				zap.String("key", cacheKey), zap.Error(ErrSerialize.Wrap(serErr)))
			return result, nil
		}
		if setErr := o.store.Set(ctx, cacheKey, data, ttl); setErr != nil {
			o.logger.WarnCtx(ctx, "cache set failed",
				zap.String("key", cacheKey), zap.Error(setErr))
		} else if o.generationChanged(prefix, gen) {
			// An invalidation landed between the pre-write check and the
			// write completing, so its DeleteByPrefix may have run before
			// this entry existed. Drop the entry; the invalidation stays
			// authoritative.
			if delErr := o.store.Delete(ctx, cacheKey); delErr != nil {
				o.logger.WarnCtx(ctx, "stale entry delete failed",
					zap.String("key", cacheKey), zap.Error(delErr))
			}
			o.logger.DebugCtx(ctx, "entry dropped, subject invalidated during cache write",
				zap.String("key", cacheKey))
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		o.logger.DebugCtx(ctx, "fetch shared with concurrent caller",
			zap.String("key", cacheKey))
	}
	return v.(*Result), nil
}

// InvalidateSubject drops every cached collection for the subject and
// marks in-flight fetches for it stale, so their results are returned to
// waiters but not cached. Pending flights are also forgotten, letting new
// callers start a fresh fetch immediately.
func (o *Orchestrator) InvalidateSubject(ctx context.Context, subject string) error {
	prefix := SubjectPrefix(subject)

	o.mu.Lock()
	o.gens[prefix]++
	var keys []string
	for key := range o.pending[prefix] {
		keys = append(keys, key)
	}
	o.mu.Unlock()

	for _, key := range keys {
		o.sf.Forget(key)
	}

	o.metrics.RecordInvalidation(ctx, subject)
	o.logger.InfoCtx(ctx, "subject invalidated",
		zap.String("subject", subject), zap.Int("pending_forgotten", len(keys)))

	if err := o.store.DeleteByPrefix(ctx, prefix); err != nil {
		return err
	}
	return nil
}

// Clear drops everything, cached and in-flight alike. Used on logout.
func (o *Orchestrator) Clear(ctx context.Context) error {
	o.mu.Lock()
	o.clearGen++
	var keys []string
	for _, pendingKeys := range o.pending {
		for key := range pendingKeys {
			keys = append(keys, key)
		}
	}
	o.mu.Unlock()

	for _, key := range keys {
		o.sf.Forget(key)
	}

	o.logger.InfoCtx(ctx, "cache cleared", zap.Int("pending_forgotten", len(keys)))
	return o.store.Clear(ctx)
}

// BindInvalidation subscribes the orchestrator to the configured event
// names. Events implementing SubjectEvent invalidate precisely; others
// clear the whole cache as a safe fallback.
func (o *Orchestrator) BindInvalidation(dispatcher event.Dispatcher) {
	for _, name := range o.config.InvalidateOn {
		dispatcher.Subscribe(name, event.ListenerFunc(func(ctx context.Context, e event.Event) error {
			switch se := e.(type) {
			case SubjectsEvent:
				for _, subject := range se.Subjects() {
					if err := o.InvalidateSubject(ctx, subject); err != nil {
						return err
					}
				}
				return nil
			case SubjectEvent:
				return o.InvalidateSubject(ctx, se.Subject())
			}
			o.logger.WarnCtx(ctx, "invalidation event carries no subject, clearing all",
				zap.String("event", e.Name()))
			return o.Clear(ctx)
		}))
		o.logger.Debug("subscribed invalidation event", zap.String("event", name))
	}
}

// Close releases the store.
func (o *Orchestrator) Close() error {
	return o.store.Close()
}

// fetchDirect is the disabled-cache path: every call fetches.
func (o *Orchestrator) fetchDirect(ctx context.Context, opts FetchOptions, fetch FetchFunc) (*Result, error) {
	raw, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Normalize(raw, NormalizeOptions{Relevance: opts.Relevance}), nil
}

// lookup reads and decodes a cached result. Decode failures count as
// misses, the entry is dropped.
func (o *Orchestrator) lookup(ctx context.Context, cacheKey string) (*Result, bool) {
	data, err := o.store.Get(ctx, cacheKey)
	if err != nil {
		return nil, false
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		o.logger.WarnCtx(ctx, "cache deserialize failed, dropping entry",
			zap.String("key", cacheKey), zap.Error(ErrDeserialize.Wrap(err)))
		_ = o.store.Delete(ctx, cacheKey)
		return nil, false
	}
	return &result, true
}

// snapshotGeneration captures the invalidation state for a subject, as
// the sum of its own counter and the global clear counter.
func (o *Orchestrator) snapshotGeneration(prefix string) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gens[prefix] + o.clearGen
}

func (o *Orchestrator) generationChanged(prefix string, snapshot uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gens[prefix]+o.clearGen != snapshot
}

func (o *Orchestrator) trackPending(prefix, key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending[prefix] == nil {
		o.pending[prefix] = make(map[string]int)
	}
	o.pending[prefix][key]++
}

func (o *Orchestrator) untrackPending(prefix, key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if m := o.pending[prefix]; m != nil {
		m[key]--
		if m[key] <= 0 {
			delete(m, key)
		}
		if len(m) == 0 {
			delete(o.pending, prefix)
		}
	}
}
