package lookup

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"dladmin/internal/lookup/metrics"
	dErrors "dladmin/pkg/domain-errors"
	"dladmin/pkg/platform/circuit"
	"dladmin/pkg/requestcontext"
)

// Cache keys.
const (
	KeyLocations = "locations"
	KeyLookups   = "lookups"
)

// Source fetches reference data from the backend.
type Source interface {
	GetLocations(ctx context.Context) ([]Location, error)
	GetAllLookups(ctx context.Context) (Lookups, error)
}

// Service serves reference data from the cache, refreshing from the source
// on a miss. Concurrent misses for one key share a single backend call.
// While the source circuit is open, failed refreshes fall back to the last
// value fetched by this process.
type Service struct {
	source  Source
	cache   Cache
	group   singleflight.Group
	breaker *circuit.Breaker
	stale   sync.Map // key -> last fetched value
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithBreaker replaces the default source circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		if b != nil {
			s.breaker = b
		}
	}
}

func NewService(source Source, cache Cache, opts ...Option) *Service {
	s := &Service{
		source:  source,
		cache:   cache,
		breaker: circuit.New("lookup-source"),
		logger:  slog.Default(),
		tracer:  otel.Tracer("dladmin/lookup"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Locations returns the issuing offices; activeOnly drops closed ones.
func (s *Service) Locations(ctx context.Context, activeOnly bool) ([]Location, error) {
	locs, err := cached(ctx, s, KeyLocations, s.source.GetLocations)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		locs = slices.DeleteFunc(slices.Clone(locs), func(l Location) bool { return !l.Active })
	}
	return locs, nil
}

// Lookups returns every reference list.
func (s *Service) Lookups(ctx context.Context) (Lookups, error) {
	return cached(ctx, s, KeyLookups, s.source.GetAllLookups)
}

// Lookup returns one reference list by name.
func (s *Service) Lookup(ctx context.Context, name string) ([]Item, error) {
	all, err := s.Lookups(ctx)
	if err != nil {
		return nil, err
	}
	items, ok := all[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown lookup list: "+name)
	}
	return items, nil
}

// Invalidate drops every cached entry so the next read refreshes.
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.cache.Delete(ctx, KeyLocations, KeyLookups); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to invalidate lookup cache")
	}
	return nil
}

// cached reads key from the cache or loads it with fetch. Cache failures
// degrade to a backend call; they are never returned.
func cached[T any](ctx context.Context, s *Service, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if b, ok, err := s.cache.Get(ctx, key); err != nil {
		s.metrics.IncCache(key, "error")
		s.logger.WarnContext(ctx, "lookup cache read failed",
			"key", key,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else if ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			s.metrics.IncCache(key, "hit")
			return v, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable lookup cache entry", "key", key)
	} else {
		s.metrics.IncCache(key, "miss")
	}

	// The shared refresh outlives any one caller's cancellation.
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), key, func(ctx context.Context) (any, error) { return fetch(ctx) })
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (s *Service) refresh(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	ctx, span := s.tracer.Start(ctx, "lookup.refresh", trace.WithAttributes(attribute.String("lookup.key", key)))
	defer span.End()

	v, err := fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		useFallback, change := s.breaker.RecordFailure()
		if change.Opened {
			s.logger.WarnContext(ctx, "lookup source circuit opened",
				"circuit", s.breaker.Name(),
				"key", key,
				"error", err,
			)
		}
		if last, ok := s.stale.Load(key); ok && useFallback {
			s.metrics.IncRefresh(key, "stale")
			return last, nil
		}
		s.metrics.IncRefresh(key, "error")
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.Wrap(err, dErrors.CodeUnavailable, "reference data unavailable")
		}
		return nil, err
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "lookup source circuit closed",
			"circuit", s.breaker.Name(),
			"key", key,
		)
	}
	s.metrics.IncRefresh(key, "ok")
	s.stale.Store(key, v)

	b, err := json.Marshal(v)
	if err == nil {
		err = s.cache.Set(ctx, key, b)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "lookup cache write failed",
			"key", key,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return v, nil
}
