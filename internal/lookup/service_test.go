package lookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dladmin/internal/lookup/metrics"
	id "dladmin/pkg/domain"
	dErrors "dladmin/pkg/domain-errors"
	"dladmin/pkg/platform/circuit"
)

type fakeSource struct {
	locationCalls atomic.Int32
	lookupCalls   atomic.Int32
	gate          chan struct{}
	err           error
}

func (f *fakeSource) GetLocations(ctx context.Context) ([]Location, error) {
	f.locationCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return []Location{
		{ID: id.LocationID(uuid.New()), Code: "ACC", Name: "Accra", Active: true},
		{ID: id.LocationID(uuid.New()), Code: "TEM", Name: "Tema", Active: false},
	}, nil
}

func (f *fakeSource) GetAllLookups(context.Context) (Lookups, error) {
	f.lookupCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return Lookups{"countries": {{Code: "GH", Label: "Ghana"}}}, nil
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (failingCache) Set(context.Context, string, []byte) error { return errors.New("connection refused") }
func (failingCache) Delete(context.Context, ...string) error  { return errors.New("connection refused") }

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLocationsCachedUntilExpiry(t *testing.T) {
	clock := time.Date(2026, time.October, 1, 9, 0, 0, 0, time.UTC)
	cache := NewMemoryCache(time.Minute, WithCacheClock(func() time.Time { return clock }))
	src := &fakeSource{}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(src, cache, WithLogger(quiet), WithMetrics(m))
	ctx := context.Background()

	first, err := svc.Locations(ctx, false)
	require.NoError(t, err)
	require.Len(t, first, 2)

	_, err = svc.Locations(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.locationCalls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues(KeyLocations, "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues(KeyLocations, "miss")))

	clock = clock.Add(time.Minute)
	_, err = svc.Locations(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.locationCalls.Load())
}

func TestLocationsActiveOnly(t *testing.T) {
	svc := NewService(&fakeSource{}, NewMemoryCache(time.Minute), WithLogger(quiet))

	locs, err := svc.Locations(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "ACC", locs[0].Code)

	all, err := svc.Locations(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2, "filtering must not alter the cached list")
}

func TestConcurrentMissesShareOneFetch(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	svc := NewService(src, NewMemoryCache(time.Minute), WithLogger(quiet))

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Locations(context.Background(), false)
			assert.NoError(t, err)
		}()
	}
	require.Eventually(t, func() bool { return src.locationCalls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.locationCalls.Load())
}

func TestCancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{})}
	svc := NewService(src, NewMemoryCache(time.Minute), WithLogger(quiet))

	first, cancel := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Locations(first, false)
		firstDone <- err
	}()
	require.Eventually(t, func() bool { return src.locationCalls.Load() == 1 }, time.Second, time.Millisecond)

	secondDone := make(chan error, 1)
	go func() {
		_, err := svc.Locations(context.Background(), false)
		secondDone <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(src.gate)

	assert.NoError(t, <-secondDone)
	assert.NoError(t, <-firstDone)
	assert.Equal(t, int32(1), src.locationCalls.Load())
}

func TestLookup(t *testing.T) {
	svc := NewService(&fakeSource{}, NewMemoryCache(time.Minute), WithLogger(quiet))

	items, err := svc.Lookup(context.Background(), " Countries ")
	require.NoError(t, err)
	assert.Equal(t, []Item{{Code: "GH", Label: "Ghana"}}, items)

	_, err = svc.Lookup(context.Background(), "blood_groups")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCacheFailureFallsBackToSource(t *testing.T) {
	src := &fakeSource{}
	svc := NewService(src, failingCache{}, WithLogger(quiet))

	got, err := svc.Lookups(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got, "countries")

	assert.True(t, dErrors.HasCode(svc.Invalidate(context.Background()), dErrors.CodeInternal))
}

func TestSourceFailureIsUnavailable(t *testing.T) {
	svc := NewService(&fakeSource{err: errors.New("502")}, NewMemoryCache(time.Minute), WithLogger(quiet))

	_, err := svc.Lookups(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestInvalidate(t *testing.T) {
	src := &fakeSource{}
	svc := NewService(src, NewMemoryCache(time.Hour), WithLogger(quiet))
	ctx := context.Background()

	_, err := svc.Lookups(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.Lookups(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.lookupCalls.Load())
}

func TestOpenCircuitServesLastFetchedValue(t *testing.T) {
	src := &fakeSource{}
	breaker := circuit.New("lookup-test", circuit.WithFailureThreshold(2))
	svc := NewService(src, NewMemoryCache(time.Hour), WithLogger(quiet), WithBreaker(breaker))
	ctx := context.Background()

	first, err := svc.Lookups(ctx)
	require.NoError(t, err)

	src.err = errors.New("502")
	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.Lookups(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable), "below the threshold errors propagate")

	got, err := svc.Lookups(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.True(t, breaker.IsOpen())
}

func TestOpenCircuitWithoutPriorValueFails(t *testing.T) {
	breaker := circuit.New("lookup-test", circuit.WithFailureThreshold(1))
	svc := NewService(&fakeSource{err: errors.New("502")}, NewMemoryCache(time.Hour), WithLogger(quiet), WithBreaker(breaker))

	_, err := svc.Locations(context.Background(), true)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.True(t, breaker.IsOpen())
}
