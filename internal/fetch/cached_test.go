package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/corpsite/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestDefaultCachedFetcherConfig(t *testing.T) {
	config := DefaultCachedFetcherConfig()

	require.NotNil(t, config)
	assert.Equal(t, time.Hour, config.CacheTTL)
	assert.False(t, config.SkipCache, "Expected SkipCache to be false by default")
	assert.NotNil(t, config.Options)
}

func TestNewCachedFetcher_NilConfig(t *testing.T) {
	fetcher := NewCachedFetcher(nil, nil)

	require.NotNil(t, fetcher)
	assert.Equal(t, DefaultRevalidate, fetcher.CacheTTL())
	assert.NotNil(t, fetcher.options)
	assert.NotNil(t, fetcher.store)
}

func TestNewCachedFetcher_EmptyConfig(t *testing.T) {
	fetcher := NewCachedFetcher(nil, &CachedFetcherConfig{})

	require.NotNil(t, fetcher)
	assert.NotZero(t, fetcher.cacheTTL, "Expected non-zero cacheTTL even with empty config")
	assert.NotNil(t, fetcher.options, "Expected non-nil options even with empty config")
}

func TestCachedFetcher_ReusesWithinWindow(t *testing.T) {
	server, calls := countingServer(t, http.StatusOK, `{"jobs":[]}`)
	fetcher := NewCachedFetcher(cache.NewMemoryStore(8), &CachedFetcherConfig{CacheTTL: time.Hour})
	ctx := context.Background()

	first, err := fetcher.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := fetcher.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Body, second.Body)

	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCachedFetcher_DoesNotCacheFailures(t *testing.T) {
	server, calls := countingServer(t, http.StatusBadGateway, "bad gateway")
	fetcher := NewCachedFetcher(nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
		require.NotNil(t, result)
		assert.Equal(t, http.StatusBadGateway, result.StatusCode)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestCachedFetcher_SkipCache(t *testing.T) {
	server, calls := countingServer(t, http.StatusOK, `{}`)
	fetcher := NewCachedFetcher(nil, &CachedFetcherConfig{SkipCache: true})
	ctx := context.Background()

	_, err := fetcher.Fetch(ctx, server.URL)
	require.NoError(t, err)
	_, err = fetcher.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCachedFetcher_InvalidateCache(t *testing.T) {
	server, calls := countingServer(t, http.StatusOK, `{}`)
	fetcher := NewCachedFetcher(nil, nil)
	ctx := context.Background()

	_, err := fetcher.Fetch(ctx, server.URL)
	require.NoError(t, err)
	require.NoError(t, fetcher.InvalidateCache(ctx, server.URL))
	result, err := fetcher.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCachedFetcher_NetworkErrorReturnsNilResult(t *testing.T) {
	fetcher := NewCachedFetcher(nil, nil)
	result, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/jobs")
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestCachedFetcher_ConcurrentMissesShareOneCall(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		_, _ = w.Write([]byte(`{"jobs":[]}`))
	}))
	defer server.Close()

	fetcher := NewCachedFetcher(nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fetcher.Fetch(ctx, server.URL)
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCachedFetcher_CancelledCallerDoesNotFailOthers(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"jobs":[]}`))
	}))
	defer server.Close()

	fetcher := NewCachedFetcher(nil, nil)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderDone := make(chan error, 1)
	go func() {
		_, err := fetcher.Fetch(leaderCtx, server.URL)
		leaderDone <- err
	}()

	time.Sleep(20 * time.Millisecond)
	followerDone := make(chan *CachedResult, 1)
	go func() {
		result, err := fetcher.Fetch(context.Background(), server.URL)
		assert.NoError(t, err)
		followerDone <- result
	}()

	time.Sleep(20 * time.Millisecond)
	cancelLeader()
	assert.ErrorIs(t, <-leaderDone, context.Canceled)

	result := <-followerDone
	require.NotNil(t, result)
	assert.Equal(t, `{"jobs":[]}`, string(result.Body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	cached, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
}
