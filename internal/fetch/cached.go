package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/corpsite/internal/cache"
	"golang.org/x/sync/singleflight"
)

// DefaultRevalidate is the default revalidation window for cached responses.
const DefaultRevalidate = time.Hour

// CachedFetcher wraps URL fetching with a revalidation window: a successful
// response is reused until the window elapses. Concurrent misses for the
// same URL share a single upstream call.
type CachedFetcher struct {
	store     cache.Store
	options   *Options
	cacheTTL  time.Duration
	skipCache bool
	group     singleflight.Group
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  DefaultRevalidate,
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher. A nil store uses an
// in-process store.
func NewCachedFetcher(store cache.Store, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultRevalidate
	}
	if store == nil {
		store = cache.NewMemoryStore(cache.DefaultMaxEntries)
	}
	return &CachedFetcher{
		store:     store,
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache || config.CacheTTL < 0,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool
}

// Fetch returns the cached body for urlStr if it is inside the revalidation
// window, otherwise fetches it. Only 2xx responses are cached. Cache read
// and write failures are treated as misses.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if !f.skipCache {
		if body, ok, err := f.store.Get(ctx, cacheKey(urlStr)); err == nil && ok {
			return &CachedResult{
				Result: &Result{
					URL:        urlStr,
					Body:       body,
					StatusCode: 200,
				},
				FromCache: true,
			}, nil
		}
	}

	// The shared call outlives any one caller; each caller still stops
	// waiting when its own context ends.
	ch := f.group.DoChan(urlStr, func() (interface{}, error) {
		fctx, cancel := f.flightContext(ctx)
		defer cancel()
		result, err := URL(fctx, urlStr, f.options)
		if err != nil {
			return result, err
		}
		if !f.skipCache {
			_ = f.store.Set(fctx, cacheKey(urlStr), result.Body, f.cacheTTL)
		}
		return result, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	result, _ := res.Val.(*Result)
	if result == nil {
		return nil, res.Err
	}
	return &CachedResult{Result: result}, res.Err
}

func (f *CachedFetcher) flightContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if f.options.Timeout > 0 {
		return context.WithTimeout(detached, f.options.Timeout)
	}
	return context.WithCancel(detached)
}

// InvalidateCache drops the cached response, forcing a re-fetch on next request.
func (f *CachedFetcher) InvalidateCache(ctx context.Context, urlStr string) error {
	if err := f.store.Delete(ctx, cacheKey(urlStr)); err != nil {
		return fmt.Errorf("invalidate %s: %w", urlStr, err)
	}
	return nil
}

// CacheTTL returns the revalidation window.
func (f *CachedFetcher) CacheTTL() time.Duration {
	return f.cacheTTL
}

func cacheKey(urlStr string) string {
	return "fetch:" + urlStr
}
