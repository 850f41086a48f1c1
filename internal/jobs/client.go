package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/corpsite/internal/cache"
	"github.com/jonathan/corpsite/internal/fetch"
	"github.com/jonathan/corpsite/internal/logging"
	"github.com/jonathan/corpsite/internal/metrics"
	"github.com/jonathan/corpsite/internal/schemas"
	"github.com/jonathan/corpsite/internal/types"
)

// FetchError describes why a job board call produced no postings. It is
// only logged and counted; FetchJobs never returns it.
type FetchError struct {
	URL     string
	Status  int
	Kind    string // one of the metrics.Fetch* results
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("job board %s: %s", e.URL, e.Message)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ClientConfig configures a Client. Only URL is required for real fetches.
type ClientConfig struct {
	URL string
	// Revalidate is how long a successful upstream body is reused.
	// Zero or negative disables caching.
	Revalidate time.Duration
	Timeout    time.Duration
	Cache      cache.Store
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Registry
	// Production lowers upstream failure logs from WARN to DEBUG.
	Production bool
}

// Client reads the job board. It holds no per-request state and is safe
// for concurrent use.
type Client struct {
	url        string
	fetcher    *fetch.CachedFetcher
	logger     *slog.Logger
	metrics    *metrics.Registry
	production bool
}

// NewClient creates a job board client.
func NewClient(cfg ClientConfig) *Client {
	opts := fetch.DefaultOptions()
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	if cfg.HTTPClient != nil {
		opts.Client = cfg.HTTPClient
	}

	fetcherCfg := &fetch.CachedFetcherConfig{
		CacheTTL: cfg.Revalidate,
		Options:  opts,
	}
	if cfg.Revalidate <= 0 {
		fetcherCfg.SkipCache = true
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Client{
		url:        strings.TrimSpace(cfg.URL),
		fetcher:    fetch.NewCachedFetcher(cfg.Cache, fetcherCfg),
		logger:     logger,
		metrics:    cfg.Metrics,
		production: cfg.Production,
	}
}

// FetchJobs returns the listed postings, normalized, in upstream order.
// Any upstream failure yields an empty, non-nil list.
func (c *Client) FetchJobs(ctx context.Context) []types.NormalizedJob {
	jobs, fromCache, err := c.fetchJobs(ctx)
	if err != nil {
		var fe *FetchError
		kind := metrics.FetchNetworkError
		if errors.As(err, &fe) {
			kind = fe.Kind
		}
		c.metrics.RecordJobFetch(kind, 0)
		c.logFailure(ctx, err)
		return []types.NormalizedJob{}
	}

	result := metrics.FetchOK
	if fromCache {
		result = metrics.FetchCacheHit
	}
	c.metrics.RecordJobFetch(result, len(jobs))
	return jobs
}

// Refresh drops the cached body so the next FetchJobs calls upstream.
func (c *Client) Refresh(ctx context.Context) error {
	if c.url == "" {
		return nil
	}
	return c.fetcher.InvalidateCache(ctx, c.url)
}

func (c *Client) fetchJobs(ctx context.Context) ([]types.NormalizedJob, bool, error) {
	if c.url == "" {
		return nil, false, &FetchError{Kind: metrics.FetchNotConfigured, Message: "no job board URL configured"}
	}

	result, err := c.fetcher.Fetch(ctx, c.url)
	if err != nil {
		var fe *fetch.Error
		if errors.As(err, &fe) && fe.IsStatus() {
			return nil, false, &FetchError{URL: c.url, Status: fe.StatusCode, Kind: metrics.FetchBadStatus, Message: "non-success status", Cause: err}
		}
		return nil, false, &FetchError{URL: c.url, Kind: metrics.FetchNetworkError, Message: "request failed", Cause: err}
	}

	resp, err := decode(result.Body)
	if err != nil {
		// Do not keep serving a bad body for the rest of the window.
		_ = c.fetcher.InvalidateCache(ctx, c.url)
		return nil, false, &FetchError{URL: c.url, Status: result.StatusCode, Kind: metrics.FetchBadPayload, Message: "unexpected payload", Cause: err}
	}

	postings, skipped := resp.Postings()
	for _, pe := range skipped {
		c.logger.Log(ctx, c.failureLevel(), "jobs_posting_skipped", "url", c.url, "index", pe.Index, "err", pe.Cause)
	}
	return NormalizeListed(postings), result.FromCache, nil
}

func decode(body []byte) (*types.JobBoardResponse, error) {
	if err := schemas.ValidateJobBoard(body); err != nil {
		return nil, err
	}
	var resp types.JobBoardResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode job board: %w", err)
	}
	return &resp, nil
}

func (c *Client) failureLevel() slog.Level {
	if c.production {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func (c *Client) logFailure(ctx context.Context, err error) {
	c.logger.Log(ctx, c.failureLevel(), "jobs_fetch_failed", "url", c.url, "err", err)
}
