// Package metrics exposes Prometheus counters for the site.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Job fetch results
const (
	FetchOK            = "ok"
	FetchCacheHit      = "cache_hit"
	FetchNetworkError  = "network_error"
	FetchBadStatus     = "bad_status"
	FetchBadPayload    = "bad_payload"
	FetchNotConfigured = "not_configured"
)

// Registry holds the site's collectors. A nil *Registry is valid and
// records nothing, so components can be used without metrics in tests.
type Registry struct {
	reg             *prometheus.Registry
	LocaleRedirects *prometheus.CounterVec
	JobFetches      *prometheus.CounterVec
	JobsListed      prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
}

// NewRegistry creates a registry with all collectors registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	redirects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "corpsite_locale_redirects_total",
		Help: "Requests redirected to a locale-prefixed path.",
	}, []string{"locale"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "corpsite_job_fetch_total",
		Help: "Job board fetches by outcome.",
	}, []string{"result"})
	listed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "corpsite_jobs_listed",
		Help: "Listed postings returned by the last job board fetch.",
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "corpsite_http_requests_total",
		Help: "HTTP responses by status code.",
	}, []string{"code"})

	r.MustRegister(redirects, fetches, listed, requests)
	return &Registry{
		reg:             r,
		LocaleRedirects: redirects,
		JobFetches:      fetches,
		JobsListed:      listed,
		HTTPRequests:    requests,
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// RecordRedirect counts a locale redirect.
func (r *Registry) RecordRedirect(locale string) {
	if r == nil {
		return
	}
	r.LocaleRedirects.WithLabelValues(locale).Inc()
}

// RecordJobFetch counts a job fetch outcome. listed is only recorded for
// successful outcomes.
func (r *Registry) RecordJobFetch(result string, listed int) {
	if r == nil {
		return
	}
	r.JobFetches.WithLabelValues(result).Inc()
	if result == FetchOK || result == FetchCacheHit {
		r.JobsListed.Set(float64(listed))
	}
}

// RecordRequest counts a served response.
func (r *Registry) RecordRequest(status int) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}
