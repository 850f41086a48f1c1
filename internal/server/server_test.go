package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/corpsite/internal/config"
	"github.com/jonathan/corpsite/internal/metrics"
	"github.com/jonathan/corpsite/internal/server/middleware"
	"github.com/jonathan/corpsite/internal/server/ratelimit"
	"github.com/jonathan/corpsite/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	jobs  []types.NormalizedJob
	calls int32
}

func (f *fakeJobs) FetchJobs(context.Context) []types.NormalizedJob {
	atomic.AddInt32(&f.calls, 1)
	if f.jobs == nil {
		return []types.NormalizedJob{}
	}
	return f.jobs
}

func sampleJobs() []types.NormalizedJob {
	return []types.NormalizedJob{
		{
			ID: "ai-1", Title: "ML Engineer", Department: types.DepartmentAI, OriginalDepartment: "AI Lab",
			Location: types.LocationSeoul, OriginalLocation: "Seoul", EmploymentType: types.EmploymentFullTime,
			WorkType: types.WorkHybrid, Experience: types.ExperienceSenior, Description: "Train models",
			JobURL: "https://jobs.example.com/ai-1", ApplyURL: "https://jobs.example.com/ai-1/apply",
			PublishedAt: "2024-01-10T00:00:00Z",
		},
		{
			ID: "sh-1", Title: "Data Analyst", Department: types.DepartmentAI, OriginalDepartment: "AI Lab",
			Location: types.LocationSeoul, OriginalLocation: "Shanghai", EmploymentType: types.EmploymentContract,
			WorkType: types.WorkHybrid, Experience: types.ExperienceMid, Description: "Analyze data",
			JobURL: "https://jobs.example.com/sh-1", ApplyURL: "https://jobs.example.com/sh-1/apply",
			PublishedAt: "2024-03-01T00:00:00Z",
		},
		{
			ID: "biz-1", Title: "Account Manager", Department: types.DepartmentBusiness, OriginalDepartment: "Sales",
			Location: types.LocationBusan, OriginalLocation: "Busan", EmploymentType: types.EmploymentFullTime,
			WorkType: types.WorkHybrid, Experience: types.ExperienceMid, Description: "Grow accounts",
			JobURL: "https://jobs.example.com/biz-1", ApplyURL: "https://jobs.example.com/biz-1/apply",
			PublishedAt: "2024-02-01T00:00:00Z",
		},
	}
}

type testServer struct {
	*Server
	source  *fakeJobs
	metrics *metrics.Registry
}

func newTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()
	cfg := config.Defaults()
	cfg.BaseURL = "https://example.co.kr"

	source := &fakeJobs{jobs: sampleJobs()}
	reg := metrics.NewRegistry()
	o := Options{
		Config:    &cfg,
		Jobs:      source,
		Metrics:   reg,
		RateLimit: &ratelimit.Config{Enabled: false},
	}
	for _, fn := range opts {
		fn(&o)
	}

	s, err := New(o)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return &testServer{Server: s, source: source, metrics: reg}
}

func (s *testServer) get(path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNew_RequiresDependencies(t *testing.T) {
	cfg := config.Defaults()

	_, err := New(Options{Jobs: &fakeJobs{}})
	assert.Error(t, err)

	_, err = New(Options{Config: &cfg})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	w := s.get("/health")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Empty(t, w.Header().Get(middleware.PathnameHeader), "reserved paths skip the resolver")
}

func TestLocaleRedirects(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name           string
		path           string
		acceptLanguage string
		wantLocation   string
	}{
		{"root default", "/", "", "/ko/"},
		{"root english", "/", "en-US,en;q=0.9", "/en/"},
		{"page korean", "/about", "ko-KR,ko;q=0.9,en;q=0.8", "/ko/about"},
		{"query preserved", "/careers?department=AI", "en", "/en/careers?department=AI"},
		{"malformed header", "/services", ";;;q=abc", "/ko/services"},
		{"unsupported locale prefix", "/ja/about", "", "/ko/ja/about"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.get(tt.path, "Accept-Language", tt.acceptLanguage)
			assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			assert.Equal(t, "Accept-Language", w.Header().Get("Vary"))
		})
	}
}

func TestPages_Passthrough(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/ko", "/ko/", "/en", "/en/about", "/ko/services", "/en/careers", "/ko/location"} {
		t.Run(path, func(t *testing.T) {
			w := s.get(path)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
			assert.Equal(t, path, w.Header().Get(middleware.PathnameHeader))
			for k, v := range middleware.SecurityHeaders {
				assert.Equal(t, v, w.Header().Get(k), k)
			}
			locale := path[1:3]
			assert.Equal(t, locale, w.Header().Get("Content-Language"))
			assert.Contains(t, w.Body.String(), `<html lang="`+locale+`">`)
		})
	}
}

func TestPages_RedirectThenPassthrough(t *testing.T) {
	s := newTestServer(t)

	first := s.get("/about", "Accept-Language", "en")
	require.Equal(t, http.StatusTemporaryRedirect, first.Code)

	second := s.get(first.Header().Get("Location"), "Accept-Language", "ko")
	assert.Equal(t, http.StatusOK, second.Code, "an already prefixed path is never redirected again")
}

func TestPages_NotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/en/blog")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `<html lang="en">`)
	assert.Contains(t, w.Body.String(), "Page not found")

	w = s.get("/ko/careers/extra")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `<html lang="ko">`)
}

func TestPages_CareersListing(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/en/careers?company=shanghai")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="job-sh-1"`)
	assert.NotContains(t, body, `id="job-ai-1"`)
	assert.NotContains(t, body, `id="job-biz-1"`)
	assert.Equal(t, int32(1), atomic.LoadInt32(&s.source.calls))
}

func TestPages_CareersEmptyBoard(t *testing.T) {
	s := newTestServer(t, func(o *Options) { o.Jobs = &fakeJobs{} })

	w := s.get("/ko/careers")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "현재 진행 중인 채용 공고가 없습니다")
}

func TestPages_CareersInvalidFilterIgnored(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/en/careers?q=" + strings.Repeat("x", 300))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="job-ai-1"`)
}

func TestJobsAPI(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"no filter", "", []string{"ai-1", "sh-1", "biz-1"}},
		{"department", "?department=sales", []string{"biz-1"}},
		{"repeated department", "?department=Sales&department=AI%20Lab", []string{"ai-1", "sh-1", "biz-1"}},
		{"comma separated type", "?type=contract,intern", []string{"sh-1"}},
		{"location bucket", "?location=busan", []string{"biz-1"}},
		{"search", "?q=ANALY", []string{"sh-1"}},
		{"company hq", "?company=hq", []string{"ai-1", "biz-1"}},
		{"and across dimensions", "?department=AI%20Lab&type=fullTime", []string{"ai-1"}},
		{"no match", "?q=astronaut", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.get("/api/jobs" + tt.query)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp JobsResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			ids := []string{}
			for _, j := range resp.Jobs {
				ids = append(ids, j.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, 3, resp.Total)
			assert.Equal(t, len(tt.wantIDs), resp.Count)
			assert.Len(t, resp.Facets.Departments, 2)
		})
	}
}

func TestJobsAPI_FeaturedAndGroups(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/api/jobs?group=original")
	require.Equal(t, http.StatusOK, w.Code)

	var resp JobsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Featured, 3)
	assert.Equal(t, "sh-1", resp.Featured[0].ID, "newest first")
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "AI Lab", resp.Groups[0].Key)
	assert.Equal(t, "Sales", resp.Groups[1].Key)
}

func TestJobsAPI_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name      string
		query     string
		wantField string
	}{
		{"search too long", "?q=" + strings.Repeat("x", 201), "q"},
		{"too many companies", "?company=a,b,c,d,e,f", "company"},
		{"department too long", "?department=" + strings.Repeat("d", 101), "department"},
		{"unknown group mode", "?group=alphabetical", "group"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.get("/api/jobs" + tt.query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], "validation error: "+tt.wantField)
		})
	}
	assert.Zero(t, atomic.LoadInt32(&s.source.calls), "invalid requests never reach the board")
}

func TestJobsAPI_UnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/api/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestSitemapAndRobots(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/sitemap.xml")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<loc>https://example.co.kr/en/careers</loc>")

	w = s.get("/robots.txt")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sitemap: https://example.co.kr/sitemap.xml")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.get("/", "Accept-Language", "en")
	s.get("/en")

	w := s.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `corpsite_locale_redirects_total{locale="en"} 1`)
	assert.Contains(t, body, `corpsite_http_requests_total{code="307"} 1`)
	assert.Contains(t, body, `corpsite_http_requests_total{code="200"} 1`)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/health", middleware.RequestIDHeader, "req-123")
	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))

	w = s.get("/health")
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(o *Options) {
		o.RateLimit = &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  100,
			DefaultWindow: time.Minute,
			EndpointConfigs: []ratelimit.EndpointConfig{
				{Path: "/api/jobs", Method: "GET", Limit: 2, Window: time.Minute, Burst: 2},
			},
		}
	})

	for i := 0; i < 2; i++ {
		w := s.get("/api/jobs")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := s.get("/api/jobs")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp["error"])

	assert.Equal(t, http.StatusOK, s.get("/health").Code, "health is never limited")
	assert.Equal(t, http.StatusOK, s.get("/en").Code, "pages use their own bucket")
}

func TestListParam(t *testing.T) {
	assert.Nil(t, listParam(nil))
	assert.Equal(t, []string{"a", "b", "c"}, listParam([]string{"a, b", " ", "c,"}))
}

func TestQueryName(t *testing.T) {
	assert.Equal(t, "department", queryName("Departments[3]"))
	assert.Equal(t, "q", queryName("Search"))
	assert.Equal(t, "Other", queryName("Other"))
}
