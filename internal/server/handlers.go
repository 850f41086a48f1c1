package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/corpsite/internal/jobs"
	"github.com/jonathan/corpsite/internal/pages"
	"github.com/jonathan/corpsite/internal/server/middleware"
	"github.com/jonathan/corpsite/internal/types"
)

// JobsResponse is the body of GET /api/jobs.
type JobsResponse struct {
	Jobs     []types.NormalizedJob `json:"jobs"`
	Total    int                   `json:"total"`
	Count    int                   `json:"count"`
	Featured []types.NormalizedJob `json:"featured"`
	Groups   []jobs.Group          `json:"groups,omitempty"`
	Facets   jobs.Facets           `json:"facets"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleJobs returns the filtered postings as JSON.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	filter, err := s.parseFilter(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	mode, err := parseGroupMode(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	all := s.jobs.FetchJobs(r.Context())
	filtered := filter.Apply(all)
	resp := JobsResponse{
		Jobs:     filtered,
		Total:    len(all),
		Count:    len(filtered),
		Featured: jobs.Featured(filtered, jobs.DefaultFeatured),
		Facets:   jobs.FacetsOf(all),
	}
	if mode != "" {
		resp.Groups = jobs.GroupBy(filtered, mode)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handlePage renders one of the fixed site pages.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	locale, ok := s.locales.Parse(r.PathValue("locale"))
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	route := r.PathValue("page")
	page, ok := pages.PageFor(route)
	if !ok {
		s.handleNotFound(w, r)
		return
	}

	data := s.renderer.Page(locale, route)
	if page == pages.PageCareers {
		filter, err := s.parseFilter(r)
		if err != nil {
			// The page still renders, unfiltered.
			s.logger.Debug("careers_filter_ignored", "error", err)
			filter = jobs.Filter{}
		}
		mode, err := parseGroupMode(r)
		if err != nil {
			mode = jobs.GroupNormalized
		}
		s.renderer.SetCareers(data, pages.NewCareers(s.jobs.FetchJobs(r.Context()), filter, mode))
	}
	s.renderPage(w, r, http.StatusOK, page, data)
}

// handleNotFound renders the localized not-found page, or a JSON error for
// API paths.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		s.errorResponse(w, http.StatusNotFound, (&ErrNotFound{Path: r.URL.Path}).Error())
		return
	}
	locale := s.renderer.NotFoundLocale(r)
	s.renderPage(w, r, http.StatusNotFound, pages.PageNotFound, s.renderer.NotFound(locale))
}

// handleSitemap serves the multilingual sitemap.
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	body, err := s.site.Sitemap(s.startedAt)
	if err != nil {
		s.logger.Error("sitemap_failed", "request_id", middleware.GetRequestID(r.Context()), "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to build sitemap")
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleRobots serves robots.txt.
func (s *Server) handleRobots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.site.RobotsTxt()))
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, data *pages.PageData) {
	var buf strings.Builder
	if err := s.renderer.Render(&buf, page, data); err != nil {
		err = &ErrRender{Page: page, Cause: err}
		s.logger.Error("render_failed", "request_id", middleware.GetRequestID(r.Context()), "error", err)
		s.errorResponse(w, HTTPStatus(err), "internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", string(data.Locale))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// parseFilter reads the filter from the query string. List parameters may
// be repeated or comma-separated.
func (s *Server) parseFilter(r *http.Request) (jobs.Filter, error) {
	q := r.URL.Query()
	filter := jobs.Filter{
		Search:          strings.TrimSpace(q.Get("q")),
		Departments:     listParam(q["department"]),
		EmploymentTypes: listParam(q["type"]),
		Locations:       listParam(q["location"]),
		Companies:       listParam(q["company"]),
	}
	if err := s.validate.Struct(filter); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return jobs.Filter{}, &ErrValidation{Field: queryName(verrs[0].StructField()), Message: verrs[0].Tag() + "=" + verrs[0].Param()}
		}
		return jobs.Filter{}, &ErrValidation{Field: "query", Message: err.Error()}
	}
	return filter, nil
}

func parseGroupMode(r *http.Request) (jobs.GroupMode, error) {
	switch v := jobs.GroupMode(r.URL.Query().Get("group")); v {
	case "":
		return "", nil
	case jobs.GroupNormalized, jobs.GroupOriginal:
		return v, nil
	default:
		return "", &ErrValidation{Field: "group", Message: "must be normalized or original"}
	}
}

func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var queryNames = map[string]string{
	"Search":          "q",
	"Departments":     "department",
	"EmploymentTypes": "type",
	"Locations":       "location",
	"Companies":       "company",
}

// queryName maps a Filter field, possibly indexed like "Departments[3]",
// to its query parameter.
func queryName(field string) string {
	field, _, _ = strings.Cut(field, "[")
	if name, ok := queryNames[field]; ok {
		return name
	}
	return field
}
