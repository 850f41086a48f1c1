package pages

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jonathan/corpsite/internal/i18n"
	"github.com/jonathan/corpsite/internal/jobs"
	"github.com/jonathan/corpsite/internal/seo"
	"github.com/jonathan/corpsite/internal/server/middleware"
	"github.com/jonathan/corpsite/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	locales := i18n.DefaultConfig()
	r, err := NewRenderer(seo.NewSite("https://example.co.kr", locales), locales)
	require.NoError(t, err)
	return r
}

func render(t *testing.T, r *Renderer, page string, d *PageData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, page, d))
	return buf.String()
}

func postings() []types.NormalizedJob {
	return []types.NormalizedJob{
		{
			ID: "a1", Title: "ML Engineer", Department: types.DepartmentAI, OriginalDepartment: "AI Lab",
			Location: types.LocationSeoul, OriginalLocation: "Seoul", EmploymentType: types.EmploymentFullTime,
			WorkType: types.WorkHybrid, Experience: types.ExperienceSenior, Description: "Build <models>",
			JobURL: "https://jobs.example.com/a1", ApplyURL: "https://jobs.example.com/a1/apply",
			PublishedAt: "2024-03-01T00:00:00Z",
		},
		{
			ID: "b1", Title: "Account Manager", Department: types.DepartmentBusiness, OriginalDepartment: "Sales",
			Location: types.LocationBusan, OriginalLocation: "Busan", EmploymentType: types.EmploymentContract,
			WorkType: types.WorkHybrid, Experience: types.ExperienceMid, Description: "Grow accounts",
			JobURL: "https://jobs.example.com/b1", ApplyURL: "https://jobs.example.com/b1/apply",
			PublishedAt: "2024-02-01T00:00:00Z",
		},
	}
}

func TestDictionariesHaveSameKeys(t *testing.T) {
	ko, err := LoadDictionary(i18n.Korean)
	require.NoError(t, err)
	en, err := LoadDictionary(i18n.English)
	require.NoError(t, err)

	for key := range ko {
		assert.Contains(t, en, key, "en is missing %s", key)
	}
	for key := range en {
		assert.Contains(t, ko, key, "ko is missing %s", key)
	}
}

func TestLoadDictionary_Unknown(t *testing.T) {
	_, err := LoadDictionary("ja")
	assert.Error(t, err)
}

func TestNewRenderer_MissingDictionary(t *testing.T) {
	locales, err := i18n.NewConfig(i18n.Korean, i18n.Korean, "ja")
	require.NoError(t, err)
	_, err = NewRenderer(seo.NewSite("https://example.co.kr", locales), locales)
	assert.Error(t, err)
}

func TestPageFor(t *testing.T) {
	page, ok := PageFor("")
	assert.True(t, ok)
	assert.Equal(t, PageHome, page)

	page, ok = PageFor("careers")
	assert.True(t, ok)
	assert.Equal(t, PageCareers, page)

	_, ok = PageFor("blog")
	assert.False(t, ok)
}

func TestRender_EveryPage(t *testing.T) {
	r := newTestRenderer(t)

	for _, l := range []i18n.Locale{i18n.Korean, i18n.English} {
		for _, route := range seo.Routes {
			page, ok := PageFor(route)
			require.True(t, ok)
			d := r.Page(l, route)
			if page == PageCareers {
				r.SetCareers(d, NewCareers(nil, jobs.Filter{}, jobs.GroupNormalized))
			}
			html := render(t, r, page, d)

			assert.Contains(t, html, `<html lang="`+string(l)+`">`)
			assert.Contains(t, html, `rel="canonical" href="https://example.co.kr`+seo.NewSite("https://example.co.kr", i18n.DefaultConfig()).Path(l, route)+`"`)
			assert.Contains(t, html, `hreflang="x-default"`)
			assert.NotContains(t, html, "department.", "untranslated key on %s/%s", l, route)
		}
	}
}

func TestPage_LanguageLinks(t *testing.T) {
	r := newTestRenderer(t)
	d := r.Page(i18n.Korean, "about")

	require.Len(t, d.Languages, 1)
	assert.Equal(t, i18n.English, d.Languages[0].Locale)
	assert.Equal(t, "/en/about", d.Languages[0].Href)
	assert.Equal(t, "English", d.Languages[0].Label)
	assert.Equal(t, "/ko/careers", d.Link("careers"))
}

func TestPage_HomeHasOrganization(t *testing.T) {
	r := newTestRenderer(t)

	home := r.Page(i18n.English, "")
	require.Len(t, home.StructuredData, 1)
	assert.Contains(t, string(home.StructuredData[0]), `"Organization"`)

	about := r.Page(i18n.English, "about")
	assert.Empty(t, about.StructuredData)
}

func TestT_FallsBack(t *testing.T) {
	d := &PageData{
		dict:     Dictionary{"a": "local"},
		fallback: Dictionary{"a": "default", "b": "fallback"},
	}
	assert.Equal(t, "local", d.T("a"))
	assert.Equal(t, "fallback", d.T("b"))
	assert.Equal(t, "c.missing", d.T("c.missing"))
}

func TestNotFound(t *testing.T) {
	r := newTestRenderer(t)
	d := r.NotFound(i18n.English)

	assert.Empty(t, d.Canonical)
	assert.Empty(t, d.Alternates)
	assert.Empty(t, d.StructuredData)

	html := render(t, r, PageNotFound, d)
	assert.Contains(t, html, "Page not found")
	assert.NotContains(t, html, `rel="canonical"`)
}

func TestCareers_EmptyBoard(t *testing.T) {
	r := newTestRenderer(t)
	d := r.Page(i18n.English, "careers")
	r.SetCareers(d, NewCareers([]types.NormalizedJob{}, jobs.Filter{}, jobs.GroupNormalized))

	html := render(t, r, PageCareers, d)
	assert.Contains(t, html, "There are no open positions right now.")
	assert.NotContains(t, html, `class="filters"`)
}

func TestCareers_NoMatch(t *testing.T) {
	r := newTestRenderer(t)
	d := r.Page(i18n.English, "careers")
	c := NewCareers(postings(), jobs.Filter{Search: "astronaut"}, jobs.GroupNormalized)
	r.SetCareers(d, c)

	assert.False(t, c.Empty())
	assert.True(t, c.NoMatch())
	html := render(t, r, PageCareers, d)
	assert.Contains(t, html, "No openings match your filters.")
	assert.Contains(t, html, `value="astronaut"`)
}

func TestCareers_Listing(t *testing.T) {
	r := newTestRenderer(t)
	d := r.Page(i18n.English, "careers")
	c := NewCareers(postings(), jobs.Filter{Departments: []string{"sales"}}, jobs.GroupNormalized)
	r.SetCareers(d, c)

	assert.Equal(t, 2, c.Total)
	assert.Equal(t, 1, c.Count)
	assert.Equal(t, []string{"AI Lab", "Sales"}, c.Facets.Departments, "facets come from every posting")
	require.Len(t, c.Groups, 1)
	assert.Equal(t, "business", c.Groups[0].Key)
	assert.True(t, c.Selected("department", "Sales"))
	assert.False(t, c.Selected("department", "AI Lab"))

	html := render(t, r, PageCareers, d)
	assert.Contains(t, html, `id="job-b1"`)
	assert.NotContains(t, html, `id="job-a1"`)
	assert.Contains(t, html, "<h3>Business</h3>")
	assert.Contains(t, html, "Contract")
	assert.Contains(t, html, `"JobPosting"`)
	assert.Equal(t, 1, strings.Count(html, `"JobPosting"`))
}

func TestCareers_EscapesDescription(t *testing.T) {
	r := newTestRenderer(t)
	d := r.Page(i18n.English, "careers")
	r.SetCareers(d, NewCareers(postings(), jobs.Filter{}, jobs.GroupNormalized))

	html := render(t, r, PageCareers, d)
	assert.Contains(t, html, "Build &lt;models&gt;")
}

func TestGroupLabel(t *testing.T) {
	r := newTestRenderer(t)
	d := r.Page(i18n.English, "careers")

	d.Careers = NewCareers(postings(), jobs.Filter{}, jobs.GroupNormalized)
	assert.Equal(t, "AI", d.GroupLabel(jobs.Group{Key: "ai"}))

	d.Careers = NewCareers(postings(), jobs.Filter{}, jobs.GroupOriginal)
	assert.Equal(t, "AI Lab", d.GroupLabel(jobs.Group{Key: "AI Lab"}))
}

func TestJobCard_TranslatesLabels(t *testing.T) {
	r := newTestRenderer(t)
	card := r.Page(i18n.English, "careers").JobCard(postings()[0])

	assert.Equal(t, "AI", card.Department)
	assert.Equal(t, "Seoul", card.Location)
	assert.Equal(t, "Full-time", card.Employment)
	assert.Equal(t, "Hybrid", card.WorkType)
	assert.Equal(t, "Senior", card.Experience)
	assert.Equal(t, "Apply", card.ApplyLabel)
}

func TestNotFoundLocale(t *testing.T) {
	r := newTestRenderer(t)

	req := httptest.NewRequest(http.MethodGet, "/en/nope", nil)
	assert.Equal(t, i18n.Korean, r.NotFoundLocale(req), "default without hints")

	req.Header.Set(middleware.PathnameHeader, "/en/nope")
	assert.Equal(t, i18n.English, r.NotFoundLocale(req))

	req = req.WithContext(i18n.WithLocale(req.Context(), i18n.Korean))
	assert.Equal(t, i18n.Korean, r.NotFoundLocale(req), "context wins over the header")
}

func TestRender_UnknownPage(t *testing.T) {
	r := newTestRenderer(t)
	err := r.Render(&bytes.Buffer{}, "blog", r.Page(i18n.Korean, ""))
	assert.Error(t, err)
}
