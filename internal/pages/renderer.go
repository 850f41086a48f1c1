// Package pages renders the bilingual site pages from embedded templates
// and dictionaries.
package pages

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path"

	"github.com/jonathan/corpsite/internal/i18n"
	"github.com/jonathan/corpsite/internal/seo"
	"github.com/jonathan/corpsite/internal/server/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed dicts/*.json
var dictFS embed.FS

// Page names
const (
	PageHome     = "home"
	PageAbout    = "about"
	PageServices = "services"
	PageCareers  = "careers"
	PageLocation = "location"
	PageNotFound = "not_found"
)

// PageFor returns the template name serving route, and false for unknown routes.
func PageFor(route string) (string, bool) {
	if !seo.IsRoute(route) {
		return "", false
	}
	if route == "" {
		return PageHome, true
	}
	return route, true
}

// Dictionary maps message keys to text in one locale.
type Dictionary map[string]string

// LoadDictionary reads the embedded dictionary for l.
func LoadDictionary(l i18n.Locale) (Dictionary, error) {
	data, err := dictFS.ReadFile(path.Join("dicts", string(l)+".json"))
	if err != nil {
		return nil, fmt.Errorf("no dictionary for locale %q: %w", l, err)
	}
	var d Dictionary
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dictionary %q: %w", l, err)
	}
	return d, nil
}

// Renderer executes page templates. It is immutable after construction and
// safe for concurrent use.
type Renderer struct {
	pages   map[string]*template.Template
	dicts   map[i18n.Locale]Dictionary
	locales i18n.Config
	site    *seo.Site
}

// NewRenderer parses every page template and loads a dictionary for each
// supported locale.
func NewRenderer(site *seo.Site, locales i18n.Config) (*Renderer, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{PageHome, PageAbout, PageServices, PageCareers, PageLocation, PageNotFound} {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		t, err := clone.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	dicts := make(map[i18n.Locale]Dictionary)
	for _, l := range locales.Locales() {
		d, err := LoadDictionary(l)
		if err != nil {
			return nil, err
		}
		dicts[l] = d
	}

	return &Renderer{pages: pages, dicts: dicts, locales: locales, site: site}, nil
}

// Page builds the data shared by every page: title, description, canonical
// link, hreflang alternates and language links.
func (r *Renderer) Page(l i18n.Locale, route string) *PageData {
	d := &PageData{
		Locale:   l,
		Route:    route,
		dict:     r.dicts[l],
		fallback: r.dicts[r.locales.Default()],
		site:     r.site,
	}

	key := route
	if key == "" {
		key = "home"
	}
	d.Title = d.T(key + ".title")
	d.Description = d.T(key + ".description")
	d.Canonical = r.site.Canonical(l, route)
	d.Alternates = r.site.Alternates(route)

	for _, other := range r.locales.Locales() {
		if other == l {
			continue
		}
		d.Languages = append(d.Languages, LanguageLink{
			Locale: other,
			Href:   r.site.Path(other, route),
			Label:  r.dicts[other]["locale.name"],
		})
	}

	if route == "" {
		d.addStructuredData(seo.OrganizationLD(r.Organization(l)))
	}
	return d
}

// NotFound builds the data for the not-found page. It has no canonical link
// or alternates.
func (r *Renderer) NotFound(l i18n.Locale) *PageData {
	d := r.Page(l, "")
	d.Route = ""
	d.Title = d.T("notfound.title")
	d.Description = d.T("notfound.body")
	d.Canonical = ""
	d.Alternates = nil
	d.StructuredData = nil
	return d
}

// Organization describes the company in locale l.
func (r *Renderer) Organization(l i18n.Locale) seo.Organization {
	dict := r.dicts[l]
	return seo.Organization{
		Name:    dict["site.name"],
		URL:     r.site.BaseURL(),
		Address: dict["location.address"],
	}
}

// Render executes page into w. Output is buffered so a template error never
// produces a partial page.
func (r *Renderer) Render(w io.Writer, page string, data *PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// NotFoundLocale recovers the active locale for a not-found response: the
// request context first, then the pathname header set by the locale
// middleware, then the default locale.
func (r *Renderer) NotFoundLocale(req *http.Request) i18n.Locale {
	if l, ok := i18n.FromContext(req.Context()); ok {
		return l
	}
	if p := req.Header.Get(middleware.PathnameHeader); p != "" {
		if l, ok := r.locales.FromPath(p); ok {
			return l
		}
	}
	return r.locales.Default()
}
