// Package seo builds locale-aware URLs: canonical links, hreflang
// alternates, the sitemap and robots.txt.
package seo

import (
	"strings"

	"github.com/jonathan/corpsite/internal/i18n"
)

// XDefault is the hreflang value for the language-neutral alternate.
const XDefault = "x-default"

// Routes is the fixed list of page routes, without the locale prefix.
// The empty route is the home page.
var Routes = []string{"", "about", "services", "careers", "location"}

// IsRoute reports whether route is one of Routes.
func IsRoute(route string) bool {
	for _, r := range Routes {
		if r == route {
			return true
		}
	}
	return false
}

// Site generates URLs for one public origin and locale set.
type Site struct {
	baseURL string
	locales i18n.Config
}

// NewSite returns a Site rooted at baseURL. A trailing slash is ignored.
func NewSite(baseURL string, locales i18n.Config) *Site {
	return &Site{baseURL: strings.TrimRight(baseURL, "/"), locales: locales}
}

// BaseURL returns the public origin without a trailing slash.
func (s *Site) BaseURL() string { return s.baseURL }

// Path returns the locale-prefixed path for route, e.g. "/en/careers".
// The home route maps to "/en".
func (s *Site) Path(l i18n.Locale, route string) string {
	route = strings.Trim(route, "/")
	if route == "" {
		return "/" + string(l)
	}
	return "/" + string(l) + "/" + route
}

// Canonical returns the absolute URL of route in locale l.
func (s *Site) Canonical(l i18n.Locale, route string) string {
	return s.baseURL + s.Path(l, route)
}

// Alternate is one hreflang link.
type Alternate struct {
	HrefLang string
	Href     string
}

// Alternates lists route in every locale, default first, followed by an
// x-default entry pointing at the default locale.
func (s *Site) Alternates(route string) []Alternate {
	locales := s.locales.Locales()
	out := make([]Alternate, 0, len(locales)+1)
	for _, l := range locales {
		out = append(out, Alternate{HrefLang: string(l), Href: s.Canonical(l, route)})
	}
	return append(out, Alternate{HrefLang: XDefault, Href: s.Canonical(s.locales.Default(), route)})
}

// RobotsTxt allows everything except API routes and points at the sitemap.
func (s *Site) RobotsTxt() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("\n")
	b.WriteString("Sitemap: " + s.baseURL + "/sitemap.xml\n")
	return b.String()
}
