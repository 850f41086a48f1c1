package seo

import (
	"encoding/xml"
	"fmt"
	"time"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod,omitempty"`
	ChangeFreq string      `xml:"changefreq,omitempty"`
	Priority   string      `xml:"priority,omitempty"`
	Links      []xhtmlLink `xml:"xhtml:link"`
}

type xhtmlLink struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Entry is one sitemap URL with its alternates.
type Entry struct {
	Loc        string
	ChangeFreq string
	Priority   float64
	Alternates []Alternate
}

// Entries enumerates every locale and route, grouped by locale in the
// order of the locale set.
func (s *Site) Entries() []Entry {
	out := make([]Entry, 0, len(Routes)*len(s.locales.Locales()))
	for _, l := range s.locales.Locales() {
		for _, route := range Routes {
			out = append(out, Entry{
				Loc:        s.Canonical(l, route),
				ChangeFreq: changeFreq(route),
				Priority:   priority(route),
				Alternates: s.Alternates(route),
			})
		}
	}
	return out
}

func changeFreq(route string) string {
	switch route {
	case "":
		return "weekly"
	case "careers":
		return "daily"
	default:
		return "monthly"
	}
}

func priority(route string) float64 {
	switch route {
	case "":
		return 1.0
	case "careers":
		return 0.9
	default:
		return 0.8
	}
}

// Sitemap renders the sitemap XML with hreflang alternates.
func (s *Site) Sitemap(lastMod time.Time) ([]byte, error) {
	set := urlSet{XMLNS: sitemapNS, XHTML: xhtmlNS}
	mod := ""
	if !lastMod.IsZero() {
		mod = lastMod.UTC().Format("2006-01-02")
	}
	for _, e := range s.Entries() {
		u := sitemapURL{
			Loc:        e.Loc,
			LastMod:    mod,
			ChangeFreq: e.ChangeFreq,
			Priority:   fmt.Sprintf("%.1f", e.Priority),
		}
		for _, a := range e.Alternates {
			u.Links = append(u.Links, xhtmlLink{Rel: "alternate", HrefLang: a.HrefLang, Href: a.Href})
		}
		set.URLs = append(set.URLs, u)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
