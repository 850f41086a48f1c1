package pages

import (
	"html/template"
	"strings"

	"github.com/jonathan/corpsite/internal/i18n"
	"github.com/jonathan/corpsite/internal/jobs"
	"github.com/jonathan/corpsite/internal/seo"
	"github.com/jonathan/corpsite/internal/types"
)

// LanguageLink points at the current route in another locale.
type LanguageLink struct {
	Locale i18n.Locale
	Href   string
	Label  string
}

// PageData is the template context.
type PageData struct {
	Locale         i18n.Locale
	Route          string
	Title          string
	Description    string
	Canonical      string
	Alternates     []seo.Alternate
	Languages      []LanguageLink
	StructuredData []template.JS
	Careers        *Careers

	dict     Dictionary
	fallback Dictionary
	site     *seo.Site
}

// T looks key up in the page locale, then the default locale. A missing key
// renders as itself.
func (d *PageData) T(key string) string {
	if v, ok := d.dict[key]; ok {
		return v
	}
	if v, ok := d.fallback[key]; ok {
		return v
	}
	return key
}

// Link returns the path of route in the page locale.
func (d *PageData) Link(route string) string {
	return d.site.Path(d.Locale, route)
}

// GroupLabel names a listing group: translated for normalized departments,
// verbatim for original ones.
func (d *PageData) GroupLabel(g jobs.Group) string {
	if d.Careers != nil && d.Careers.Mode == jobs.GroupOriginal {
		return g.Key
	}
	return d.T("department." + g.Key)
}

// JobCard is a posting with its labels translated.
type JobCard struct {
	Job        types.NormalizedJob
	Department string
	Location   string
	Employment string
	WorkType   string
	Experience string
	ApplyLabel string
}

// JobCard translates the labels of job.
func (d *PageData) JobCard(job types.NormalizedJob) JobCard {
	return JobCard{
		Job:        job,
		Department: d.T("department." + string(job.Department)),
		Location:   d.T("office." + string(job.Location)),
		Employment: d.T("employment." + string(job.EmploymentType)),
		WorkType:   d.T("worktype." + string(job.WorkType)),
		Experience: d.T("experience." + string(job.Experience)),
		ApplyLabel: d.T("careers.apply"),
	}
}

func (d *PageData) addStructuredData(ld any) {
	script, err := seo.Script(ld)
	if err != nil {
		return
	}
	// JSON encoding escapes <, > and &, so the script body cannot close the tag.
	d.StructuredData = append(d.StructuredData, template.JS(script)) //nolint:gosec
}

// Careers is the careers page view over one fetch.
type Careers struct {
	Total    int // listed postings before filtering
	Count    int // postings passing the filter
	Featured []types.NormalizedJob
	Groups   []jobs.Group
	Facets   jobs.Facets
	Filter   jobs.Filter
	Mode     jobs.GroupMode
}

// NewCareers projects all through filter: featured and grouped lists are
// computed from the filtered postings, facets from all of them.
func NewCareers(all []types.NormalizedJob, filter jobs.Filter, mode jobs.GroupMode) *Careers {
	if mode != jobs.GroupOriginal {
		mode = jobs.GroupNormalized
	}
	filtered := filter.Apply(all)
	return &Careers{
		Total:    len(all),
		Count:    len(filtered),
		Featured: jobs.Featured(filtered, jobs.DefaultFeatured),
		Groups:   jobs.GroupBy(filtered, mode),
		Facets:   jobs.FacetsOf(all),
		Filter:   filter,
		Mode:     mode,
	}
}

// Empty reports that the board returned no postings at all.
func (c *Careers) Empty() bool { return c.Total == 0 }

// NoMatch reports that postings exist but none pass the filter.
func (c *Careers) NoMatch() bool { return c.Total > 0 && c.Count == 0 }

// Selected reports whether value is active in the named filter dimension.
func (c *Careers) Selected(dimension, value string) bool {
	var values []string
	switch dimension {
	case "department":
		values = c.Filter.Departments
	case "type":
		values = c.Filter.EmploymentTypes
	case "location":
		values = c.Filter.Locations
	case "company":
		values = c.Filter.Companies
	}
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// SetCareers attaches the careers view and its JobPosting structured data.
func (r *Renderer) SetCareers(d *PageData, c *Careers) {
	d.Careers = c
	org := r.Organization(d.Locale)
	for _, g := range c.Groups {
		for _, job := range g.Jobs {
			d.addStructuredData(seo.JobPostingLD(job, org))
		}
	}
}
