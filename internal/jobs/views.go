package jobs

import (
	"slices"
	"strings"

	"github.com/jonathan/corpsite/internal/types"
)

// DefaultFeatured is how many postings the careers page highlights.
const DefaultFeatured = 3

// Featured returns up to n postings, newest first. Postings without a
// parseable date sort last; ties keep input order.
func Featured(jobs []types.NormalizedJob, n int) []types.NormalizedJob {
	if n <= 0 {
		return []types.NormalizedJob{}
	}
	sorted := slices.Clone(jobs)
	slices.SortStableFunc(sorted, func(a, b types.NormalizedJob) int {
		return b.PublishedTime().Compare(a.PublishedTime())
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		return []types.NormalizedJob{}
	}
	return sorted
}

// GroupMode selects the grouping key.
type GroupMode string

// Grouping modes
const (
	GroupNormalized GroupMode = "normalized"
	GroupOriginal   GroupMode = "original"
)

// Group is one department heading and its postings.
type Group struct {
	Key  string                `json:"key"`
	Jobs []types.NormalizedJob `json:"jobs"`
}

// GroupBy groups postings by normalized or original department. Groups
// appear in order of first occurrence and keep input order within a group.
// Original departments are compared case-insensitively; the first spelling
// seen is the key.
func GroupBy(jobs []types.NormalizedJob, mode GroupMode) []Group {
	groups := []Group{}
	index := make(map[string]int)
	for _, job := range jobs {
		key := string(job.Department)
		if mode == GroupOriginal {
			key = strings.TrimSpace(job.OriginalDepartment)
		}
		id := strings.ToLower(key)
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Jobs = append(groups[i].Jobs, job)
	}
	return groups
}

// Facets lists the distinct filter values present in a job list, in order
// of first occurrence.
type Facets struct {
	Departments     []string `json:"departments"`
	EmploymentTypes []string `json:"employmentTypes"`
	Locations       []string `json:"locations"`
	Companies       []string `json:"companies"`
}

// FacetsOf collects the filter options for jobs.
func FacetsOf(jobs []types.NormalizedJob) Facets {
	f := Facets{
		Departments:     []string{},
		EmploymentTypes: []string{},
		Locations:       []string{},
		Companies:       []string{},
	}
	for _, job := range jobs {
		f.Departments = appendUnique(f.Departments, job.OriginalDepartment)
		f.EmploymentTypes = appendUnique(f.EmploymentTypes, string(job.EmploymentType))
		f.Locations = appendUnique(f.Locations, string(job.Location))
		f.Companies = appendUnique(f.Companies, string(CompanyOf(job)))
	}
	return f
}

func appendUnique(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}
