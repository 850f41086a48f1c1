package seo

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/corpsite/internal/types"
)

// Organization describes the company for structured data.
type Organization struct {
	Name    string
	URL     string
	Logo    string
	Address string
}

// OrganizationLD returns a schema.org Organization object.
func OrganizationLD(org Organization) map[string]any {
	ld := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     org.Name,
		"url":      org.URL,
	}
	if org.Logo != "" {
		ld["logo"] = org.Logo
	}
	if org.Address != "" {
		ld["address"] = map[string]any{"@type": "PostalAddress", "streetAddress": org.Address}
	}
	return ld
}

var employmentLD = map[types.EmploymentType]string{
	types.EmploymentFullTime: "FULL_TIME",
	types.EmploymentContract: "CONTRACTOR",
	types.EmploymentIntern:   "INTERN",
}

// JobPostingLD returns a schema.org JobPosting object for job.
func JobPostingLD(job types.NormalizedJob, org Organization) map[string]any {
	ld := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "JobPosting",
		"title":       job.Title,
		"description": job.Description,
		"identifier":  map[string]any{"@type": "PropertyValue", "name": org.Name, "value": job.ID},
		"hiringOrganization": map[string]any{
			"@type":  "Organization",
			"name":   org.Name,
			"sameAs": org.URL,
		},
		"employmentType": employmentLD[job.EmploymentType],
		"url":            job.JobURL,
	}
	if t := job.PublishedTime(); !t.IsZero() {
		ld["datePosted"] = t.Format("2006-01-02")
	}
	if job.WorkType == types.WorkRemote {
		ld["jobLocationType"] = "TELECOMMUTE"
	} else {
		ld["jobLocation"] = map[string]any{
			"@type":   "Place",
			"address": map[string]any{"@type": "PostalAddress", "addressLocality": job.OriginalLocation},
		}
	}
	return ld
}

// Script marshals a structured-data object for a <script type="application/ld+json"> body.
func Script(ld any) (string, error) {
	data, err := json.Marshal(ld)
	if err != nil {
		return "", fmt.Errorf("marshal structured data: %w", err)
	}
	return string(data), nil
}
