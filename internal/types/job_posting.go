// Package types provides type definitions for structured data used throughout the site.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawJobPosting is a single posting as returned by the job-board API.
// It is a read-only snapshot; nothing in this module mutates or stores it.
type RawJobPosting struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Department       string `json:"department"`
	Team             string `json:"team,omitempty"`
	EmploymentType   string `json:"employmentType"`
	Location         string `json:"location"`
	IsRemote         bool   `json:"isRemote"`
	IsListed         bool   `json:"isListed"`
	PublishedAt      string `json:"publishedAt"`
	JobURL           string `json:"jobUrl"`
	ApplyURL         string `json:"applyUrl"`
	DescriptionHTML  string `json:"descriptionHtml,omitempty"`
	DescriptionPlain string `json:"descriptionPlain,omitempty"`
}

// JobBoardResponse is the top-level job-board API payload. Postings stay
// raw until Postings decodes them one at a time.
type JobBoardResponse struct {
	Jobs       []json.RawMessage `json:"jobs"`
	APIVersion APIVersion        `json:"apiVersion"`
}

// PostingError reports a posting that could not be decoded.
type PostingError struct {
	Index int
	Cause error
}

func (e *PostingError) Error() string {
	return fmt.Sprintf("posting %d: %v", e.Index, e.Cause)
}

func (e *PostingError) Unwrap() error {
	return e.Cause
}

// Postings decodes each posting on its own, keeping upstream order.
// Postings that fail to decode are left out and reported.
func (r *JobBoardResponse) Postings() ([]RawJobPosting, []*PostingError) {
	postings := make([]RawJobPosting, 0, len(r.Jobs))
	var skipped []*PostingError
	for i, raw := range r.Jobs {
		var p RawJobPosting
		if err := json.Unmarshal(raw, &p); err != nil {
			skipped = append(skipped, &PostingError{Index: i, Cause: err})
			continue
		}
		postings = append(postings, p)
	}
	return postings, skipped
}

// APIVersion is the upstream version marker. Some boards send it as a
// number, so both forms decode to its text.
type APIVersion string

// UnmarshalJSON accepts a JSON string, number or null.
func (v *APIVersion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = APIVersion(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("apiVersion must be a string or number: %w", err)
	}
	*v = APIVersion(n.String())
	return nil
}

// Department is the fixed department vocabulary used for grouping.
type Department string

// Department values
const (
	DepartmentEngineering Department = "engineering"
	DepartmentAI          Department = "ai"
	DepartmentProduct     Department = "product"
	DepartmentDesign      Department = "design"
	DepartmentBusiness    Department = "business"
	DepartmentOperations  Department = "operations"
)

// Location is the fixed office vocabulary.
type Location string

// Location values
const (
	LocationSeoul  Location = "seoul"
	LocationBusan  Location = "busan"
	LocationRemote Location = "remote"
	LocationHybrid Location = "hybrid"
)

// EmploymentType is the normalized contract type.
type EmploymentType string

// EmploymentType values
const (
	EmploymentFullTime EmploymentType = "fullTime"
	EmploymentContract EmploymentType = "contract"
	EmploymentIntern   EmploymentType = "intern"
)

// WorkType is derived only from the upstream remote flag.
type WorkType string

// WorkType values
const (
	WorkRemote WorkType = "remote"
	WorkHybrid WorkType = "hybrid"
)

// ExperienceLevel is a keyword guess over title and description.
// It has no authoritative upstream field and must only be used for display.
type ExperienceLevel string

// ExperienceLevel values
const (
	ExperienceEntry  ExperienceLevel = "entry"
	ExperienceJunior ExperienceLevel = "junior"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
)

// NormalizedJob is a posting mapped onto the site vocabulary.
// Department and Location are always set, falling back to a default bucket.
type NormalizedJob struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Department         Department      `json:"department"`
	OriginalDepartment string          `json:"originalDepartment"`
	Location           Location        `json:"location"`
	OriginalLocation   string          `json:"originalLocation"`
	EmploymentType     EmploymentType  `json:"employmentType"`
	WorkType           WorkType        `json:"workType"`
	Experience         ExperienceLevel `json:"experience"` // advisory only
	Description        string          `json:"description"`
	JobURL             string          `json:"jobUrl"`
	ApplyURL           string          `json:"applyUrl"`
	Team               string          `json:"team,omitempty"`
	PublishedAt        string          `json:"publishedAt"`
}

// PublishedTime parses PublishedAt. Unparseable values yield the zero time,
// which sorts last in a newest-first ordering.
func (j NormalizedJob) PublishedTime() time.Time {
	raw := strings.TrimSpace(j.PublishedAt)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
