package jobs

import (
	"strings"

	"github.com/jonathan/corpsite/internal/types"
)

// Company is the hiring brand a posting belongs to.
type Company string

// Company buckets
const (
	CompanyHeadquarters Company = "hq"
	CompanyShanghai     Company = "shanghai"
)

var shanghaiMarkers = []string{"shanghai", "상하이", "上海"}

// CompanyOf buckets a posting by whether its normalized or original location
// names Shanghai.
func CompanyOf(job types.NormalizedJob) Company {
	if containsAny(strings.ToLower(string(job.Location)), shanghaiMarkers) ||
		containsAny(strings.ToLower(job.OriginalLocation), shanghaiMarkers) {
		return CompanyShanghai
	}
	return CompanyHeadquarters
}

// Filter is the listing filter state. A posting passes when it satisfies
// every dimension; an empty dimension accepts everything.
type Filter struct {
	// Search is a case-insensitive substring of title, description or team.
	Search string `json:"search,omitempty" validate:"max=200"`
	// Departments match the original department text, case-insensitively.
	Departments []string `json:"departments,omitempty" validate:"max=20,dive,max=100"`
	// EmploymentTypes match the normalized employment type.
	EmploymentTypes []string `json:"employmentTypes,omitempty" validate:"max=10,dive,max=50"`
	// Locations match the normalized bucket or the original location text.
	Locations []string `json:"locations,omitempty" validate:"max=20,dive,max=100"`
	// Companies match CompanyOf.
	Companies []string `json:"companies,omitempty" validate:"max=5,dive,max=50"`
}

// IsEmpty reports whether the filter accepts every posting.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Search) == "" &&
		len(f.Departments) == 0 &&
		len(f.EmploymentTypes) == 0 &&
		len(f.Locations) == 0 &&
		len(f.Companies) == 0
}

// Matches reports whether job passes every active dimension.
func (f Filter) Matches(job types.NormalizedJob) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(job.Title), q) &&
			!strings.Contains(strings.ToLower(job.Description), q) &&
			!strings.Contains(strings.ToLower(job.Team), q) {
			return false
		}
	}
	if len(f.Departments) > 0 && !anyEqualFold(f.Departments, job.OriginalDepartment) {
		return false
	}
	if len(f.EmploymentTypes) > 0 && !anyEqualFold(f.EmploymentTypes, string(job.EmploymentType)) {
		return false
	}
	if len(f.Locations) > 0 &&
		!anyEqualFold(f.Locations, string(job.Location)) &&
		!anyEqualFold(f.Locations, job.OriginalLocation) {
		return false
	}
	if len(f.Companies) > 0 && !anyEqualFold(f.Companies, string(CompanyOf(job))) {
		return false
	}
	return true
}

// Apply returns the postings that pass the filter, in input order. The
// input is not modified and the result is never nil.
func (f Filter) Apply(jobs []types.NormalizedJob) []types.NormalizedJob {
	out := make([]types.NormalizedJob, 0, len(jobs))
	for _, job := range jobs {
		if f.Matches(job) {
			out = append(out, job)
		}
	}
	return out
}

func anyEqualFold(options []string, value string) bool {
	value = strings.TrimSpace(value)
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), value) {
			return true
		}
	}
	return false
}
