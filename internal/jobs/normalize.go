package jobs

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/corpsite/internal/fetch"
	"github.com/jonathan/corpsite/internal/types"
)

// MaxDescriptionRunes is the length a description is cut to before the
// ellipsis is appended.
const MaxDescriptionRunes = 200

const ellipsis = "..."

var departmentRules = ruleSet[types.Department]{
	foldCase: true,
	exact: []exactRule[types.Department]{
		{"engineering", types.DepartmentEngineering},
		{"ai", types.DepartmentAI},
		{"ai/ml", types.DepartmentAI},
		{"aiml", types.DepartmentAI},
		{"product", types.DepartmentProduct},
		{"design", types.DepartmentDesign},
		{"business", types.DepartmentBusiness},
		{"operations", types.DepartmentOperations},
		{"sales", types.DepartmentBusiness},
		{"marketing", types.DepartmentBusiness},
	},
	keywords: []keywordRule[types.Department]{
		{[]string{"engineering", "software", "developer"}, types.DepartmentEngineering},
		{[]string{"ai", "ml", "machine learning"}, types.DepartmentAI},
		{[]string{"product"}, types.DepartmentProduct},
		{[]string{"design", "ux", "ui"}, types.DepartmentDesign},
		{[]string{"business", "sales", "marketing"}, types.DepartmentBusiness},
	},
	fallback: types.DepartmentEngineering,
}

// Shanghai is deliberately absent: such postings fall back to seoul and are
// told apart by CompanyOf on the original string.
var locationRules = ruleSet[types.Location]{
	keywords: []keywordRule[types.Location]{
		{[]string{"seoul", "서울", "성남", "seongnam", "판교", "pangyo"}, types.LocationSeoul},
		{[]string{"busan", "부산"}, types.LocationBusan},
		{[]string{"hybrid"}, types.LocationHybrid},
	},
	fallback: types.LocationSeoul,
}

// Employment types come from a closed upstream enum, so only exact
// (case-sensitive) values are recognized.
var employmentRules = ruleSet[types.EmploymentType]{
	exact: []exactRule[types.EmploymentType]{
		{"FullTime", types.EmploymentFullTime},
		{"Contract", types.EmploymentContract},
		{"Intern", types.EmploymentIntern},
		{"PartTime", types.EmploymentContract},
	},
	fallback: types.EmploymentFullTime,
}

// Priority order matters: "3-5년" also contains "5년" and resolves to senior.
var experienceRules = ruleSet[types.ExperienceLevel]{
	keywords: []keywordRule[types.ExperienceLevel]{
		{[]string{"senior", "시니어", "5년", "5+"}, types.ExperienceSenior},
		{[]string{"mid", "미들", "3-5년"}, types.ExperienceMid},
		{[]string{"junior", "주니어", "1-3년"}, types.ExperienceJunior},
		{[]string{"entry", "신입", "new grad"}, types.ExperienceEntry},
	},
	fallback: types.ExperienceMid,
}

// NormalizeDepartment maps a free-text department onto the department set.
func NormalizeDepartment(department string) Match[types.Department] {
	return departmentRules.match(department)
}

// NormalizeLocation maps a location onto the office set. The remote flag
// wins over any location text.
func NormalizeLocation(location string, isRemote bool) Match[types.Location] {
	if isRemote {
		return Match[types.Location]{Value: types.LocationRemote, Via: ViaExact}
	}
	return locationRules.match(location)
}

// NormalizeEmploymentType maps the upstream employment enum.
func NormalizeEmploymentType(employmentType string) Match[types.EmploymentType] {
	return employmentRules.match(employmentType)
}

// WorkTypeOf derives the work type from the remote flag alone.
func WorkTypeOf(isRemote bool) types.WorkType {
	if isRemote {
		return types.WorkRemote
	}
	return types.WorkHybrid
}

// InferExperience guesses a seniority from title and description text.
// The result is a display hint only.
func InferExperience(title, description string) Match[types.ExperienceLevel] {
	return experienceRules.match(title + " " + description)
}

// Description returns the posting text with markup removed and whitespace
// collapsed, cut to MaxDescriptionRunes with a trailing ellipsis.
func Description(raw types.RawJobPosting) string {
	return truncate(fullText(raw), MaxDescriptionRunes)
}

func fullText(raw types.RawJobPosting) string {
	source := raw.DescriptionHTML
	if strings.TrimSpace(source) == "" {
		source = raw.DescriptionPlain
	}
	return fetch.PlainText(source)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:max]), " ") + ellipsis
}

// Normalize maps one posting. It never fails: every field falls back to a
// documented default.
func Normalize(raw types.RawJobPosting) types.NormalizedJob {
	text := fullText(raw)
	return types.NormalizedJob{
		ID:                 raw.ID,
		Title:              raw.Title,
		Department:         NormalizeDepartment(raw.Department).Value,
		OriginalDepartment: raw.Department,
		Location:           NormalizeLocation(raw.Location, raw.IsRemote).Value,
		OriginalLocation:   raw.Location,
		EmploymentType:     NormalizeEmploymentType(raw.EmploymentType).Value,
		WorkType:           WorkTypeOf(raw.IsRemote),
		Experience:         InferExperience(raw.Title, text).Value,
		Description:        truncate(text, MaxDescriptionRunes),
		JobURL:             raw.JobURL,
		ApplyURL:           raw.ApplyURL,
		Team:               raw.Team,
		PublishedAt:        raw.PublishedAt,
	}
}

// NormalizeListed drops unlisted postings and normalizes the rest, keeping
// upstream order. The result is never nil.
func NormalizeListed(raws []types.RawJobPosting) []types.NormalizedJob {
	out := make([]types.NormalizedJob, 0, len(raws))
	for _, raw := range raws {
		if !raw.IsListed {
			continue
		}
		out = append(out, Normalize(raw))
	}
	return out
}
