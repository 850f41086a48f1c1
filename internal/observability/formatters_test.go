package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/jonathan/corpsite/internal/jobs"
	"github.com/jonathan/corpsite/internal/types"
	"github.com/stretchr/testify/assert"
)

func sample() []types.NormalizedJob {
	return []types.NormalizedJob{
		{
			ID: "ai-1", Title: "ML Engineer", Department: types.DepartmentAI, OriginalDepartment: "AI Lab",
			Location: types.LocationSeoul, OriginalLocation: "Seoul", EmploymentType: types.EmploymentFullTime,
			WorkType: types.WorkHybrid, Experience: types.ExperienceSenior, PublishedAt: "2024-03-01",
		},
		{
			ID: "sh-1", Title: "데이터 분석가", Department: types.DepartmentAI, OriginalDepartment: "ai",
			Location: types.LocationSeoul, OriginalLocation: "Shanghai", EmploymentType: types.EmploymentContract,
			WorkType: types.WorkRemote, Experience: types.ExperienceMid,
		},
	}
}

func TestPrintJobs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobs(sample())
	output := buf.String()

	assert.Contains(t, output, "JOB POSTINGS")
	assert.Contains(t, output, "Listed postings: 2")
	assert.Contains(t, output, "AI Lab → ai")
	assert.Contains(t, output, "Shanghai → seoul")
	assert.Contains(t, output, "Company:    shanghai")
	assert.Contains(t, output, "contract / remote")
	assert.Contains(t, output, "senior (estimated)")
	assert.Contains(t, output, "데이터 분석가")
	assert.Contains(t, output, "Published:  2024-03-01")
}

func TestPrintJobs_SameValueNotRepeated(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobs(sample()[1:])

	assert.Contains(t, buf.String(), "Department: ai ")
	assert.NotContains(t, buf.String(), "ai → ai")
}

func TestPrintJobs_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobs(nil)

	assert.Contains(t, buf.String(), "NO LISTED POSTINGS")
}

func TestPrintJobs_Truncated(t *testing.T) {
	var list []types.NormalizedJob
	for i := 0; i < maxItemsToShow+3; i++ {
		list = append(list, types.NormalizedJob{ID: fmt.Sprintf("j%d", i), Title: "Engineer"})
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobs(list)
	assert.Contains(t, buf.String(), "... and 3 more postings")
}

func TestPrintGroups(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintGroups(jobs.GroupBy(sample(), jobs.GroupNormalized))

	output := buf.String()
	assert.Contains(t, output, "BY DEPARTMENT")
	assert.Contains(t, output, "ML Engineer, 데이터 분석가")
}

func TestPrintGroups_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintGroups(nil)
	assert.Empty(t, buf.String())
}

func TestPrintFacets(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFacets(jobs.FacetsOf(sample()))

	output := buf.String()
	assert.Contains(t, output, "FILTER OPTIONS")
	assert.Contains(t, output, "Departments: AI Lab")
	assert.Contains(t, output, "Companies:   hq, shanghai")
}

func TestPrintBox_LongLinesClipped(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.printBox("T", strings.Repeat("가", 200))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcd...", clip("abcdefghij", 7))
	assert.Equal(t, "한국...", clip("한국어입니다", 5))
}
