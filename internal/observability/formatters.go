// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/corpsite/internal/jobs"
	"github.com/jonathan/corpsite/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// Printer handles formatted output for the jobs command
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// mapped renders "original → normalized", or just the value when they agree.
func mapped(original, normalized string) string {
	if strings.TrimSpace(original) == "" || strings.EqualFold(original, normalized) {
		return normalized
	}
	return fmt.Sprintf("%s → %s", original, normalized)
}

// PrintJobs outputs a summary of normalized postings, showing how each
// upstream department and location was mapped.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintJobs(list []types.NormalizedJob) {
	if len(list) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO LISTED POSTINGS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Listed postings: %d\n\n", len(list)))

	count := min(len(list), maxItemsToShow)
	for i := 0; i < count; i++ {
		job := list[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, job.Title))
		sb.WriteString(fmt.Sprintf("    ID:         %s\n", job.ID))
		sb.WriteString(fmt.Sprintf("    Department: %s\n", mapped(job.OriginalDepartment, string(job.Department))))
		sb.WriteString(fmt.Sprintf("    Location:   %s\n", mapped(job.OriginalLocation, string(job.Location))))
		sb.WriteString(fmt.Sprintf("    Type:       %s / %s\n", job.EmploymentType, job.WorkType))
		sb.WriteString(fmt.Sprintf("    Experience: %s (estimated)\n", job.Experience))
		if company := jobs.CompanyOf(job); company != jobs.CompanyHeadquarters {
			sb.WriteString(fmt.Sprintf("    Company:    %s\n", company))
		}
		if job.PublishedAt != "" {
			sb.WriteString(fmt.Sprintf("    Published:  %s\n", job.PublishedAt))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(list) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more postings", len(list)-maxItemsToShow))
	}

	p.printBox("JOB POSTINGS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGroups outputs the department headings and their posting counts.
func (p *Printer) PrintGroups(groups []jobs.Group) {
	if len(groups) == 0 {
		return
	}

	var sb strings.Builder
	for _, g := range groups {
		titles := make([]string, 0, len(g.Jobs))
		for _, job := range g.Jobs {
			titles = append(titles, job.Title)
		}
		sb.WriteString(fmt.Sprintf("%-16s %3d  %s\n", g.Key, len(g.Jobs), strings.Join(titles, ", ")))
	}

	p.printBox("BY DEPARTMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFacets outputs the filter values available across the postings.
func (p *Printer) PrintFacets(f jobs.Facets) {
	var sb strings.Builder
	rows := []struct {
		label  string
		values []string
	}{
		{"Departments", f.Departments},
		{"Types", f.EmploymentTypes},
		{"Locations", f.Locations},
		{"Companies", f.Companies},
	}
	for _, row := range rows {
		values := "-"
		if len(row.values) > 0 {
			values = strings.Join(row.values, ", ")
		}
		sb.WriteString(fmt.Sprintf("%-12s %s\n", row.label+":", values))
	}

	p.printBox("FILTER OPTIONS", strings.TrimSuffix(sb.String(), "\n"))
}
