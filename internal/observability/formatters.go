// Package observability provides logging and formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/resume-site/internal/schemas"
	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
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
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintModel outputs a human-readable summary of a normalized resume.
func (p *Printer) PrintModel(m *types.ResumeModel) {
	if m == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", m.Name))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", m.Role))
	if m.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", m.Location))
	}
	if m.Slug != "" {
		sb.WriteString(fmt.Sprintf("Variant:  %s@%s\n", m.Slug, m.Version))
	}
	sb.WriteString("\n")

	switch s := m.Skills.(type) {
	case types.CategorizedSkills:
		sb.WriteString(fmt.Sprintf("Skills (%d categories):\n", len(s)))
		count := min(len(s), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", s[i].Category, strings.Join(s[i].Items, ", ")))
		}
		if len(s) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(s)-maxItemsToShow))
		}
	case types.FreeTextSkills:
		if s != "" {
			sb.WriteString(fmt.Sprintf("Skills: %s\n", string(s)))
		}
	}

	if len(m.Experience) > 0 {
		sb.WriteString(fmt.Sprintf("\nExperience (%d roles):\n", len(m.Experience)))
		count := min(len(m.Experience), maxItemsToShow)
		for i := 0; i < count; i++ {
			e := m.Experience[i]
			sb.WriteString(fmt.Sprintf("  • %s, %s", e.Title, e.Company))
			if e.Dates != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", e.Dates))
			}
			sb.WriteString("\n")
		}
		if len(m.Experience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(m.Experience)-maxItemsToShow))
		}
	}

	sb.WriteString(fmt.Sprintf("\nEducation: %d  Certifications: %d  KPIs: %d",
		len(m.Education), len(m.Certifications), len(m.KPIs)))

	p.printBox("NORMALIZED RESUME", sb.String())
}

// PrintBuildReport outputs the variants built and failed by one build.
func (p *Printer) PrintBuildReport(r *site.Report) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Build:    %s\n", r.BuildID))
	sb.WriteString(fmt.Sprintf("Default:  %s\n", r.Default))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", r.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("\nBuilt %d variant(s):\n", len(r.Built)))
	for _, ref := range r.Built {
		sb.WriteString(fmt.Sprintf("  ✓ %s\n", ref))
	}
	if len(r.Failed) > 0 {
		sb.WriteString(fmt.Sprintf("\nFailed %d variant(s):\n", len(r.Failed)))
		for _, f := range r.Failed {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", f.Variant))
			sb.WriteString(fmt.Sprintf("    %s\n", f.Message))
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\nWarnings (%d):\n", len(r.Warnings)))
		count := min(len(r.Warnings), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ! %s\n", r.Warnings[i]))
		}
		if len(r.Warnings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.Warnings)-maxItemsToShow))
		}
	}

	p.printBox("BUILD REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRegistry outputs the registered variants, marking the resolved default.
func (p *Printer) PrintRegistry(reg *types.Registry, resolved types.VariantRef) {
	if reg == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Default: %q → %s\n\n", reg.Default, resolved))
	for _, v := range reg.Variants {
		marker := " "
		if v.Ref() == resolved {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %s", marker, v.Ref()))
		if len(v.Aliases) > 0 {
			sb.WriteString(fmt.Sprintf("  [%s]", strings.Join(v.Aliases, ", ")))
		}
		sb.WriteString("\n")
	}

	p.printBox("VARIANT REGISTRY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs one line per validated file plus each violation.
func (p *Printer) PrintValidation(results []schemas.FileResult) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	for _, r := range results {
		if r.Err == nil {
			sb.WriteString(fmt.Sprintf("✓ %s\n", r.Path))
			continue
		}
		sb.WriteString(fmt.Sprintf("✗ %s\n", r.Path))
		if ve, ok := r.Err.(*schemas.ValidationError); ok {
			for _, fe := range ve.Errors {
				sb.WriteString(fmt.Sprintf("    %s: %s\n", fe.Field, fe.Message))
			}
		} else {
			sb.WriteString(fmt.Sprintf("    %v\n", r.Err))
		}
	}
	sb.WriteString(fmt.Sprintf("\n%d file(s), %d failed", len(results), schemas.Failed(results)))

	p.printBox("SCHEMA VALIDATION", sb.String())
}
