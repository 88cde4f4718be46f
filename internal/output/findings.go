package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/panbanda/accessorlint/pkg/analyzer/accessors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FindingsReport renders an accessor check result.
type FindingsReport struct {
	Analysis *accessors.Analysis
}

// NewFindingsReport wraps analysis for rendering.
func NewFindingsReport(analysis *accessors.Analysis) *FindingsReport {
	if analysis == nil {
		analysis = &accessors.Analysis{Summary: accessors.NewSummary()}
	}
	return &FindingsReport{Analysis: analysis}
}

func (r *FindingsReport) RenderData() any {
	return r.Analysis
}

func (r *FindingsReport) RenderText(w io.Writer, colored bool) error {
	return r.report(colored).RenderText(w, colored)
}

func (r *FindingsReport) RenderMarkdown(w io.Writer) error {
	return r.report(false).RenderMarkdown(w)
}

func (r *FindingsReport) report(colored bool) *Report {
	report := &Report{Title: "Accessor Check", Data: r.Analysis}

	if len(r.Analysis.Findings) == 0 {
		report.Sections = append(report.Sections, &Section{
			Title:   "Findings",
			Content: "No accessor issues found.",
		})
	} else {
		rows := make([][]string, 0, len(r.Analysis.Findings))
		for _, f := range r.Analysis.Findings {
			kind := string(f.Kind)
			if colored {
				kind = KindColor(kind, kind)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%s:%d:%d", f.File, f.Line, f.Column),
				kind,
				f.Method,
				f.Message,
			})
		}
		report.Sections = append(report.Sections, NewTable(
			"Findings",
			[]string{"Location", "Kind", "Method", "Message"},
			rows,
			nil,
		))
	}

	report.Sections = append(report.Sections, &Section{
		Title:   "Summary",
		Content: summaryText(r.Analysis.Revision, r.Analysis.Summary),
	})
	return report
}

func summaryText(revision string, s accessors.Summary) string {
	p := message.NewPrinter(language.English)
	var lines []string
	if revision != "" {
		lines = append(lines, "Revision:            "+revision)
	}
	lines = append(lines,
		p.Sprintf("Files analyzed:      %d", s.TotalFiles),
		p.Sprintf("Methods analyzed:    %d", s.TotalMethods),
		p.Sprintf("Accessor candidates: %d", s.Candidates),
		p.Sprintf("Findings:            %d", s.TotalFindings),
	)
	if s.DegradedFiles > 0 {
		lines = append(lines, p.Sprintf("Unparsable files:    %d", s.DegradedFiles))
	}

	kinds := make([]string, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		lines = append(lines, p.Sprintf("  %-18s %d", k+":", s.ByKind[k]))
	}
	if n := s.FilesWithFindings(); n > 0 {
		lines = append(lines, p.Sprintf("Files with findings: %d", n))
	}
	return strings.Join(lines, "\n")
}
