package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/panbanda/accessorlint/pkg/analyzer/accessors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() *accessors.Analysis {
	findings := []accessors.Finding{
		{
			Rule:    accessors.RuleKey,
			File:    "src/A.java",
			Line:    7,
			Column:  15,
			Method:  "A.setX",
			Kind:    accessors.KindSetter,
			Field:   "x",
			Message: `Refactor this setter so that it actually refers to the field "x".`,
		},
		{
			Rule:    accessors.RuleKey,
			File:    "src/A.java",
			Line:    13,
			Column:  14,
			Method:  "A.getY",
			Kind:    accessors.KindGetter,
			Field:   "y",
			Message: `Refactor this getter so that it actually refers to the field "y".`,
		},
	}
	summary := accessors.NewSummary()
	summary.TotalFiles = 1
	summary.TotalMethods = 7
	summary.Candidates = 4
	for _, f := range findings {
		summary.AddFinding(f)
	}
	return &accessors.Analysis{
		Findings:   findings,
		Summary:    summary,
		AnalyzedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestFindingsReport_Text(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	require.NoError(t, f.Output(NewFindingsReport(sampleAnalysis())))

	out := buf.String()
	assert.Contains(t, out, "Accessor Check")
	assert.Contains(t, out, "src/A.java:7:15")
	assert.Contains(t, out, "A.getY")
	assert.Contains(t, out, `refers to the field "x"`)
	assert.Contains(t, out, "Findings:            2")
	assert.Contains(t, out, "Accessor candidates: 4")
	assert.Contains(t, out, "Files with findings: 1")
}

func TestFindingsReport_Markdown(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatMarkdown, &buf, false)
	require.NoError(t, f.Output(NewFindingsReport(sampleAnalysis())))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Accessor Check"))
	assert.Contains(t, out, "| Location | Kind | Method | Message |")
	assert.Contains(t, out, "| src/A.java:7:15 | setter | A.setX |")
	assert.Contains(t, out, "## Summary")
}

func TestFindingsReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatJSON, &buf, false)
	require.NoError(t, f.Output(NewFindingsReport(sampleAnalysis())))

	var got accessors.Analysis
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Findings, 2)
	assert.Equal(t, "A.setX", got.Findings[0].Method)
	assert.Equal(t, accessors.KindGetter, got.Findings[1].Kind)
	assert.Equal(t, 2, got.Summary.TotalFindings)
}

func TestFindingsReport_TOON(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatTOON, &buf, false)
	require.NoError(t, f.Output(NewFindingsReport(sampleAnalysis())))

	out := buf.String()
	assert.Contains(t, out, "findings")
	assert.Contains(t, out, "A.setX")
}

func TestFindingsReport_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatText, &buf, false)
	require.NoError(t, f.Output(NewFindingsReport(nil)))

	assert.Contains(t, buf.String(), "No accessor issues found.")
	assert.Contains(t, buf.String(), "Findings:            0")
}

func TestFindingsReport_DegradedFiles(t *testing.T) {
	analysis := sampleAnalysis()
	analysis.Summary.DegradedFiles = 3

	var buf bytes.Buffer
	require.NoError(t, NewFindingsReport(analysis).RenderText(&buf, false))
	assert.Contains(t, buf.String(), "Unparsable files:    3")
}

func TestSummaryText_GroupsThousands(t *testing.T) {
	summary := accessors.NewSummary()
	summary.TotalMethods = 12345
	assert.Contains(t, summaryText("", summary), "Methods analyzed:    12,345")
}

func TestFindingsReport_Revision(t *testing.T) {
	analysis := sampleAnalysis()

	var buf bytes.Buffer
	require.NoError(t, NewFindingsReport(analysis).RenderText(&buf, false))
	assert.NotContains(t, buf.String(), "Revision:")

	analysis.Revision = "main (modified)"
	buf.Reset()
	require.NoError(t, NewFindingsReport(analysis).RenderText(&buf, false))
	assert.Contains(t, buf.String(), "Revision:            main (modified)")
}
