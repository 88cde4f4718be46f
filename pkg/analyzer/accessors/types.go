package accessors

import (
	"fmt"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// RuleKey identifies the accessor rule in reports.
const RuleKey = "S4275"

// Finding is one accessor whose body does not refer to its field.
type Finding struct {
	Rule   string `json:"rule" toon:"rule"`
	File   string `json:"file" toon:"file"`
	Line   int    `json:"line" toon:"line"`
	Column int    `json:"column" toon:"column"`
	// Method is the qualified method name, e.g. "Outer.Inner.getX".
	Method  string `json:"method" toon:"method"`
	Kind    Kind   `json:"kind" toon:"kind"`
	Field   string `json:"field" toon:"field"`
	Message string `json:"message" toon:"message"`
	// Fingerprint is stable across runs as long as path, method and message
	// are unchanged, so findings can be tracked while surrounding lines move.
	Fingerprint string `json:"fingerprint" toon:"fingerprint"`
}

// Analysis is the result of one accessor check run.
type Analysis struct {
	Findings   []Finding `json:"findings" toon:"findings"`
	Summary    Summary   `json:"summary" toon:"summary"`
	AnalyzedAt time.Time `json:"analyzed_at" toon:"analyzed_at"`
	// Revision names what was analyzed: the --ref revision, or the checked
	// out branch of the working tree. Empty outside a git repository.
	Revision string `json:"revision,omitempty" toon:"revision,omitempty"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalFiles    int            `json:"total_files" toon:"total_files"`
	DegradedFiles int            `json:"degraded_files" toon:"degraded_files"`
	TotalMethods  int            `json:"total_methods" toon:"total_methods"`
	Candidates    int            `json:"candidates" toon:"candidates"`
	TotalFindings int            `json:"total_findings" toon:"total_findings"`
	ByKind        map[string]int `json:"by_kind" toon:"by_kind"`
	ByFile        map[string]int `json:"by_file,omitempty" toon:"by_file,omitempty"`
}

// NewSummary creates an initialized summary.
func NewSummary() Summary {
	return Summary{
		ByKind: make(map[string]int),
		ByFile: make(map[string]int),
	}
}

// AddFinding updates the summary with a finding.
func (s *Summary) AddFinding(f Finding) {
	s.TotalFindings++
	s.ByKind[string(f.Kind)]++
	s.ByFile[f.File]++
}

// FilesWithFindings returns the number of distinct files with findings.
func (s Summary) FilesWithFindings() int {
	return len(s.ByFile)
}

// SortFindings orders findings by file, line, column and message.
func SortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Message < b.Message
	})
}

func fingerprint(path, method, message string) string {
	h := xxhash.New()
	_, _ = h.WriteString(path)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(method)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(message)
	return fmt.Sprintf("%016x", h.Sum64())
}
