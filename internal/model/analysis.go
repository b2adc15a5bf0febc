package model

import (
	"maps"
	"slices"
	"sort"
	"time"
)

// Status is the verdict a single check emits.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

// Severity orders statuses for display: error > warning > info > good.
func (s Status) Severity() int {
	switch s {
	case StatusError:
		return 3
	case StatusWarning:
		return 2
	case StatusInfo:
		return 1
	default:
		return 0
	}
}

// Points returns the score contribution of s. The second result is false for
// statuses that are displayed but never scored, such as info.
func (s Status) Points() (int, bool) {
	switch s {
	case StatusGood:
		return 100, true
	case StatusWarning:
		return 50, true
	case StatusError:
		return 0, true
	default:
		return 0, false
	}
}

// Finding is one check's verdict.
type Finding struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// Findings groups raw findings by category name.
type Findings map[string][]Finding

// Clone returns a copy of f that shares no slices with it.
func (f Findings) Clone() Findings {
	if f == nil {
		return nil
	}
	out := make(Findings, len(f))
	for category, list := range f {
		out[category] = slices.Clone(list)
	}
	return out
}

// SortBySeverity returns a copy of findings ordered from most to least severe.
// The input slice is left untouched.
func SortBySeverity(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Status.Severity() > out[j].Status.Severity()
	})
	return out
}

// Grade is the label/colour pair derived from a numeric score.
type Grade struct {
	Label string `json:"grade"`
	Color string `json:"color"`
}

// Score is a 0-100 value and its grade.
type Score struct {
	Value int   `json:"score"`
	Grade Grade `json:"grade"`
}

// AnalysisResult holds the overall score and one score per scored category.
type AnalysisResult struct {
	Overall    Score            `json:"overall"`
	Categories map[string]Score `json:"categories"`
}

// Clone returns a copy of r with its own category map.
func (r AnalysisResult) Clone() AnalysisResult {
	r.Categories = maps.Clone(r.Categories)
	return r
}

// Report is the complete result of analyzing a web page: the lossy scores and
// the raw findings they were computed from.
type Report struct {
	URL        string         `json:"url"`
	Results    AnalysisResult `json:"results"`
	RawResults Findings       `json:"raw_results"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
	Cached     bool           `json:"cached"`
}

// ErrorResponse is the JSON shape returned on failure.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}
