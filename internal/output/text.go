package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/Bahjat/seo-insight/internal/model"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

// RenderReportText writes a human-readable report: the overall grade, one line
// per scored category, then every finding grouped by category with the most
// severe first.
func RenderReportText(w io.Writer, report *model.Report) error {
	tw := &textWriter{w: w}

	overall := report.Results.Overall
	tw.printf("%s%sSEO Report%s %s\n", colorBold, colorCyan, colorReset, report.URL)
	if report.Cached {
		tw.printf("%s(cached result from %s)%s\n", colorDim, report.AnalyzedAt.Format("2006-01-02 15:04:05 MST"), colorReset)
	}
	tw.printf("\n  Overall: %s%d/100 %s%s\n\n", scoreColor(overall.Value), overall.Value, overall.Grade.Label, colorReset)

	categories := sortedKeys(report.RawResults)

	tw.printf("%s%sCategories%s\n\n", colorBold, colorCyan, colorReset)
	for _, name := range categories {
		s, ok := report.Results.Categories[name]
		if !ok {
			tw.printf("  %-18s %snot scored%s\n", name, colorDim, colorReset)
			continue
		}
		tw.printf("  %-18s %s%3d %s%s\n", name, scoreColor(s.Value), s.Value, s.Grade.Label, colorReset)
	}
	tw.printf("\n")

	tw.printf("%s%sFindings%s\n", colorBold, colorCyan, colorReset)
	for _, name := range categories {
		findings := report.RawResults[name]
		if len(findings) == 0 {
			continue
		}
		tw.printf("\n  %s%s%s\n", colorBold, name, colorReset)
		for _, f := range model.SortBySeverity(findings) {
			label, color := statusFormat(f.Status)
			tw.printf("  %s%-8s%s %s\n", color, label, colorReset, f.Message)
			if f.Details != "" {
				tw.printf("  %s→ %s%s\n", colorDim, f.Details, colorReset)
			}
		}
	}

	return tw.err
}

func sortedKeys(raw model.Findings) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func statusFormat(s model.Status) (string, string) {
	switch s {
	case model.StatusError:
		return "ERROR", colorRed
	case model.StatusWarning:
		return "WARNING", colorYellow
	case model.StatusGood:
		return "GOOD", colorGreen
	default:
		return "INFO", colorCyan
	}
}

func scoreColor(v int) string {
	switch {
	case v >= 80:
		return colorGreen
	case v >= 50:
		return colorYellow
	default:
		return colorRed
	}
}
