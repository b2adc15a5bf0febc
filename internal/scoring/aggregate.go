package scoring

import (
	"math"

	"github.com/Bahjat/seo-insight/internal/model"
)

// tally accumulates points over scorable findings.
type tally struct {
	points int
	count  int
}

func (t *tally) add(f model.Finding) {
	if p, ok := f.Status.Points(); ok {
		t.points += p
		t.count++
	}
}

// value is round(100 * points / (100 * count)), which reduces to the mean
// points per finding. Halves round to even.
func (t tally) value() int {
	if t.count == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(t.points) / float64(t.count)))
}

func score(v int) model.Score {
	return model.Score{Value: v, Grade: GradeFor(v)}
}

// Aggregate scores raw findings per category and overall. Findings without a
// scorable status are ignored; a category left with none is omitted. The
// overall score is taken over every scorable finding at once, so categories
// with more findings weigh more than categories with fewer.
func Aggregate(raw model.Findings) model.AnalysisResult {
	result := model.AnalysisResult{Categories: make(map[string]model.Score)}

	var overall tally
	for category, findings := range raw {
		var t tally
		for _, f := range findings {
			t.add(f)
			overall.add(f)
		}
		if t.count > 0 {
			result.Categories[category] = score(t.value())
		}
	}

	result.Overall = score(overall.value())
	return result
}
