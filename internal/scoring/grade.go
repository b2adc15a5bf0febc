package scoring

import "github.com/Bahjat/seo-insight/internal/model"

// Grade labels.
const (
	Excellent = "Excellent"
	Good      = "Good"
	Average   = "Average"
	Poor      = "Poor"
	VeryPoor  = "Very Poor"
	Critical  = "Critical"
)

// gradeBands are inclusive lower bounds, highest first.
var gradeBands = []struct {
	min   int
	grade model.Grade
}{
	{90, model.Grade{Label: Excellent, Color: "#2ecc71"}},
	{80, model.Grade{Label: Good, Color: "#27ae60"}},
	{70, model.Grade{Label: Average, Color: "#f1c40f"}},
	{50, model.Grade{Label: Poor, Color: "#e67e22"}},
	{30, model.Grade{Label: VeryPoor, Color: "#e74c3c"}},
}

var criticalGrade = model.Grade{Label: Critical, Color: "#c0392b"}

// GradeFor maps a score to its grade. Every integer resolves to exactly one
// grade.
func GradeFor(score int) model.Grade {
	for _, b := range gradeBands {
		if score >= b.min {
			return b.grade
		}
	}
	return criticalGrade
}
