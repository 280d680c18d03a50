// Package grading holds the pure scoring functions for exam days and
// campaigns. Everything here is deterministic and side-effect free so
// results can be recomputed from snapshots at any time.
package grading

import "math"

// Score returns correct/total as a percentage rounded to two decimal
// places. A day with no questions scores zero.
func Score(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round2(float64(correct) / float64(total) * 100)
}

// Letter maps a percentage score to a letter grade. Bounds are
// inclusive: 90 is an A, 89.99 a B.
func Letter(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Outcome is the minimal per-day view the campaign rollup needs.
type Outcome struct {
	QuestionCount int
	AnsweredCount int
	CorrectCount  int
}

// Rollup recomputes campaign totals from per-day outcomes. The overall
// score is the sum of correct answers over the sum of question counts,
// never an average of per-day percentages.
func Rollup(outcomes []Outcome) (answered, correct int, overall float64) {
	total := 0
	for _, o := range outcomes {
		total += o.QuestionCount
		answered += o.AnsweredCount
		correct += o.CorrectCount
	}
	return answered, correct, Score(correct, total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
