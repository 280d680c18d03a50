package grading

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    float64
	}{
		{"perfect", 40, 40, 100},
		{"zero", 0, 40, 0},
		{"two decimals", 27, 40, 67.5},
		{"repeating decimal rounds", 1, 3, 33.33},
		{"rounds half up", 5, 8, 62.5},
		{"empty day", 0, 0, 0},
		{"one of seven", 1, 7, 14.29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.correct, tt.total); got != tt.want {
				t.Errorf("Score(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
			}
		})
	}
}

func TestLetter(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A"},
		{90, "A"},
		{89.99, "B"},
		{80, "B"},
		{79.99, "C"},
		{70, "C"},
		{60, "D"},
		{59.99, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		if got := Letter(tt.score); got != tt.want {
			t.Errorf("Letter(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestRollup(t *testing.T) {
	outcomes := []Outcome{
		{QuestionCount: 40, AnsweredCount: 40, CorrectCount: 40}, // 100%
		{QuestionCount: 40, AnsweredCount: 30, CorrectCount: 20}, // 50%
		{QuestionCount: 40, AnsweredCount: 0, CorrectCount: 0},   // never started, missed
	}
	answered, correct, overall := Rollup(outcomes)
	if answered != 70 {
		t.Errorf("answered = %d, want 70", answered)
	}
	if correct != 60 {
		t.Errorf("correct = %d, want 60", correct)
	}
	// 60/120, not the average of the per-day percentages.
	if overall != 50 {
		t.Errorf("overall = %v, want 50", overall)
	}

	// Recomputing must not drift.
	for i := 0; i < 3; i++ {
		if _, _, again := Rollup(outcomes); again != overall {
			t.Fatalf("recompute drifted: %v != %v", again, overall)
		}
	}
}

func TestRollupEmpty(t *testing.T) {
	answered, correct, overall := Rollup(nil)
	if answered != 0 || correct != 0 || overall != 0 {
		t.Errorf("Rollup(nil) = %d, %d, %v, want zeros", answered, correct, overall)
	}
}
