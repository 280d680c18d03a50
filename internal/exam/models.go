package exam

import "time"

// ExamStatus is the lifecycle state of the overall campaign.
type ExamStatus string

const (
	ExamNotStarted ExamStatus = "not_started"
	ExamInProgress ExamStatus = "in_progress"
	ExamPaused     ExamStatus = "paused"
	ExamCompleted  ExamStatus = "completed"
	ExamAbandoned  ExamStatus = "abandoned"
)

// Live reports whether the status still counts against the
// one-active-exam-per-user rule.
func (s ExamStatus) Live() bool {
	return s == ExamNotStarted || s == ExamInProgress || s == ExamPaused
}

// Terminal reports whether the status admits no further transitions.
func (s ExamStatus) Terminal() bool {
	return s == ExamCompleted || s == ExamAbandoned
}

// DayStatus is the lifecycle state of a single exam day.
type DayStatus string

const (
	DayLocked     DayStatus = "locked"
	DayAvailable  DayStatus = "available"
	DayInProgress DayStatus = "in_progress"
	DayCompleted  DayStatus = "completed"
	DayMissed     DayStatus = "missed"
)

// Terminal reports whether the day can never change status again.
func (s DayStatus) Terminal() bool {
	return s == DayCompleted || s == DayMissed
}

// Exam is the campaign aggregate root: one subject per day across
// TotalDays days, unlocking sequentially from day 1.
type Exam struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Status          ExamStatus `json:"status"`
	TotalDays       int        `json:"total_days"`
	QuestionsPerDay int        `json:"questions_per_day"`
	CurrentDay      int        `json:"current_day"`

	// Cumulative totals, always recomputed from subject_results.
	QuestionsAnswered int     `json:"questions_answered"`
	CorrectAnswers    int     `json:"correct_answers"`
	OverallScore      float64 `json:"overall_score"`

	StartedAt   time.Time  `json:"started_at"` // campaign start; deadlines anchor here
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Deadline returns the absolute cutoff for a day. Each day's 24-hour
// window is measured from the campaign start, not from when the user
// opened the day.
func (e Exam) Deadline(dayNumber int) time.Time {
	return e.StartedAt.Add(time.Duration(dayNumber) * 24 * time.Hour)
}

// ExamDay is one single-subject unit of the campaign, owned by exactly
// one exam and unique per (exam_id, day_number).
type ExamDay struct {
	ExamID    string    `json:"exam_id"`
	DayNumber int       `json:"day_number"`
	SubjectID string    `json:"subject_id"`
	Status    DayStatus `json:"status"`
	SessionID string    `json:"session_id,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	QuestionCount int     `json:"question_count"`
	CorrectCount  int     `json:"correct_count"`
	Score         float64 `json:"score"`
	Grade         string  `json:"grade,omitempty"`
}

// Session is the live answer sheet for a day while it is in progress.
// It is created when the day starts and read-only once the day ends.
type Session struct {
	ID            string    `json:"id"`
	ExamID        string    `json:"exam_id"`
	UserID        string    `json:"user_id"`
	SubjectID     string    `json:"subject_id"`
	QuestionCount int       `json:"question_count"`
	StartedAt     time.Time `json:"started_at"`

	Answers []Answer `json:"answers,omitempty"`
}

// Answer is one per-question record inside a session. SelectedOption and
// Correct stay nil until the user answers the question.
type Answer struct {
	SessionID      string `json:"-"`
	QuestionID     string `json:"question_id"`
	Position       int    `json:"position"`
	SelectedOption *string `json:"selected_option,omitempty"`
	Correct        *bool   `json:"correct,omitempty"`
	TimeSpentSec   int     `json:"time_spent_sec"`
}

// SubjectResult is the immutable per-day snapshot written when a day
// completes or is forced missed. Cumulative totals and the final grade
// report are derived from these rows, never from live session data.
type SubjectResult struct {
	ID            string    `json:"id"`
	ExamID        string    `json:"exam_id"`
	SubjectID     string    `json:"subject_id"`
	DayNumber     int       `json:"day_number"`
	QuestionCount int       `json:"question_count"`
	AnsweredCount int       `json:"answered_count"`
	CorrectCount  int       `json:"correct_count"`
	Score         float64   `json:"score"`
	Grade         string    `json:"grade"`
	TimeTakenSec  int       `json:"time_taken_sec"`
	Answers       []AnswerSnapshot `json:"answers"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnswerSnapshot is a frozen copy of one question/answer pair, including
// the correct option so later question edits cannot alter history.
type AnswerSnapshot struct {
	QuestionID     string  `json:"question_id"`
	SelectedOption *string `json:"selected_option,omitempty"`
	CorrectOption  string  `json:"correct_option"`
	Correct        *bool   `json:"correct,omitempty"`
	TimeSpentSec   int     `json:"time_spent_sec"`
}

// ExamView is an exam joined with its days, live sessions and snapshots,
// as returned by GetExam.
type ExamView struct {
	Exam    Exam            `json:"exam"`
	Days    []ExamDay       `json:"days"`
	Session *Session        `json:"session,omitempty"` // session of the in-progress day, if any
	Results []SubjectResult `json:"results,omitempty"`
}

// Progress summarizes how far the campaign has advanced.
type Progress struct {
	CompletedDays int     `json:"completed_days"`
	MissedDays    int     `json:"missed_days"`
	TotalDays     int     `json:"total_days"`
	OverallScore  float64 `json:"overall_score"`
	IsComplete    bool    `json:"is_complete"`
}

// DayResult is what CompleteDay returns for the day just finished.
type DayResult struct {
	DayNumber     int     `json:"day_number"`
	SubjectID     string  `json:"subject_id"`
	QuestionCount int     `json:"question_count"`
	AnsweredCount int     `json:"answered_count"`
	CorrectCount  int     `json:"correct_count"`
	Score         float64 `json:"score"`
	Grade         string  `json:"grade"`
	TimeTakenSec  int     `json:"time_taken_sec"`
}

// CompleteDayOutcome bundles the completed day, the newly unlocked day
// (nil after the last day) and the campaign progress.
type CompleteDayOutcome struct {
	Day      DayResult `json:"day_result"`
	NextDay  *ExamDay  `json:"next_day,omitempty"`
	Progress Progress  `json:"exam_progress"`
}

// SweptDay records one deadline-forced transition made by the sweeper.
type SweptDay struct {
	DayNumber    int  `json:"day_number"`
	UnlockedNext bool `json:"unlocked_next"`
}

// SweepOutcome is the result of reconciling one exam against the clock.
type SweepOutcome struct {
	ExamID    string     `json:"exam_id"`
	Missed    []SweptDay `json:"missed,omitempty"`
	Finalized bool       `json:"finalized"`
}
