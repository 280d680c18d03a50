package exam

import (
	"context"
	"time"
)

// Clock supplies wall-clock time. Injected so deadline logic is testable.
type Clock func() time.Time

// Store is the persistence boundary for the campaign engine. Every
// method that reads a day status and writes a new one (StartDay,
// CompleteDay, SweepExam, RecordAnswer) runs as one transaction holding
// a per-exam exclusion, so the three mutators can never interleave on
// the same day.
type Store interface {
	// InsertExam creates the exam and its day rows, enforcing the
	// one-live-exam-per-user rule inside the same transaction.
	InsertExam(ctx context.Context, e Exam, days []ExamDay) error

	// GetExamView returns the exam with days, the active session and all
	// result snapshots. Missing and not-owned exams are both ErrNotFound.
	GetExamView(ctx context.Context, examID, userID string) (*ExamView, error)

	// AdminExamView is GetExamView without the ownership filter, for the
	// sweeper and report archiving.
	AdminExamView(ctx context.Context, examID string) (*ExamView, error)

	ListUserExams(ctx context.Context, userID string) ([]Exam, error)

	// ListLiveExamIDs returns ids of exams still subject to sweeping.
	ListLiveExamIDs(ctx context.Context) ([]string, error)

	// StartDay transitions an AVAILABLE day to IN_PROGRESS and creates
	// its session with one pending answer row per question.
	StartDay(ctx context.Context, examID string, dayNumber int, userID string, questionIDs []string, now time.Time) (*Session, error)

	// RecordAnswer writes one (question, selected option, correctness)
	// triple into the session of an in-progress day.
	RecordAnswer(ctx context.Context, sessionID, userID, questionID, selected string, correct bool, timeSpentSec int) error

	// CompleteDay grades the session, snapshots a SubjectResult, marks
	// the day COMPLETED and unlocks the next day or finalizes the exam.
	CompleteDay(ctx context.Context, examID string, dayNumber int, sessionID, userID string, now time.Time) (*CompleteDayOutcome, error)

	// SweepExam forces MISSED on every non-terminal day whose deadline
	// has passed, cascading unlocks exactly as CompleteDay does. It is
	// idempotent; sweeping a terminal day or exam is a no-op.
	SweepExam(ctx context.Context, examID string, now time.Time) (*SweepOutcome, error)

	PauseExam(ctx context.Context, examID, userID string) (*Exam, error)
	ResumeExam(ctx context.Context, examID, userID string) (*Exam, error)
	DeleteExam(ctx context.Context, examID, userID string) error
}
