package exam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/prepforge/prepforge/internal/questionbank"
	syncx "github.com/prepforge/prepforge/internal/sync"
)

// Archiver persists the final grade report of a finished campaign.
// Implemented by the report package; nil disables archiving.
type Archiver interface {
	ArchiveExam(ctx context.Context, view *ExamView) error
}

// Service is the campaign orchestrator. It owns no state of its own:
// all mutations go through the Store, questions come from the pool, and
// lifecycle events land in the append-only log.
type Service struct {
	store    Store
	pool     *questionbank.Pool
	events   *syncx.EventRepo
	archiver Archiver
	now      Clock
	log      *slog.Logger

	totalDays       int
	questionsPerDay int
}

type Option func(*Service)

// WithClock overrides wall-clock time, used by tests to drive deadlines.
func WithClock(c Clock) Option { return func(s *Service) { s.now = c } }

// WithEvents enables lifecycle event logging.
func WithEvents(r *syncx.EventRepo) Option { return func(s *Service) { s.events = r } }

// WithArchiver enables grade report archiving on campaign completion.
func WithArchiver(a Archiver) Option { return func(s *Service) { s.archiver = a } }

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

// WithCampaign overrides the campaign shape (days, questions per day).
func WithCampaign(totalDays, questionsPerDay int) Option {
	return func(s *Service) {
		s.totalDays = totalDays
		s.questionsPerDay = questionsPerDay
	}
}

func NewService(store Store, pool *questionbank.Pool, opts ...Option) *Service {
	s := &Service{
		store:           store,
		pool:            pool,
		now:             time.Now,
		log:             slog.Default(),
		totalDays:       7,
		questionsPerDay: 40,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateExam builds a new campaign for the user: one subject per day,
// day 1 available and the rest locked. The one-live-exam-per-user rule
// is enforced inside the store's insert transaction.
func (s *Service) CreateExam(ctx context.Context, userID string, subjectIDs []string) (*ExamView, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	if len(subjectIDs) != s.totalDays {
		return nil, fmt.Errorf("%w: need exactly %d subject ids, got %d",
			ErrInvalidArgument, s.totalDays, len(subjectIDs))
	}
	for _, sub := range subjectIDs {
		ok, err := s.pool.SubjectExists(ctx, sub)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: subject %s", ErrNotFound, sub)
		}
	}

	now := s.now().UTC()
	e := Exam{
		ID:              uuid.NewString(),
		UserID:          userID,
		Status:          ExamNotStarted,
		TotalDays:       s.totalDays,
		QuestionsPerDay: s.questionsPerDay,
		CurrentDay:      1,
		StartedAt:       now,
		CreatedAt:       now,
	}
	days := make([]ExamDay, 0, s.totalDays)
	for i, sub := range subjectIDs {
		status := DayLocked
		if i == 0 {
			status = DayAvailable
		}
		days = append(days, ExamDay{
			ExamID:    e.ID,
			DayNumber: i + 1,
			SubjectID: sub,
			Status:    status,
		})
	}

	if err := s.store.InsertExam(ctx, e, days); err != nil {
		return nil, err
	}
	s.emit(ctx, syncx.TypeExamCreated, e.ID, map[string]any{
		"user_id": userID, "total_days": s.totalDays,
	})
	s.log.Info("exam created", "exam_id", e.ID, "user_id", userID)
	return s.store.GetExamView(ctx, e.ID, userID)
}

// GetExam reconciles the exam against the clock, then returns it with
// days, the active session and all result snapshots.
func (s *Service) GetExam(ctx context.Context, examID, userID string) (*ExamView, error) {
	if err := s.lazySweep(ctx, examID); err != nil {
		return nil, err
	}
	return s.store.GetExamView(ctx, examID, userID)
}

func (s *Service) ListUserExams(ctx context.Context, userID string) ([]Exam, error) {
	return s.store.ListUserExams(ctx, userID)
}

// StartDayResult is what StartDay hands back: the fresh session, the
// question set (correct options stripped) and the minutes remaining
// until the day's deadline.
type StartDayResult struct {
	Session         *Session                `json:"session"`
	Questions       []questionbank.Question `json:"questions"`
	DurationMinutes int                     `json:"duration_minutes"`
}

// StartDay opens an AVAILABLE day. The question set is fetched before
// any write: if the pool cannot supply the full count the day stays
// AVAILABLE and no session exists.
func (s *Service) StartDay(ctx context.Context, examID string, dayNumber int, userID string) (*StartDayResult, error) {
	if dayNumber < 1 || dayNumber > s.totalDays {
		return nil, fmt.Errorf("%w: day number %d out of range [1,%d]",
			ErrInvalidArgument, dayNumber, s.totalDays)
	}
	if err := s.lazySweep(ctx, examID); err != nil {
		return nil, err
	}

	view, err := s.store.GetExamView(ctx, examID, userID)
	if err != nil {
		return nil, err
	}
	var day *ExamDay
	for i := range view.Days {
		if view.Days[i].DayNumber == dayNumber {
			day = &view.Days[i]
			break
		}
	}
	if day == nil {
		return nil, fmt.Errorf("%w: day %d", ErrNotFound, dayNumber)
	}
	// State check before the pool fetch: a locked or finished day must
	// report its state, not the pool's content level. The store repeats
	// the check under its own lock.
	if day.Status != DayAvailable {
		return nil, stateErr(fmt.Sprintf("day %d", dayNumber), day.Status, DayAvailable)
	}

	required := view.Exam.QuestionsPerDay
	questions, err := s.pool.FetchForSubject(ctx, day.SubjectID, required)
	if err != nil {
		if errors.Is(err, questionbank.ErrUnknownSubject) {
			return nil, fmt.Errorf("%w: subject %s", ErrNotFound, day.SubjectID)
		}
		return nil, err
	}
	if len(questions) < required {
		return nil, fmt.Errorf("%w: subject %s has %d active questions, need %d",
			ErrInsufficientContent, day.SubjectID, len(questions), required)
	}

	qids := make([]string, len(questions))
	for i, q := range questions {
		qids[i] = q.ID
	}
	now := s.now().UTC()
	sess, err := s.store.StartDay(ctx, examID, dayNumber, userID, qids, now)
	if err != nil {
		return nil, err
	}

	minutes := int(view.Exam.Deadline(dayNumber).Sub(now).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	s.emit(ctx, syncx.TypeDayStarted, examID, map[string]any{
		"day_number": dayNumber, "session_id": sess.ID,
	})
	s.log.Info("day started", "exam_id", examID, "day", dayNumber, "session_id", sess.ID)
	return &StartDayResult{Session: sess, Questions: questions, DurationMinutes: minutes}, nil
}

// RecordAnswer grades one answer server-side and writes it into the
// session. Correctness is never returned to the caller while the day is
// still in progress.
func (s *Service) RecordAnswer(ctx context.Context, sessionID, userID, questionID, selectedOption string, timeSpentSec int) error {
	if sessionID == "" || questionID == "" || selectedOption == "" {
		return fmt.Errorf("%w: session, question and selected option are required", ErrInvalidArgument)
	}
	if timeSpentSec < 0 {
		timeSpentSec = 0
	}
	key, err := s.pool.CorrectOption(ctx, questionID)
	if err != nil {
		if errors.Is(err, questionbank.ErrUnknownQuestion) {
			return fmt.Errorf("%w: question %s", ErrNotFound, questionID)
		}
		return err
	}
	return s.store.RecordAnswer(ctx, sessionID, userID, questionID, selectedOption, selectedOption == key, timeSpentSec)
}

// CompleteDay grades and freezes an in-progress day, unlocks the next
// one and finalizes the campaign after the last day.
func (s *Service) CompleteDay(ctx context.Context, examID string, dayNumber int, sessionID, userID string) (*CompleteDayOutcome, error) {
	if dayNumber < 1 || dayNumber > s.totalDays {
		return nil, fmt.Errorf("%w: day number %d out of range [1,%d]",
			ErrInvalidArgument, dayNumber, s.totalDays)
	}
	if err := s.lazySweep(ctx, examID); err != nil {
		return nil, err
	}

	outcome, err := s.store.CompleteDay(ctx, examID, dayNumber, sessionID, userID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.emit(ctx, syncx.TypeDayCompleted, examID, map[string]any{
		"day_number": dayNumber, "score": outcome.Day.Score, "grade": outcome.Day.Grade,
	})
	s.log.Info("day completed", "exam_id", examID, "day", dayNumber,
		"score", outcome.Day.Score, "grade", outcome.Day.Grade)

	if outcome.Progress.IsComplete {
		s.emit(ctx, syncx.TypeExamCompleted, examID, map[string]any{
			"overall_score": outcome.Progress.OverallScore,
		})
		s.archive(ctx, examID)
	}
	return outcome, nil
}

func (s *Service) PauseExam(ctx context.Context, examID, userID string) (*Exam, error) {
	e, err := s.store.PauseExam(ctx, examID, userID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, syncx.TypeExamPaused, examID, nil)
	return e, nil
}

func (s *Service) ResumeExam(ctx context.Context, examID, userID string) (*Exam, error) {
	e, err := s.store.ResumeExam(ctx, examID, userID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, syncx.TypeExamResumed, examID, nil)
	return e, nil
}

func (s *Service) DeleteExam(ctx context.Context, examID, userID string) error {
	if err := s.store.DeleteExam(ctx, examID, userID); err != nil {
		return err
	}
	s.emit(ctx, syncx.TypeExamDeleted, examID, map[string]any{"user_id": userID})
	return nil
}

// SweepExam reconciles one exam against the clock: overdue days go
// MISSED, unlocks cascade and a fully-terminal exam is finalized.
func (s *Service) SweepExam(ctx context.Context, examID string) (*SweepOutcome, error) {
	outcome, err := s.store.SweepExam(ctx, examID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for _, d := range outcome.Missed {
		s.emit(ctx, syncx.TypeDayMissed, examID, map[string]any{
			"day_number": d.DayNumber, "unlocked_next": d.UnlockedNext,
		})
		s.log.Info("day missed", "exam_id", examID, "day", d.DayNumber)
	}
	if outcome.Finalized {
		view, err := s.store.AdminExamView(ctx, examID)
		if err != nil {
			return nil, err
		}
		typ := syncx.TypeExamCompleted
		if view.Exam.Status == ExamAbandoned {
			typ = syncx.TypeExamAbandoned
		}
		s.emit(ctx, typ, examID, map[string]any{"overall_score": view.Exam.OverallScore})
		// No report for abandoned campaigns: a report exists exactly when
		// the exam completed.
		if view.Exam.Status == ExamCompleted {
			s.archiveView(ctx, view)
		}
	}
	return outcome, nil
}

// lazySweep is the on-read reconciliation pass. A missing exam is not an
// error here: the following read reports NotFound with the ownership
// check applied.
func (s *Service) lazySweep(ctx context.Context, examID string) error {
	_, err := s.SweepExam(ctx, examID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) archive(ctx context.Context, examID string) {
	if s.archiver == nil {
		return
	}
	view, err := s.store.AdminExamView(ctx, examID)
	if err != nil {
		s.log.Error("load exam for report", "exam_id", examID, "err", err)
		return
	}
	s.archiveView(ctx, view)
}

// archiveView writes the grade report. Failures are logged, not fatal:
// reports are derived from snapshots and can be rebuilt.
func (s *Service) archiveView(ctx context.Context, view *ExamView) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.ArchiveExam(ctx, view); err != nil {
		s.log.Error("archive grade report", "exam_id", view.Exam.ID, "err", err)
	}
}

func (s *Service) emit(ctx context.Context, typ, examID string, data map[string]any) {
	if s.events == nil {
		return
	}
	payload := "{}"
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}
	if err := s.events.Append(ctx, syncx.Event{Type: typ, Key: examID, DataJSON: payload}); err != nil {
		s.log.Warn("append event", "type", typ, "exam_id", examID, "err", err)
	}
}
