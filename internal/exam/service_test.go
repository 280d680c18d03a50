package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/prepforge/prepforge/internal/db"
	"github.com/prepforge/prepforge/internal/questionbank"
	syncx "github.com/prepforge/prepforge/internal/sync"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeArchiver struct {
	mu    sync.Mutex
	exams []string
}

func (a *fakeArchiver) ArchiveExam(_ context.Context, view *ExamView) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exams = append(a.exams, view.Exam.ID)
	return nil
}

func (a *fakeArchiver) archived() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.exams...)
}

type testEnv struct {
	svc      *Service
	store    *SQLStore
	db       *sql.DB
	clock    *fakeClock
	events   *syncx.EventRepo
	archiver *fakeArchiver
	subjects []string
}

// newTestEnv opens a private in-memory database with the full schema, a
// seeded user per id passed, and seven subjects with enough questions
// for a questionsPerDay=5 campaign. Option "a" is always correct.
func newTestEnv(t *testing.T, userIDs ...string) *testEnv {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_txlock=immediate&_pragma=busy_timeout(5000)", uuid.NewString())
	sqlDB, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if len(userIDs) == 0 {
		userIDs = []string{"u1"}
	}
	for _, uid := range userIDs {
		seedUser(t, sqlDB, uid)
	}

	env := &testEnv{
		store:    NewSQLStore(sqlDB, "sqlite"),
		db:       sqlDB,
		clock:    newFakeClock(),
		events:   syncx.NewEventRepo(sqlDB),
		archiver: &fakeArchiver{},
	}
	for i := 1; i <= 7; i++ {
		sub := fmt.Sprintf("s%d", i)
		seedSubject(t, sqlDB, sub, 5)
		env.subjects = append(env.subjects, sub)
	}
	env.svc = NewService(env.store, questionbank.NewPool(sqlDB),
		WithClock(env.clock.Now),
		WithEvents(env.events),
		WithArchiver(env.archiver),
		WithCampaign(7, 5),
	)
	return env
}

func seedUser(t *testing.T, sqlDB *sql.DB, id string) {
	t.Helper()
	_, err := sqlDB.Exec(
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,'x','student',0)`,
		id, id)
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedSubject(t *testing.T, sqlDB *sql.DB, subjectID string, questions int) {
	t.Helper()
	_, err := sqlDB.Exec(`INSERT INTO subjects (id, name) VALUES ($1,$2)`, subjectID, subjectID)
	if err != nil {
		t.Fatalf("seed subject %s: %v", subjectID, err)
	}
	opts, _ := json.Marshal([]questionbank.Option{
		{ID: "a", Label: "first"}, {ID: "b", Label: "second"},
		{ID: "c", Label: "third"}, {ID: "d", Label: "fourth"},
	})
	for i := 1; i <= questions; i++ {
		_, err := sqlDB.Exec(
			`INSERT INTO questions (id, subject_id, prompt, options_json, correct_option, active)
			 VALUES ($1,$2,$3,$4,'a',1)`,
			fmt.Sprintf("%s-q%02d", subjectID, i), subjectID, fmt.Sprintf("question %d", i), string(opts))
		if err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
}

func mustCreate(t *testing.T, env *testEnv, userID string) *ExamView {
	t.Helper()
	view, err := env.svc.CreateExam(context.Background(), userID, env.subjects)
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	return view
}

// startAndAnswer opens a day and answers the given number of questions,
// the first `correct` of them with the right option.
func startAndAnswer(t *testing.T, env *testEnv, examID string, day int, userID string, answered, correct int) *Session {
	t.Helper()
	ctx := context.Background()
	res, err := env.svc.StartDay(ctx, examID, day, userID)
	if err != nil {
		t.Fatalf("StartDay %d: %v", day, err)
	}
	for i := 0; i < answered; i++ {
		opt := "a"
		if i >= correct {
			opt = "b"
		}
		if err := env.svc.RecordAnswer(ctx, res.Session.ID, userID, res.Questions[i].ID, opt, 30); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}
	return res.Session
}

func TestCreateExamInitialLayout(t *testing.T) {
	env := newTestEnv(t)
	view := mustCreate(t, env, "u1")

	if view.Exam.Status != ExamNotStarted {
		t.Fatalf("exam status = %s, want %s", view.Exam.Status, ExamNotStarted)
	}
	if len(view.Days) != 7 {
		t.Fatalf("days = %d, want 7", len(view.Days))
	}
	for _, d := range view.Days {
		want := DayLocked
		if d.DayNumber == 1 {
			want = DayAvailable
		}
		if d.Status != want {
			t.Errorf("day %d status = %s, want %s", d.DayNumber, d.Status, want)
		}
	}
}

func TestCreateExamValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.CreateExam(ctx, "u1", env.subjects[:3]); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short subject list: err = %v, want ErrInvalidArgument", err)
	}

	bad := append(append([]string{}, env.subjects[:6]...), "nope")
	if _, err := env.svc.CreateExam(ctx, "u1", bad); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown subject: err = %v, want ErrNotFound", err)
	}
}

func TestOneLiveExamPerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")

	if _, err := env.svc.CreateExam(ctx, "u1", env.subjects); !errors.Is(err, ErrConflict) {
		t.Fatalf("second live exam: err = %v, want ErrConflict", err)
	}

	// Deleting the live exam frees the slot.
	if err := env.svc.DeleteExam(ctx, view.Exam.ID, "u1"); err != nil {
		t.Fatalf("DeleteExam: %v", err)
	}
	if _, err := env.svc.CreateExam(ctx, "u1", env.subjects); err != nil {
		t.Fatalf("create after delete: %v", err)
	}
}

func TestStartDayInsufficientContentLeavesDayUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedSubject(t, env.db, "thin", 3) // fewer than questionsPerDay=5
	subjects := append([]string{"thin"}, env.subjects[1:]...)

	view, err := env.svc.CreateExam(ctx, "u1", subjects)
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}

	_, err = env.svc.StartDay(ctx, view.Exam.ID, 1, "u1")
	if !errors.Is(err, ErrInsufficientContent) {
		t.Fatalf("StartDay: err = %v, want ErrInsufficientContent", err)
	}

	after, err := env.svc.GetExam(ctx, view.Exam.ID, "u1")
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if got := after.Days[0].Status; got != DayAvailable {
		t.Errorf("day 1 status = %s, want %s (no half-started day)", got, DayAvailable)
	}
	if after.Session != nil {
		t.Errorf("session = %+v, want none", after.Session)
	}
	var sessions int
	if err := env.db.QueryRow(`SELECT COUNT(*) FROM exam_sessions WHERE exam_id=$1`, view.Exam.ID).Scan(&sessions); err != nil {
		t.Fatal(err)
	}
	if sessions != 0 {
		t.Errorf("sessions = %d, want 0", sessions)
	}
}

func TestStartDayGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")

	if _, err := env.svc.StartDay(ctx, view.Exam.ID, 0, "u1"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("day 0: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := env.svc.StartDay(ctx, view.Exam.ID, 8, "u1"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("day 8: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := env.svc.StartDay(ctx, view.Exam.ID, 2, "u1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("locked day: err = %v, want ErrInvalidState", err)
	}

	// Starting an in-progress day again is refused.
	startAndAnswer(t, env, view.Exam.ID, 1, "u1", 0, 0)
	if _, err := env.svc.StartDay(ctx, view.Exam.ID, 1, "u1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("restart day: err = %v, want ErrInvalidState", err)
	}
}

func TestStartDayStateCheckedBeforePool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedSubject(t, env.db, "thin", 3) // fewer than questionsPerDay=5
	subjects := append([]string{env.subjects[0], "thin"}, env.subjects[2:]...)

	view, err := env.svc.CreateExam(ctx, "u1", subjects)
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}

	// Day 2 is locked and its pool is thin. The day's state decides the
	// error, not the pool.
	_, err = env.svc.StartDay(ctx, view.Exam.ID, 2, "u1")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("locked thin day: err = %v, want ErrInvalidState", err)
	}
	if errors.Is(err, ErrInsufficientContent) {
		t.Fatalf("locked thin day leaked a content error: %v", err)
	}

	// Same on a completed day.
	sess := startAndAnswer(t, env, view.Exam.ID, 1, "u1", 5, 5)
	if _, err := env.svc.CompleteDay(ctx, view.Exam.ID, 1, sess.ID, "u1"); err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}
	if _, err := env.svc.StartDay(ctx, view.Exam.ID, 1, "u1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("completed day: err = %v, want ErrInvalidState", err)
	}
}

func TestCompleteDayPerfectScoreUnlocksNext(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedSubject(t, env.db, "big", 40)
	subjects := append([]string{"big"}, env.subjects[1:]...)
	wide := NewService(env.store, questionbank.NewPool(env.db),
		WithClock(env.clock.Now), WithCampaign(7, 40))

	view, err := wide.CreateExam(ctx, "u1", subjects)
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	res, err := wide.StartDay(ctx, view.Exam.ID, 1, "u1")
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}
	if len(res.Questions) != 40 {
		t.Fatalf("questions = %d, want 40", len(res.Questions))
	}
	for _, q := range res.Questions {
		if err := wide.RecordAnswer(ctx, res.Session.ID, "u1", q.ID, "a", 20); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}

	outcome, err := wide.CompleteDay(ctx, view.Exam.ID, 1, res.Session.ID, "u1")
	if err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}
	if outcome.Day.Score != 100.00 || outcome.Day.Grade != "A" {
		t.Errorf("day result = %.2f %s, want 100.00 A", outcome.Day.Score, outcome.Day.Grade)
	}
	if outcome.NextDay == nil || outcome.NextDay.DayNumber != 2 || outcome.NextDay.Status != DayAvailable {
		t.Errorf("next day = %+v, want day 2 available", outcome.NextDay)
	}
	if outcome.Progress.CompletedDays != 1 || outcome.Progress.IsComplete {
		t.Errorf("progress = %+v, want 1 completed, not complete", outcome.Progress)
	}
}

func TestCompleteDayPartialAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")

	sess := startAndAnswer(t, env, view.Exam.ID, 1, "u1", 4, 3) // 3 right, 1 wrong, 1 skipped
	outcome, err := env.svc.CompleteDay(ctx, view.Exam.ID, 1, sess.ID, "u1")
	if err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}
	if outcome.Day.AnsweredCount != 4 || outcome.Day.CorrectCount != 3 {
		t.Errorf("answered/correct = %d/%d, want 4/3", outcome.Day.AnsweredCount, outcome.Day.CorrectCount)
	}
	if outcome.Day.Score != 60.00 || outcome.Day.Grade != "D" {
		t.Errorf("score = %.2f %s, want 60.00 D", outcome.Day.Score, outcome.Day.Grade)
	}
	if outcome.Progress.OverallScore != 60.00 {
		t.Errorf("overall = %.2f, want 60.00", outcome.Progress.OverallScore)
	}
}

func TestCompleteDaySessionMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")
	startAndAnswer(t, env, view.Exam.ID, 1, "u1", 0, 0)

	_, err := env.svc.CompleteDay(ctx, view.Exam.ID, 1, uuid.NewString(), "u1")
	if !errors.Is(err, ErrSessionMismatch) {
		t.Fatalf("err = %v, want ErrSessionMismatch", err)
	}
}

func TestCompletedDayIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")

	sess := startAndAnswer(t, env, view.Exam.ID, 1, "u1", 5, 5)
	if _, err := env.svc.CompleteDay(ctx, view.Exam.ID, 1, sess.ID, "u1"); err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}
	if _, err := env.svc.CompleteDay(ctx, view.Exam.ID, 1, sess.ID, "u1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second complete: err = %v, want ErrInvalidState", err)
	}
	if _, err := env.svc.StartDay(ctx, view.Exam.ID, 1, "u1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("restart completed day: err = %v, want ErrInvalidState", err)
	}
}

func TestFullCampaignCompletesExam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")

	var last *CompleteDayOutcome
	for day := 1; day <= 7; day++ {
		sess := startAndAnswer(t, env, view.Exam.ID, day, "u1", 5, 4)
		outcome, err := env.svc.CompleteDay(ctx, view.Exam.ID, day, sess.ID, "u1")
		if err != nil {
			t.Fatalf("CompleteDay %d: %v", day, err)
		}
		last = outcome
		env.clock.Advance(2 * time.Hour)
	}

	if last.NextDay != nil {
		t.Errorf("nextDay after day 7 = %+v, want nil", last.NextDay)
	}
	if !last.Progress.IsComplete || last.Progress.CompletedDays != 7 {
		t.Errorf("progress = %+v, want complete with 7 days", last.Progress)
	}
	// 28 of 35 correct across the campaign.
	if last.Progress.OverallScore != 80.00 {
		t.Errorf("overall = %.2f, want 80.00", last.Progress.OverallScore)
	}

	final, err := env.svc.GetExam(ctx, view.Exam.ID, "u1")
	if err != nil {
		t.Fatalf("GetExam: %v", err)
	}
	if final.Exam.Status != ExamCompleted || final.Exam.CompletedAt == nil {
		t.Errorf("exam = %s completedAt=%v, want completed with timestamp", final.Exam.Status, final.Exam.CompletedAt)
	}
	if got := env.archiver.archived(); len(got) != 1 || got[0] != view.Exam.ID {
		t.Errorf("archived = %v, want [%s]", got, view.Exam.ID)
	}

	// The slot is free again.
	if _, err := env.svc.CreateExam(ctx, "u1", env.subjects); err != nil {
		t.Errorf("create after completion: %v", err)
	}
}

func TestOwnershipReportedAsNotFound(t *testing.T) {
	env := newTestEnv(t, "u1", "u2")
	ctx := context.Background()
	view := mustCreate(t, env, "u1")

	if _, err := env.svc.GetExam(ctx, view.Exam.ID, "u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetExam as other user: err = %v, want ErrNotFound", err)
	}
	if _, err := env.svc.StartDay(ctx, view.Exam.ID, 1, "u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("StartDay as other user: err = %v, want ErrNotFound", err)
	}
	if err := env.svc.DeleteExam(ctx, view.Exam.ID, "u2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteExam as other user: err = %v, want ErrNotFound", err)
	}

	res, err := env.svc.StartDay(ctx, view.Exam.ID, 1, "u1")
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}
	err = env.svc.RecordAnswer(ctx, res.Session.ID, "u2", res.Questions[0].ID, "a", 10)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordAnswer as other user: err = %v, want ErrNotFound", err)
	}
}

func TestPauseResume(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")

	paused, err := env.svc.PauseExam(ctx, view.Exam.ID, "u1")
	if err != nil {
		t.Fatalf("PauseExam: %v", err)
	}
	if paused.Status != ExamPaused {
		t.Fatalf("status = %s, want %s", paused.Status, ExamPaused)
	}
	if _, err := env.svc.StartDay(ctx, view.Exam.ID, 1, "u1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("start while paused: err = %v, want ErrInvalidState", err)
	}
	if _, err := env.svc.PauseExam(ctx, view.Exam.ID, "u1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("pause twice: err = %v, want ErrInvalidState", err)
	}

	// Nothing started yet, so resume restores not_started.
	resumed, err := env.svc.ResumeExam(ctx, view.Exam.ID, "u1")
	if err != nil {
		t.Fatalf("ResumeExam: %v", err)
	}
	if resumed.Status != ExamNotStarted {
		t.Fatalf("status = %s, want %s", resumed.Status, ExamNotStarted)
	}

	startAndAnswer(t, env, view.Exam.ID, 1, "u1", 0, 0)
	if _, err := env.svc.PauseExam(ctx, view.Exam.ID, "u1"); err != nil {
		t.Fatalf("PauseExam: %v", err)
	}
	resumed, err = env.svc.ResumeExam(ctx, view.Exam.ID, "u1")
	if err != nil {
		t.Fatalf("ResumeExam: %v", err)
	}
	if resumed.Status != ExamInProgress {
		t.Fatalf("status after touching a day = %s, want %s", resumed.Status, ExamInProgress)
	}
}

func TestRecordAnswerGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")
	res, err := env.svc.StartDay(ctx, view.Exam.ID, 1, "u1")
	if err != nil {
		t.Fatalf("StartDay: %v", err)
	}

	if err := env.svc.RecordAnswer(ctx, res.Session.ID, "u1", "ghost", "a", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown question: err = %v, want ErrNotFound", err)
	}
	// A question that exists but is not part of the session.
	if err := env.svc.RecordAnswer(ctx, res.Session.ID, "u1", "s2-q01", "a", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("out-of-session question: err = %v, want ErrNotFound", err)
	}
	if err := env.svc.RecordAnswer(ctx, res.Session.ID, "u1", res.Questions[0].ID, "", 10); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty option: err = %v, want ErrInvalidArgument", err)
	}

	// Answering after the day completed is refused.
	if _, err := env.svc.CompleteDay(ctx, view.Exam.ID, 1, res.Session.ID, "u1"); err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}
	err = env.svc.RecordAnswer(ctx, res.Session.ID, "u1", res.Questions[0].ID, "a", 10)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("answer after completion: err = %v, want ErrInvalidState", err)
	}
}

func TestListUserExams(t *testing.T) {
	env := newTestEnv(t, "u1", "u2")
	ctx := context.Background()
	view := mustCreate(t, env, "u1")

	mine, err := env.svc.ListUserExams(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUserExams: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != view.Exam.ID {
		t.Errorf("exams = %+v, want just %s", mine, view.Exam.ID)
	}
	theirs, err := env.svc.ListUserExams(ctx, "u2")
	if err != nil {
		t.Fatalf("ListUserExams: %v", err)
	}
	if len(theirs) != 0 {
		t.Errorf("other user sees %d exams, want 0", len(theirs))
	}
}

func TestLifecycleEventsAppended(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")
	sess := startAndAnswer(t, env, view.Exam.ID, 1, "u1", 5, 5)
	if _, err := env.svc.CompleteDay(ctx, view.Exam.ID, 1, sess.ID, "u1"); err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}

	events, err := env.events.ListForKey(ctx, view.Exam.ID)
	if err != nil {
		t.Fatalf("ListForKey: %v", err)
	}
	want := []string{syncx.TypeExamCreated, syncx.TypeDayStarted, syncx.TypeDayCompleted}
	if len(events) != len(want) {
		t.Fatalf("events = %d, want %d", len(events), len(want))
	}
	for i, typ := range want {
		if events[i].Type != typ {
			t.Errorf("event %d = %s, want %s", i, events[i].Type, typ)
		}
	}
}

func TestCumulativeTotalsRecomputedFromSnapshots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	view := mustCreate(t, env, "u1")

	for day := 1; day <= 3; day++ {
		sess := startAndAnswer(t, env, view.Exam.ID, day, "u1", 5, day) // 1, 2, 3 correct
		if _, err := env.svc.CompleteDay(ctx, view.Exam.ID, day, sess.ID, "u1"); err != nil {
			t.Fatalf("CompleteDay %d: %v", day, err)
		}
	}

	// 6 of 15 correct; repeated reads must not drift the totals.
	for i := 0; i < 3; i++ {
		got, err := env.svc.GetExam(ctx, view.Exam.ID, "u1")
		if err != nil {
			t.Fatalf("GetExam: %v", err)
		}
		if got.Exam.QuestionsAnswered != 15 || got.Exam.CorrectAnswers != 6 {
			t.Fatalf("totals = %d/%d, want 15/6", got.Exam.QuestionsAnswered, got.Exam.CorrectAnswers)
		}
		if got.Exam.OverallScore != 40.00 {
			t.Fatalf("overall = %.2f, want 40.00", got.Exam.OverallScore)
		}
	}
}
