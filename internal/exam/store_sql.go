package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prepforge/prepforge/internal/grading"
)

// SQLStore implements Store on top of database/sql. Per-exam exclusion
// comes from SELECT ... FOR UPDATE on postgres; on sqlite the connection
// opens transactions with the immediate write lock, which serializes all
// writers.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) lockExam(ctx context.Context, tx *sql.Tx, examID string) error {
	if s.driver != "postgres" {
		return nil // sqlite txns are immediate, nothing to do
	}
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM exams WHERE id=$1 FOR UPDATE`, examID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *SQLStore) InsertExam(ctx context.Context, e Exam, days []ExamDay) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Friendly pre-check; the partial unique index is the hard guarantee.
	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM exams WHERE user_id=$1 AND status IN ($2,$3,$4) LIMIT 1`,
		e.UserID, ExamNotStarted, ExamInProgress, ExamPaused).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: exam %s", ErrConflict, existing)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO exams (id,user_id,status,total_days,questions_per_day,current_day,started_at,created_at)
		 VALUES ($1,$2,$3,$4,$5,1,$6,$7)`,
		e.ID, e.UserID, e.Status, e.TotalDays, e.QuestionsPerDay, e.StartedAt.Unix(), e.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}

	for _, d := range days {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO exam_days (exam_id,day_number,subject_id,status) VALUES ($1,$2,$3,$4)`,
			d.ExamID, d.DayNumber, d.SubjectID, d.Status)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetExamView(ctx context.Context, examID, userID string) (*ExamView, error) {
	e, err := s.loadExamOwned(ctx, s.db, examID, userID)
	if err != nil {
		return nil, err
	}
	return s.assembleView(ctx, e)
}

func (s *SQLStore) AdminExamView(ctx context.Context, examID string) (*ExamView, error) {
	e, err := s.loadExam(ctx, s.db, examID)
	if err != nil {
		return nil, err
	}
	return s.assembleView(ctx, e)
}

func (s *SQLStore) assembleView(ctx context.Context, e Exam) (*ExamView, error) {
	examID := e.ID
	days, err := s.loadDays(ctx, s.db, examID)
	if err != nil {
		return nil, err
	}
	view := &ExamView{Exam: e, Days: days}

	for _, d := range days {
		if d.Status == DayInProgress && d.SessionID != "" {
			sess, err := s.loadSession(ctx, s.db, d.SessionID)
			if err != nil {
				return nil, err
			}
			view.Session = sess
			break
		}
	}

	view.Results, err = s.loadResults(ctx, s.db, examID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *SQLStore) ListUserExams(ctx context.Context, userID string) ([]Exam, error) {
	rows, err := s.db.QueryContext(ctx,
		examSelect+` WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListLiveExamIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM exams WHERE status IN ($1,$2,$3) ORDER BY created_at`,
		ExamNotStarted, ExamInProgress, ExamPaused)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) StartDay(ctx context.Context, examID string, dayNumber int, userID string, questionIDs []string, now time.Time) (*Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.lockExam(ctx, tx, examID); err != nil {
		return nil, err
	}
	e, err := s.loadExamOwned(ctx, tx, examID, userID)
	if err != nil {
		return nil, err
	}
	if e.Status == ExamPaused || e.Status.Terminal() {
		return nil, stateErr("exam", e.Status, ExamInProgress)
	}
	day, err := s.loadDay(ctx, tx, examID, dayNumber)
	if err != nil {
		return nil, err
	}
	if day.Status != DayAvailable {
		return nil, stateErr(fmt.Sprintf("day %d", dayNumber), day.Status, DayAvailable)
	}

	sess := &Session{
		ID:            uuid.NewString(),
		ExamID:        examID,
		UserID:        userID,
		SubjectID:     day.SubjectID,
		QuestionCount: len(questionIDs),
		StartedAt:     now,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO exam_sessions (id,exam_id,user_id,subject_id,question_count,started_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		sess.ID, sess.ExamID, sess.UserID, sess.SubjectID, sess.QuestionCount, now.Unix())
	if err != nil {
		return nil, err
	}
	for i, qid := range questionIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO session_answers (session_id,question_id,position) VALUES ($1,$2,$3)`,
			sess.ID, qid, i+1)
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE exam_days SET status=$1, session_id=$2, started_at=$3, question_count=$4
		 WHERE exam_id=$5 AND day_number=$6`,
		DayInProgress, sess.ID, now.Unix(), len(questionIDs), examID, dayNumber)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE exams SET status=$1, current_day=$2 WHERE id=$3`,
		ExamInProgress, dayNumber, examID)
	if err != nil {
		return nil, err
	}
	return sess, tx.Commit()
}

func (s *SQLStore) RecordAnswer(ctx context.Context, sessionID, userID, questionID, selected string, correct bool, timeSpentSec int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var examID, owner string
	err = tx.QueryRowContext(ctx,
		`SELECT exam_id, user_id FROM exam_sessions WHERE id=$1`, sessionID).Scan(&examID, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrNotFound
	}
	if err := s.lockExam(ctx, tx, examID); err != nil {
		return err
	}

	var dayStatus DayStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM exam_days WHERE exam_id=$1 AND session_id=$2`, examID, sessionID).Scan(&dayStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if dayStatus != DayInProgress {
		return stateErr("day", dayStatus, DayInProgress)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE session_answers SET selected_option=$1, is_correct=$2, time_spent_sec=$3
		 WHERE session_id=$4 AND question_id=$5`,
		selected, correct, timeSpentSec, sessionID, questionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: question %s not in session", ErrNotFound, questionID)
	}
	return tx.Commit()
}

func (s *SQLStore) CompleteDay(ctx context.Context, examID string, dayNumber int, sessionID, userID string, now time.Time) (*CompleteDayOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.lockExam(ctx, tx, examID); err != nil {
		return nil, err
	}
	e, err := s.loadExamOwned(ctx, tx, examID, userID)
	if err != nil {
		return nil, err
	}
	day, err := s.loadDay(ctx, tx, examID, dayNumber)
	if err != nil {
		return nil, err
	}
	if day.Status != DayInProgress {
		return nil, stateErr(fmt.Sprintf("day %d", dayNumber), day.Status, DayInProgress)
	}
	if day.SessionID != sessionID {
		return nil, fmt.Errorf("%w: day %d is linked to a different session", ErrSessionMismatch, dayNumber)
	}

	var sessStarted int64
	if err := tx.QueryRowContext(ctx,
		`SELECT started_at FROM exam_sessions WHERE id=$1`, sessionID).Scan(&sessStarted); err != nil {
		return nil, err
	}

	snaps, answered, correct, err := s.snapshotAnswers(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	score := grading.Score(correct, day.QuestionCount)
	grade := grading.Letter(score)
	timeTaken := int(now.Unix() - sessStarted)
	if timeTaken < 0 {
		timeTaken = 0
	}

	result := SubjectResult{
		ID:            uuid.NewString(),
		ExamID:        examID,
		SubjectID:     day.SubjectID,
		DayNumber:     dayNumber,
		QuestionCount: day.QuestionCount,
		AnsweredCount: answered,
		CorrectCount:  correct,
		Score:         score,
		Grade:         grade,
		TimeTakenSec:  timeTaken,
		Answers:       snaps,
	}
	if err := s.insertResult(ctx, tx, result, now); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE exam_days SET status=$1, completed_at=$2, correct_count=$3, score=$4, grade=$5
		 WHERE exam_id=$6 AND day_number=$7`,
		DayCompleted, now.Unix(), correct, score, grade, examID, dayNumber)
	if err != nil {
		return nil, err
	}

	outcome := &CompleteDayOutcome{Day: DayResult{
		DayNumber:     dayNumber,
		SubjectID:     day.SubjectID,
		QuestionCount: day.QuestionCount,
		AnsweredCount: answered,
		CorrectCount:  correct,
		Score:         score,
		Grade:         grade,
		TimeTakenSec:  timeTaken,
	}}

	if dayNumber < e.TotalDays {
		next, unlocked, err := s.unlockNext(ctx, tx, examID, dayNumber)
		if err != nil {
			return nil, err
		}
		if unlocked {
			if _, err := tx.ExecContext(ctx,
				`UPDATE exams SET current_day=$1 WHERE id=$2`, dayNumber+1, examID); err != nil {
				return nil, err
			}
		}
		outcome.NextDay = next
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE exams SET status=$1, completed_at=$2 WHERE id=$3`,
			ExamCompleted, now.Unix(), examID)
		if err != nil {
			return nil, err
		}
	}

	progress, err := s.recomputeTotals(ctx, tx, examID)
	if err != nil {
		return nil, err
	}
	outcome.Progress = *progress

	return outcome, tx.Commit()
}

func (s *SQLStore) SweepExam(ctx context.Context, examID string, now time.Time) (*SweepOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.lockExam(ctx, tx, examID); err != nil {
		return nil, err
	}
	e, err := s.loadExam(ctx, tx, examID)
	if err != nil {
		return nil, err
	}
	outcome := &SweepOutcome{ExamID: examID}
	if e.Status.Terminal() {
		return outcome, tx.Commit()
	}

	days, err := s.loadDays(ctx, tx, examID)
	if err != nil {
		return nil, err
	}

	// Indexed loop so an unlock feeds the next iteration: a far-overdue
	// campaign cascades LOCKED -> AVAILABLE -> MISSED through every day
	// in a single pass.
	for i := range days {
		day := days[i]
		if day.Status != DayAvailable && day.Status != DayInProgress {
			continue
		}
		if !now.After(e.Deadline(day.DayNumber)) {
			continue
		}
		if err := s.forceMissed(ctx, tx, e, day, now); err != nil {
			return nil, err
		}
		swept := SweptDay{DayNumber: day.DayNumber}
		if day.DayNumber < e.TotalDays {
			next, unlocked, err := s.unlockNext(ctx, tx, examID, day.DayNumber)
			if err != nil {
				return nil, err
			}
			if unlocked {
				swept.UnlockedNext = true
				if _, err := tx.ExecContext(ctx,
					`UPDATE exams SET current_day=$1 WHERE id=$2`, day.DayNumber+1, examID); err != nil {
					return nil, err
				}
			}
			if i+1 < len(days) && days[i+1].DayNumber == next.DayNumber {
				days[i+1] = *next
			}
		}
		outcome.Missed = append(outcome.Missed, swept)
	}

	if len(outcome.Missed) == 0 {
		return outcome, tx.Commit()
	}

	if _, err := s.recomputeTotals(ctx, tx, examID); err != nil {
		return nil, err
	}

	finalized, err := s.finalizeIfDone(ctx, tx, examID, now)
	if err != nil {
		return nil, err
	}
	outcome.Finalized = finalized

	return outcome, tx.Commit()
}

// forceMissed marks one overdue day MISSED, keeping whatever answers were
// recorded and snapshotting them so the campaign rollup stays uniform.
func (s *SQLStore) forceMissed(ctx context.Context, tx *sql.Tx, e Exam, day ExamDay, now time.Time) error {
	var snaps []AnswerSnapshot
	var answered, correct int
	var err error
	if day.SessionID != "" {
		snaps, answered, correct, err = s.snapshotAnswers(ctx, tx, day.SessionID)
		if err != nil {
			return err
		}
	}
	// A day that was never started still counts its full planned question
	// load in the campaign denominator.
	total := day.QuestionCount
	if total == 0 {
		total = e.QuestionsPerDay
	}
	score := grading.Score(correct, total)
	grade := grading.Letter(score)

	result := SubjectResult{
		ID:            uuid.NewString(),
		ExamID:        e.ID,
		SubjectID:     day.SubjectID,
		DayNumber:     day.DayNumber,
		QuestionCount: total,
		AnsweredCount: answered,
		CorrectCount:  correct,
		Score:         score,
		Grade:         grade,
		Answers:       snaps,
	}
	if err := s.insertResult(ctx, tx, result, now); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE exam_days SET status=$1, question_count=$2, correct_count=$3, score=$4, grade=$5
		 WHERE exam_id=$6 AND day_number=$7`,
		DayMissed, total, correct, score, grade, e.ID, day.DayNumber)
	return err
}

// finalizeIfDone terminates the exam once every day is COMPLETED or
// MISSED. An exam where the user never opened a single day ends as
// abandoned rather than completed.
func (s *SQLStore) finalizeIfDone(ctx context.Context, tx *sql.Tx, examID string, now time.Time) (bool, error) {
	var open int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exam_days WHERE exam_id=$1 AND status NOT IN ($2,$3)`,
		examID, DayCompleted, DayMissed).Scan(&open)
	if err != nil {
		return false, err
	}
	if open > 0 {
		return false, nil
	}

	var engaged int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exam_sessions WHERE exam_id=$1`, examID).Scan(&engaged)
	if err != nil {
		return false, err
	}
	final := ExamCompleted
	if engaged == 0 {
		final = ExamAbandoned
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE exams SET status=$1, completed_at=$2 WHERE id=$3`, final, now.Unix(), examID)
	return err == nil, err
}

func (s *SQLStore) PauseExam(ctx context.Context, examID, userID string) (*Exam, error) {
	return s.transition(ctx, examID, userID, func(e Exam) (ExamStatus, error) {
		if e.Status != ExamNotStarted && e.Status != ExamInProgress {
			return "", stateErr("exam", e.Status, ExamInProgress)
		}
		return ExamPaused, nil
	})
}

func (s *SQLStore) ResumeExam(ctx context.Context, examID, userID string) (*Exam, error) {
	return s.transition(ctx, examID, userID, func(e Exam) (ExamStatus, error) {
		if e.Status != ExamPaused {
			return "", stateErr("exam", e.Status, ExamPaused)
		}
		return "", nil // resolved after inspecting the days
	})
}

// transition runs a guarded exam-status change under the per-exam lock.
// A guard returning an empty status means "resume": restore in_progress
// when any day has been touched, not_started otherwise.
func (s *SQLStore) transition(ctx context.Context, examID, userID string, guard func(Exam) (ExamStatus, error)) (*Exam, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.lockExam(ctx, tx, examID); err != nil {
		return nil, err
	}
	e, err := s.loadExamOwned(ctx, tx, examID, userID)
	if err != nil {
		return nil, err
	}
	next, err := guard(e)
	if err != nil {
		return nil, err
	}
	if next == "" {
		var touched int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM exam_days WHERE exam_id=$1 AND status IN ($2,$3,$4)`,
			examID, DayInProgress, DayCompleted, DayMissed).Scan(&touched)
		if err != nil {
			return nil, err
		}
		next = ExamNotStarted
		if touched > 0 {
			next = ExamInProgress
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE exams SET status=$1 WHERE id=$2`, next, examID); err != nil {
		return nil, err
	}
	e.Status = next
	return &e, tx.Commit()
}

func (s *SQLStore) DeleteExam(ctx context.Context, examID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.lockExam(ctx, tx, examID); err != nil {
		return err
	}
	if _, err := s.loadExamOwned(ctx, tx, examID, userID); err != nil {
		return err
	}

	// Children before parents; works with or without FK cascade support.
	stmts := []string{
		`DELETE FROM session_answers WHERE session_id IN (SELECT id FROM exam_sessions WHERE exam_id=$1)`,
		`DELETE FROM exam_sessions WHERE exam_id=$1`,
		`DELETE FROM subject_results WHERE exam_id=$1`,
		`DELETE FROM exam_days WHERE exam_id=$1`,
		`DELETE FROM exams WHERE id=$1`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, examID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

/* ---------------- row helpers ---------------- */

const examSelect = `SELECT id,user_id,status,total_days,questions_per_day,current_day,
	questions_answered,correct_answers,overall_score,started_at,completed_at,created_at FROM exams`

type rowScanner interface{ Scan(dest ...any) error }

func scanExam(r rowScanner) (Exam, error) {
	var e Exam
	var started, created int64
	var completed sql.NullInt64
	err := r.Scan(&e.ID, &e.UserID, &e.Status, &e.TotalDays, &e.QuestionsPerDay, &e.CurrentDay,
		&e.QuestionsAnswered, &e.CorrectAnswers, &e.OverallScore, &started, &completed, &created)
	if err != nil {
		return Exam{}, err
	}
	e.StartedAt = time.Unix(started, 0).UTC()
	e.CreatedAt = time.Unix(created, 0).UTC()
	if completed.Valid {
		t := time.Unix(completed.Int64, 0).UTC()
		e.CompletedAt = &t
	}
	return e, nil
}

func (s *SQLStore) loadExam(ctx context.Context, q querier, examID string) (Exam, error) {
	e, err := scanExam(q.QueryRowContext(ctx, examSelect+` WHERE id=$1`, examID))
	if errors.Is(err, sql.ErrNoRows) {
		return Exam{}, ErrNotFound
	}
	return e, err
}

func (s *SQLStore) loadExamOwned(ctx context.Context, q querier, examID, userID string) (Exam, error) {
	e, err := s.loadExam(ctx, q, examID)
	if err != nil {
		return Exam{}, err
	}
	if e.UserID != userID {
		return Exam{}, ErrNotFound // never reveal existence of others' exams
	}
	return e, nil
}

const daySelect = `SELECT exam_id,day_number,subject_id,status,session_id,started_at,completed_at,
	question_count,correct_count,score,grade FROM exam_days`

func scanDay(r rowScanner) (ExamDay, error) {
	var d ExamDay
	var sessID sql.NullString
	var started, completed sql.NullInt64
	err := r.Scan(&d.ExamID, &d.DayNumber, &d.SubjectID, &d.Status, &sessID, &started, &completed,
		&d.QuestionCount, &d.CorrectCount, &d.Score, &d.Grade)
	if err != nil {
		return ExamDay{}, err
	}
	d.SessionID = sessID.String
	if started.Valid {
		t := time.Unix(started.Int64, 0).UTC()
		d.StartedAt = &t
	}
	if completed.Valid {
		t := time.Unix(completed.Int64, 0).UTC()
		d.CompletedAt = &t
	}
	return d, nil
}

func (s *SQLStore) loadDay(ctx context.Context, q querier, examID string, dayNumber int) (ExamDay, error) {
	d, err := scanDay(q.QueryRowContext(ctx, daySelect+` WHERE exam_id=$1 AND day_number=$2`, examID, dayNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return ExamDay{}, fmt.Errorf("%w: day %d", ErrNotFound, dayNumber)
	}
	return d, err
}

func (s *SQLStore) loadDays(ctx context.Context, q querier, examID string) ([]ExamDay, error) {
	rows, err := q.QueryContext(ctx, daySelect+` WHERE exam_id=$1 ORDER BY day_number`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var days []ExamDay
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (s *SQLStore) loadSession(ctx context.Context, q querier, sessionID string) (*Session, error) {
	var sess Session
	var started int64
	err := q.QueryRowContext(ctx,
		`SELECT id,exam_id,user_id,subject_id,question_count,started_at FROM exam_sessions WHERE id=$1`,
		sessionID).Scan(&sess.ID, &sess.ExamID, &sess.UserID, &sess.SubjectID, &sess.QuestionCount, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.StartedAt = time.Unix(started, 0).UTC()

	rows, err := q.QueryContext(ctx,
		`SELECT session_id,question_id,position,selected_option,is_correct,time_spent_sec
		 FROM session_answers WHERE session_id=$1 ORDER BY position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a Answer
		var sel sql.NullString
		var corr sql.NullBool
		if err := rows.Scan(&a.SessionID, &a.QuestionID, &a.Position, &sel, &corr, &a.TimeSpentSec); err != nil {
			return nil, err
		}
		if sel.Valid {
			a.SelectedOption = &sel.String
		}
		if corr.Valid {
			a.Correct = &corr.Bool
		}
		sess.Answers = append(sess.Answers, a)
	}
	return &sess, rows.Err()
}

// snapshotAnswers freezes the session's answers together with the
// correct option of each question, and counts answered/correct.
func (s *SQLStore) snapshotAnswers(ctx context.Context, q querier, sessionID string) ([]AnswerSnapshot, int, int, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT a.question_id, a.selected_option, a.is_correct, a.time_spent_sec, COALESCE(qu.correct_option,'')
		 FROM session_answers a
		 LEFT JOIN questions qu ON qu.id = a.question_id
		 WHERE a.session_id=$1 ORDER BY a.position`, sessionID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var snaps []AnswerSnapshot
	answered, correct := 0, 0
	for rows.Next() {
		var snap AnswerSnapshot
		var sel sql.NullString
		var corr sql.NullBool
		if err := rows.Scan(&snap.QuestionID, &sel, &corr, &snap.TimeSpentSec, &snap.CorrectOption); err != nil {
			return nil, 0, 0, err
		}
		if sel.Valid {
			snap.SelectedOption = &sel.String
			answered++
		}
		if corr.Valid {
			snap.Correct = &corr.Bool
			if corr.Bool {
				correct++
			}
		}
		snaps = append(snaps, snap)
	}
	return snaps, answered, correct, rows.Err()
}

func (s *SQLStore) insertResult(ctx context.Context, q querier, r SubjectResult, now time.Time) error {
	aj, err := json.Marshal(r.Answers)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO subject_results
		 (id,exam_id,subject_id,day_number,question_count,answered_count,correct_count,score,grade,time_taken_sec,answers_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		r.ID, r.ExamID, r.SubjectID, r.DayNumber, r.QuestionCount, r.AnsweredCount, r.CorrectCount,
		r.Score, r.Grade, r.TimeTakenSec, string(aj), now.Unix())
	return err
}

func (s *SQLStore) loadResults(ctx context.Context, q querier, examID string) ([]SubjectResult, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id,exam_id,subject_id,day_number,question_count,answered_count,correct_count,score,grade,time_taken_sec,answers_json,created_at
		 FROM subject_results WHERE exam_id=$1 ORDER BY day_number`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SubjectResult
	for rows.Next() {
		var r SubjectResult
		var aj string
		var created int64
		if err := rows.Scan(&r.ID, &r.ExamID, &r.SubjectID, &r.DayNumber, &r.QuestionCount, &r.AnsweredCount,
			&r.CorrectCount, &r.Score, &r.Grade, &r.TimeTakenSec, &aj, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &r.Answers); err != nil {
			return nil, fmt.Errorf("result %s: bad snapshot: %w", r.ID, err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// unlockNext flips the following day LOCKED→AVAILABLE. The unlock is
// idempotent: a day already advanced past LOCKED (or forced MISSED by
// the sweeper) is left untouched.
func (s *SQLStore) unlockNext(ctx context.Context, tx *sql.Tx, examID string, dayNumber int) (*ExamDay, bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE exam_days SET status=$1 WHERE exam_id=$2 AND day_number=$3 AND status=$4`,
		DayAvailable, examID, dayNumber+1, DayLocked)
	if err != nil {
		return nil, false, err
	}
	n, _ := res.RowsAffected()
	next, err := s.loadDay(ctx, tx, examID, dayNumber+1)
	if err != nil {
		return nil, false, err
	}
	return &next, n > 0, nil
}

// recomputeTotals rebuilds the exam's cumulative counters from the
// subject_results snapshots. Always a full recompute, never an
// increment, so concurrent writers cannot introduce drift.
func (s *SQLStore) recomputeTotals(ctx context.Context, tx *sql.Tx, examID string) (*Progress, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT question_count, answered_count, correct_count FROM subject_results WHERE exam_id=$1`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var outcomes []grading.Outcome
	for rows.Next() {
		var o grading.Outcome
		if err := rows.Scan(&o.QuestionCount, &o.AnsweredCount, &o.CorrectCount); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	answered, correct, overall := grading.Rollup(outcomes)
	if _, err := tx.ExecContext(ctx,
		`UPDATE exams SET questions_answered=$1, correct_answers=$2, overall_score=$3 WHERE id=$4`,
		answered, correct, overall, examID); err != nil {
		return nil, err
	}

	var completedDays, missedDays, totalDays int
	var status ExamStatus
	err = tx.QueryRowContext(ctx,
		`SELECT total_days, status,
		   (SELECT COUNT(*) FROM exam_days WHERE exam_id=$1 AND status=$2),
		   (SELECT COUNT(*) FROM exam_days WHERE exam_id=$1 AND status=$3)
		 FROM exams WHERE id=$1`,
		examID, DayCompleted, DayMissed).Scan(&totalDays, &status, &completedDays, &missedDays)
	if err != nil {
		return nil, err
	}
	return &Progress{
		CompletedDays: completedDays,
		MissedDays:    missedDays,
		TotalDays:     totalDays,
		OverallScore:  overall,
		IsComplete:    status == ExamCompleted,
	}, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
