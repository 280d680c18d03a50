// Package questionbank wraps the question store. The pool serves
// fixed-size question sets for a subject with the correct option
// stripped; the key stays server-side until an answer is recorded.
package questionbank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Option is one labeled answer choice.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Question is the student-safe view: options only, no correct-answer
// flag.
type Question struct {
	ID        string   `json:"id"`
	SubjectID string   `json:"subject_id"`
	Prompt    string   `json:"prompt"`
	Options   []Option `json:"options"`
}

// ErrUnknownSubject is returned when a subject id does not exist.
var ErrUnknownSubject = errors.New("unknown subject")

// ErrUnknownQuestion is returned when a question id does not exist.
var ErrUnknownQuestion = errors.New("unknown question")

type Pool struct {
	db *sql.DB
}

func NewPool(db *sql.DB) *Pool { return &Pool{db: db} }

// SubjectExists reports whether the subject id is known.
func (p *Pool) SubjectExists(ctx context.Context, subjectID string) (bool, error) {
	var one int
	err := p.db.QueryRowContext(ctx, `SELECT 1 FROM subjects WHERE id=$1`, subjectID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FetchForSubject returns up to count active questions for the subject,
// ordered by id and deduplicated. The caller decides whether a short set
// is acceptable; for exam days it is not.
func (p *Pool) FetchForSubject(ctx context.Context, subjectID string, count int) ([]Question, error) {
	if count <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", count)
	}
	ok, err := p.SubjectExists(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownSubject
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT id, prompt, options_json FROM questions
		 WHERE subject_id=$1 AND active=$2
		 ORDER BY id
		 LIMIT $3`, subjectID, true, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{}, count)
	var out []Question
	for rows.Next() {
		var q Question
		var optJSON string
		if err := rows.Scan(&q.ID, &q.Prompt, &optJSON); err != nil {
			return nil, err
		}
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		if err := json.Unmarshal([]byte(optJSON), &q.Options); err != nil {
			return nil, fmt.Errorf("question %s: bad options: %w", q.ID, err)
		}
		q.SubjectID = subjectID
		out = append(out, q)
	}
	return out, rows.Err()
}

// CorrectOption returns the designated correct option id for a question.
// Only the answer recorder calls this; the key never travels to clients.
func (p *Pool) CorrectOption(ctx context.Context, questionID string) (string, error) {
	var key string
	err := p.db.QueryRowContext(ctx,
		`SELECT correct_option FROM questions WHERE id=$1`, questionID).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	return key, err
}
