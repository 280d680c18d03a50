// Package report builds the final grade report for a finished campaign
// and archives it as JSON. Reports are derived entirely from the
// SubjectResult snapshots, so they can be rebuilt at any time and will
// not change if live question data is edited later.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/prepforge/prepforge/internal/exam"
	"github.com/prepforge/prepforge/internal/grading"
	"github.com/prepforge/prepforge/internal/storage"
)

// GradeReport is the archived document for one campaign.
type GradeReport struct {
	ExamID      string       `json:"exam_id"`
	UserID      string       `json:"user_id"`
	Status      string       `json:"status"`
	TotalDays   int          `json:"total_days"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Days        []DayReport  `json:"days"`
	Overall     OverallGrade `json:"overall"`
}

type DayReport struct {
	DayNumber     int     `json:"day_number"`
	SubjectID     string  `json:"subject_id"`
	Status        string  `json:"status"`
	QuestionCount int     `json:"question_count"`
	AnsweredCount int     `json:"answered_count"`
	CorrectCount  int     `json:"correct_count"`
	Score         float64 `json:"score"`
	Grade         string  `json:"grade"`
	TimeTakenSec  int     `json:"time_taken_sec"`
}

type OverallGrade struct {
	QuestionsAnswered int     `json:"questions_answered"`
	CorrectAnswers    int     `json:"correct_answers"`
	Score             float64 `json:"score"`
	Grade             string  `json:"grade"`
}

// Archiver writes grade reports to a blob store. It satisfies
// exam.Archiver.
type Archiver struct {
	blobs storage.BlobStore
}

func NewArchiver(blobs storage.BlobStore) *Archiver {
	return &Archiver{blobs: blobs}
}

// Key returns the blob key for an exam's report.
func Key(examID string) string {
	return fmt.Sprintf("reports/%s.json", examID)
}

// Build assembles a report from an exam view. Day rows without a
// snapshot (still locked or available when the exam ended) appear with
// zero totals.
func Build(view *exam.ExamView) GradeReport {
	r := GradeReport{
		ExamID:      view.Exam.ID,
		UserID:      view.Exam.UserID,
		Status:      string(view.Exam.Status),
		TotalDays:   view.Exam.TotalDays,
		StartedAt:   view.Exam.StartedAt,
		CompletedAt: view.Exam.CompletedAt,
		Overall: OverallGrade{
			QuestionsAnswered: view.Exam.QuestionsAnswered,
			CorrectAnswers:    view.Exam.CorrectAnswers,
			Score:             view.Exam.OverallScore,
			Grade:             grading.Letter(view.Exam.OverallScore),
		},
	}

	bySnapshot := make(map[int]exam.SubjectResult, len(view.Results))
	for _, res := range view.Results {
		bySnapshot[res.DayNumber] = res
	}
	for _, d := range view.Days {
		dr := DayReport{
			DayNumber: d.DayNumber,
			SubjectID: d.SubjectID,
			Status:    string(d.Status),
		}
		if res, ok := bySnapshot[d.DayNumber]; ok {
			dr.QuestionCount = res.QuestionCount
			dr.AnsweredCount = res.AnsweredCount
			dr.CorrectCount = res.CorrectCount
			dr.Score = res.Score
			dr.Grade = res.Grade
			dr.TimeTakenSec = res.TimeTakenSec
		}
		r.Days = append(r.Days, dr)
	}
	return r
}

// ArchiveExam builds and stores the report for a finished exam.
func (a *Archiver) ArchiveExam(ctx context.Context, view *exam.ExamView) error {
	rep := Build(view)
	buf, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if _, err := a.blobs.Put(Key(view.Exam.ID), bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("archive report %s: %w", view.Exam.ID, err)
	}
	return nil
}

// Open returns the archived report for an exam, or storage's not-exist
// error when none was written.
func (a *Archiver) Open(examID string) (io.ReadCloser, error) {
	return a.blobs.Get(Key(examID))
}

// Exists reports whether a report was archived for the exam.
func (a *Archiver) Exists(examID string) (bool, error) {
	return a.blobs.Exists(Key(examID))
}
