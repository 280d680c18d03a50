package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authmw "github.com/prepforge/prepforge/internal/auth/middleware"
	"github.com/prepforge/prepforge/internal/exam"
)

func CreateExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		var req struct {
			SubjectIDs []string `json:"subject_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		view, err := svc.CreateExam(r.Context(), userID, req.SubjectIDs)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, view)
	}
}

func GetExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		view, err := svc.GetExam(r.Context(), chi.URLParam(r, "examID"), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, view)
	}
}

func ListExamsHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		exams, err := svc.ListUserExams(r.Context(), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if exams == nil {
			exams = []exam.Exam{}
		}
		writeJSON(w, exams)
	}
}

func StartDayHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		day, ok := dayNumber(w, r)
		if !ok {
			return
		}
		res, err := svc.StartDay(r.Context(), chi.URLParam(r, "examID"), day, userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, res)
	}
}

func CompleteDayHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		day, ok := dayNumber(w, r)
		if !ok {
			return
		}
		var req struct {
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		outcome, err := svc.CompleteDay(r.Context(), chi.URLParam(r, "examID"), day, req.SessionID, userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, outcome)
	}
}

func RecordAnswerHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		var req struct {
			QuestionID     string `json:"question_id"`
			SelectedOption string `json:"selected_option"`
			TimeSpentSec   int    `json:"time_spent_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		err := svc.RecordAnswer(r.Context(), chi.URLParam(r, "sessionID"), userID,
			req.QuestionID, req.SelectedOption, req.TimeSpentSec)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "recorded"})
	}
}

func PauseExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		e, err := svc.PauseExam(r.Context(), chi.URLParam(r, "examID"), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, e)
	}
}

func ResumeExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		e, err := svc.ResumeExam(r.Context(), chi.URLParam(r, "examID"), userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, e)
	}
}

func DeleteExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if err := svc.DeleteExam(r.Context(), chi.URLParam(r, "examID"), userID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func dayNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	day, err := strconv.Atoi(chi.URLParam(r, "dayNumber"))
	if err != nil {
		http.Error(w, "day number must be an integer", http.StatusBadRequest)
		return 0, false
	}
	return day, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
