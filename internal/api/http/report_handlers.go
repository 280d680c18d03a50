package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/prepforge/prepforge/internal/auth/middleware"
	"github.com/prepforge/prepforge/internal/exam"
	"github.com/prepforge/prepforge/internal/rbac"
	"github.com/prepforge/prepforge/internal/report"
)

// GetReportHandler streams the archived grade report. Students only see
// their own; teachers and admin can read any by permission.
func GetReportHandler(svc *exam.Service, archiver *report.Archiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		role := rbac.RoleFromContext(r.Context())
		if !rbac.Has(role, "report:view") {
			userID := authmw.SubjectFromContext(r.Context())
			if _, err := svc.GetExam(r.Context(), examID, userID); err != nil {
				writeErr(w, err)
				return
			}
		}

		ok, err := archiver.Exists(examID)
		if err != nil {
			http.Error(w, "stat report", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "no report archived for this exam", http.StatusNotFound)
			return
		}
		rc, err := archiver.Open(examID)
		if err != nil {
			http.Error(w, "open report", http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.Copy(w, rc)
	}
}
