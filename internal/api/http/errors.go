package http

import (
	"errors"
	"net/http"

	"github.com/prepforge/prepforge/internal/exam"
)

// writeErr maps the engine's error taxonomy onto HTTP statuses. The
// sentinel text is passed through so clients see current vs. expected
// state.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, exam.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, exam.ErrConflict),
		errors.Is(err, exam.ErrInvalidState),
		errors.Is(err, exam.ErrSessionMismatch):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, exam.ErrInsufficientContent):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
