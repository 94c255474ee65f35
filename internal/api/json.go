package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jbrinkw/daybook/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// errResponse matches the error payload of every operation surface.
type errResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorBody(msg string) errResponse {
	return errResponse{Status: "error", Message: msg}
}

// writeErr maps a tagged service error to an HTTP status. Internal detail
// is logged, not leaked.
func writeErr(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
