package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/tempus/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Class string `json:"class,omitempty" example:"input"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// malformed are input errors that mean the request itself is unusable,
// as opposed to well-formed fields that cannot be combined.
var malformed = []error{
	apperr.ErrInvalidOption,
	apperr.ErrUnknownCalendar,
	apperr.ErrUnknownTimeZone,
}

// statusOf maps an error class to an HTTP status.
func statusOf(err error) int {
	switch apperr.ClassOf(err) {
	case apperr.ClassInput:
		for _, m := range malformed {
			if errors.Is(err, m) {
				return http.StatusBadRequest
			}
		}
		return http.StatusUnprocessableEntity
	case apperr.ClassRange:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError reports err to the client. Server-side failures keep their
// details out of the response; the service has already logged contract
// violations, the rest are logged here.
func writeError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	class := apperr.ClassOf(err)
	body := errResponse{Error: err.Error(), Class: string(class)}
	status := statusOf(err)
	switch {
	case class == apperr.ClassContract:
		body.Error = "calendar or time zone returned an invalid result"
	case status == http.StatusInternalServerError:
		logger.Error("calculation failed", slog.String("op", op), slog.String("error", err.Error()))
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}
