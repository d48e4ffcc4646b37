package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/query"
	"github.com/erazemk/lostfound/internal/report"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// errorStatus maps a service error onto an HTTP status.
func errorStatus(err error) int {
	switch {
	case query.IsValidation(err),
		errors.Is(err, report.ErrInvalidArguments),
		errors.Is(err, model.ErrPasswordTooShort),
		errors.Is(err, imaging.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, imaging.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, query.ErrNotFound), errors.Is(err, report.ErrUnknownReport):
		return http.StatusNotFound
	case errors.Is(err, query.ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, query.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// serviceError writes err with its mapped status. Internal errors are logged
// and hidden from the client.
func serviceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "error", err, "path", r.URL.Path, "request_id", RequestID(r.Context()))
		if status == http.StatusServiceUnavailable {
			jsonError(w, status, "storage unavailable")
			return
		}
		jsonError(w, status, msg)
		return
	}
	jsonError(w, status, err.Error())
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(target)
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
