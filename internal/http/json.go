package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crimetracker/crimetracker-api/internal/data"
	apperrors "github.com/crimetracker/crimetracker-api/internal/errors"
)

const maxJSONBody = 1 << 20

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
	Field   string
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	WriteJSON(w, p.Code, errorBody{Error: p.ErrCode, Message: p.Err.Error(), Field: p.Field})
}

// notFoundSentinels map repository misses to 404.
//
//nolint:gochecknoglobals // static read-only lookup
var notFoundSentinels = []error{
	data.ErrReportNotFound,
	data.ErrProfileNotFound,
	data.ErrWitnessReportNotFound,
	data.ErrNotificationNotFound,
}

// WriteServiceError maps a service-layer error onto a JSON response. AppErrors
// keep their code and message; repository misses become 404; raw database
// errors go through MapDBError; anything else is logged and reported as a
// generic 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	for _, s := range notFoundSentinels {
		if errors.Is(err, s) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: string(apperrors.ErrCodeNotFound), Err: s})
			return
		}
	}

	err = apperrors.MapDBError(err)
	if code := apperrors.GetCode(err); code != "" {
		status := apperrors.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		}
		WriteError(w, ErrorParams{
			Code:    status,
			ErrCode: string(code),
			Err:     errors.New(apperrors.Message(err, http.StatusText(status))),
			Field:   apperrors.GetField(err),
		})
		return
	}

	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	WriteError(w, ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: string(apperrors.ErrCodeInternal),
		Err:     errors.New("Something went wrong. Please try again."), //nolint:staticcheck // user-facing text
	})
}
