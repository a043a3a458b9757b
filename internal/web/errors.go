package web

// errors.go provides unified error response handling for the web layer.
// Every failure is logged with full technical detail server-side and
// returned to the client as a JSON payload with a stable code, mapped
// from the internal error taxonomy:
//
//	PARSE_FAILED   - malformed/unsupported input file (load aborted,
//	                 prior session state untouched)
//	NO_DATASET     - the operation needs an active table
//	LLM_DISABLED   - model provider key not configured
//	STREAM_FAILED  - the model stream failed mid-call (recoverable)
//	AUTH_FAILED    - wrong access secret

import (
	"encoding/json"
	"errors"
	"net/http"

	"tabsentry/internal/llm"
	"tabsentry/internal/logging"
	"tabsentry/internal/session"
	"tabsentry/internal/table"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// mapError converts an internal error to an HTTP status and stable code.
func mapError(err error) (int, string) {
	var parseErr *table.ParseError
	switch {
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, "PARSE_FAILED"
	case errors.Is(err, session.ErrNoDataset):
		return http.StatusConflict, "NO_DATASET"
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, "LLM_DISABLED"
	case errors.Is(err, session.ErrStaleGeneration):
		return http.StatusConflict, "DATASET_REPLACED"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// respondError logs the technical error and writes the mapped JSON
// response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapError(err)
	s.respondErrorStatus(w, r, err, status, code)
}

func (s *Server) respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, status int, code string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err.Error(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), Code: code})
}

// writeJSON encodes v as JSON. Encoding errors are logged since the
// headers are already sent.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
