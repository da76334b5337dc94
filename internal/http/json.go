package httpx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/skyemovie/skyemovie/internal/errors"
)

// DecodeJSON decodes the request body into dst. Unknown fields are rejected.
// On failure it writes a 400 response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: string(apperrors.ErrCodeValidation),
			Err:     err,
		})
		return false
	}
	return true
}

// WriteJSON encodes v to the response with the given status code. The body is
// buffered so that encoding failures never produce a half-written response.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("write response", "error", err)
	}
}

// ErrorParams describes a JSON error response.
type ErrorParams struct {
	Code    int    // HTTP status code
	ErrCode string // machine-readable error code
	Err     error
	Field   string // offending field, when known
	Hint    string // user-facing hint, when available
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	msg := http.StatusText(p.Code)
	if p.Err != nil {
		msg = p.Err.Error()
	}
	WriteJSON(w, p.Code, errorBody{
		Error: msg,
		Code:  p.ErrCode,
		Field: p.Field,
		Hint:  p.Hint,
	})
}

// WriteAppError maps an application error onto an HTTP status and writes it.
func WriteAppError(w http.ResponseWriter, err error) {
	p := ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: string(apperrors.GetCode(err)),
		Err:     err,
		Field:   apperrors.GetField(err),
		Hint:    apperrors.GetHint(err),
	}
	switch {
	case apperrors.IsNotFound(err):
		p.Code = http.StatusNotFound
	case apperrors.IsValidation(err):
		p.Code = http.StatusBadRequest
	case apperrors.IsConflict(err):
		p.Code = http.StatusConflict
	case apperrors.IsAuth(err):
		p.Code = http.StatusUnauthorized
	case apperrors.IsFetch(err), apperrors.IsConfig(err):
		p.Code = http.StatusBadGateway
	case apperrors.IsTimeout(err):
		p.Code = http.StatusGatewayTimeout
	}
	if p.Code == http.StatusInternalServerError {
		// Do not leak internals to clients.
		p.Err = nil
	}
	WriteError(w, p)
}
