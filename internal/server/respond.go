package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/clientportal/internal/access"
	"github.com/wolfeidau/clientportal/internal/auth"
	"github.com/wolfeidau/clientportal/internal/documents"
	"github.com/wolfeidau/clientportal/internal/store"
)

const maxBodyBytes = 1 << 20

var errInternal = errors.New("internal error")

// invalidError reports a malformed request.
type invalidError struct {
	msg string
}

func (e *invalidError) Error() string {
	return e.msg
}

func invalidf(format string, args ...any) error {
	return &invalidError{msg: fmt.Sprintf(format, args...)}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps an error onto an HTTP status, a stable code and a client-safe message.
func statusFor(err error) (int, string, string) {
	var invalid *invalidError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "invalid_argument", invalid.msg
	case errors.Is(err, documents.ErrInvalidDocType):
		return http.StatusBadRequest, "invalid_argument", "unknown document type"
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, access.ErrNoIdentity):
		return http.StatusUnauthorized, "unauthenticated", "not authenticated"
	case errors.Is(err, auth.ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied", "permission denied"
	case errors.Is(err, access.ErrDenied):
		return http.StatusForbidden, "denied", "access denied"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found", notFoundMessage(err)
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "conflict", conflictMessage(err)
	case errors.Is(err, store.ErrUpstream):
		return http.StatusBadGateway, "upstream", "upstream failure"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrClientNotFound):
		return "client not found"
	case errors.Is(err, store.ErrDocumentNotFound):
		return "document not found"
	case errors.Is(err, store.ErrMembershipNotFound):
		return "membership not found"
	}
	return "not found"
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrClientSlugTaken):
		return "client slug already in use"
	case errors.Is(err, store.ErrDocumentConflict):
		return "documents are being provisioned concurrently, retry"
	}
	return "conflict"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := statusFor(err)

	logger := zerolog.Ctx(r.Context())
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Str("code", code).Msg("Request failed")

	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a single JSON object from the body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalidf("invalid request body: %v", err)
	}
	if dec.More() {
		return invalidf("invalid request body: trailing data")
	}
	return nil
}
