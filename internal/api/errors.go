package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"pantry-chef/internal/apperrors"
	"pantry-chef/internal/logging"
)

const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code          string         `json:"code"`
	Message       string         `json:"message"`
	Details       map[string]any `json:"details,omitempty"`
	RequestID     string         `json:"requestId"`
	Timestamp     time.Time      `json:"timestamp"`
	Retryable     bool           `json:"retryable"`
	RequiresToken bool           `json:"requiresToken,omitempty"`
}

// writeError maps err onto the envelope. Errors without a code are logged and
// reported as INTERNAL without leaking their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
		appErr = apperrors.New(apperrors.CodeInternal, "Internal server error")
	}

	status := apperrors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("Request failed")
	}

	resp := newErrorResponse(r, string(appErr.Code), appErr.Message, apperrors.Retryable(appErr.Code), appErr.Details)
	resp.RequiresToken = appErr.Code == apperrors.CodeNotConfigured
	respondJSON(w, status, resp)
}

// writeErrorCode writes an envelope for errors raised by the transport itself.
func writeErrorCode(w http.ResponseWriter, r *http.Request, statusCode int,
	code, message string, retryable bool, details map[string]any) {
	respondJSON(w, statusCode, newErrorResponse(r, code, message, retryable, details))
}

func newErrorResponse(r *http.Request, code, message string, retryable bool, details map[string]any) ErrorResponse {
	requestID := requestIDFrom(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}
}
