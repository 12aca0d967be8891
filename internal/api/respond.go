package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"pantry-chef/internal/apperrors"
	"pantry-chef/internal/logging"
)

const maxJSONBytes = 1 << 20

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Err(err).Msg("Failed to encode response")
		http.Error(w, `{"code":"INTERNAL","message":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperrors.Wrap(apperrors.CodeValidation, "Request body too large", err)
		case errors.Is(err, io.EOF):
			return apperrors.Wrap(apperrors.CodeValidation, "Request body is required", err)
		default:
			return apperrors.Wrap(apperrors.CodeValidation, "Invalid JSON body", err)
		}
	}
	return nil
}
