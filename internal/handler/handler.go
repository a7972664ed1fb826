package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"simpleshop/internal/middleware"
	"simpleshop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	maxBodyBytes = 1 << 20

	// retryAfterSeconds is advertised on 409 and 503 responses.
	retryAfterSeconds = "1"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().
		Str("error", code).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("request rejected")
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.CorrelationIDFromContext(r.Context()),
	})
}

// writeServiceError maps a service error to its HTTP status. Errors that are
// not domain errors become a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	cid := middleware.CorrelationIDFromContext(r.Context())

	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("correlation_id", cid).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:         model.ErrCodeInternalError,
			Message:       "An internal error occurred",
			CorrelationID: cid,
		})
		return
	}

	status := statusFor(de.Kind)
	if status == http.StatusConflict || status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	logger.Warn().
		Err(err).
		Str("error", de.Code).
		Int("status", status).
		Str("path", r.URL.Path).
		Str("correlation_id", cid).
		Msg("request rejected")

	writeJSON(w, status, model.ErrorResponse{
		Error:         de.Code,
		Message:       de.Message,
		Fields:        de.Fields,
		CorrelationID: cid,
	})
}

func statusFor(kind model.Kind) int {
	switch kind {
	case model.KindValidation, model.KindSignatureInvalid:
		return http.StatusBadRequest
	case model.KindConflict:
		return http.StatusConflict
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeInvalidJSON(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", logger)
}

// parseID parses a UUID path parameter, writing a 404 when it is malformed.
func parseID(w http.ResponseWriter, r *http.Request, raw string, notFound *model.DomainError, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeServiceError(w, r, notFound, logger)
		return uuid.Nil, false
	}
	return id, true
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
