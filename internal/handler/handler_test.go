package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"simpleshop/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		retryAfter     bool
	}{
		{name: "Validation", err: model.ErrEmptyOrder, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeEmptyOrder},
		{name: "Wrapped validation", err: fmt.Errorf("failed: %w", model.ErrUnknownProduct), expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeUnknownProduct},
		{name: "Conflict", err: fmt.Errorf("next: %w", model.ErrSequenceConflict), expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeSequenceConflict, retryAfter: true},
		{name: "Not found", err: model.ErrOrderNotFound, expectedStatus: http.StatusNotFound, expectedCode: model.ErrCodeOrderNotFound},
		{name: "Unknown user", err: fmt.Errorf("next: %w", model.ErrUnknownUser), expectedStatus: http.StatusNotFound, expectedCode: model.ErrCodeUnknownUser},
		{name: "Signature", err: model.ErrSignatureInvalid, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeSignatureInvalid},
		{name: "Unavailable", err: model.ErrGatewayUnavailable, expectedStatus: http.StatusServiceUnavailable, expectedCode: model.ErrCodeGatewayUnavailable, retryAfter: true},
		{name: "Infrastructure", err: errors.New("pq: password authentication failed"), expectedStatus: http.StatusInternalServerError, expectedCode: model.ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			w := httptest.NewRecorder()

			writeServiceError(w, r, tt.err, zerolog.Nop())

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.retryAfter {
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
			} else {
				assert.Empty(t, w.Header().Get("Retry-After"))
			}

			body := decodeError(t, w)
			assert.Equal(t, tt.expectedCode, body.Error)
			assert.NotContains(t, body.Message, "password")
		})
	}
}

func TestWriteServiceError_Fields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	w := httptest.NewRecorder()

	writeServiceError(w, r, model.ErrInvalidQuantity.WithFields(map[string]string{"items[0].quantity": "must be at least 1"}), zerolog.Nop())

	body := decodeError(t, w)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be at least 1", body.Fields["items[0].quantity"])
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}
