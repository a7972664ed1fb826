package handler

import (
	"net/http"

	"simpleshop/internal/middleware"
	"simpleshop/internal/model"
	"simpleshop/internal/service"

	"github.com/rs/zerolog"
)

// PaymentHandler handles gateway payment HTTP requests.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Intent handles POST /api/payments/intent.
func (h *PaymentHandler) Intent(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	intent, err := h.service.InitiatePayment(r.Context(), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, intent)
}

// Confirm handles POST /api/payments/confirm.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentConfirmation
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	order, err := h.service.ConfirmPayment(r.Context(), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
