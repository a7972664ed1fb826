package handler

import (
	"errors"
	"io"
	"net/http"

	"simpleshop/internal/middleware"
	"simpleshop/internal/model"
	"simpleshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// Checkout handles POST /api/cart/checkout requests. An empty body is
// accepted.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	order, err := h.service.CheckoutCart(r.Context(), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, chi.URLParam(r, "id"), model.ErrOrderNotFound, h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Invoice handles GET /api/orders/{id}/invoice requests.
func (h *OrderHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseID(w, r, chi.URLParam(r, "id"), model.ErrOrderNotFound, h.logger)
	if !ok {
		return
	}

	invoice, err := h.service.Invoice(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, invoice)
}
