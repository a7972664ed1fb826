package handler

import (
	"net/http"

	"simpleshop/internal/middleware"
	"simpleshop/internal/model"
	"simpleshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AddressHandler handles address book HTTP requests.
type AddressHandler struct {
	service service.AddressService
	logger  zerolog.Logger
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(service service.AddressService, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger.With().Str("handler", "address").Logger(),
	}
}

// List handles GET /api/addresses.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.service.List(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	if addresses == nil {
		addresses = []model.Address{}
	}
	writeJSON(w, http.StatusOK, addresses)
}

// Create handles POST /api/addresses.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Address
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	address, err := h.service.Create(r.Context(), middleware.UserIDFromContext(r.Context()), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, address)
}

// Get handles GET /api/addresses/{id}.
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, chi.URLParam(r, "id"), model.ErrAddressNotFound, h.logger)
	if !ok {
		return
	}

	address, err := h.service.Get(r.Context(), middleware.UserIDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, address)
}

// Update handles PUT /api/addresses/{id}. The body replaces every field.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, chi.URLParam(r, "id"), model.ErrAddressNotFound, h.logger)
	if !ok {
		return
	}

	var req model.Address
	if err := decodeJSON(w, r, &req); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	h.update(w, r, id, &req)
}

// Patch handles PATCH /api/addresses/{id}. Fields absent from the body keep
// their stored value.
func (h *AddressHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, chi.URLParam(r, "id"), model.ErrAddressNotFound, h.logger)
	if !ok {
		return
	}

	current, err := h.service.Get(r.Context(), middleware.UserIDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	merged := *current
	if err := decodeJSON(w, r, &merged); err != nil {
		writeInvalidJSON(w, r, h.logger)
		return
	}

	h.update(w, r, id, &merged)
}

func (h *AddressHandler) update(w http.ResponseWriter, r *http.Request, id uuid.UUID, req *model.Address) {
	address, err := h.service.Update(r.Context(), middleware.UserIDFromContext(r.Context()), id, req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, address)
}

// Delete handles DELETE /api/addresses/{id}.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, chi.URLParam(r, "id"), model.ErrAddressNotFound, h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), middleware.UserIDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
