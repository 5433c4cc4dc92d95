package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/stall-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// MenuHandler handles menu-related HTTP requests
type MenuHandler struct {
	service *service.MenuService
	logger  *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(service *service.MenuService, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger,
	}
}

// availabilityRequest is the body of the availability toggle
type availabilityRequest struct {
	IsAvailable *bool `json:"isAvailable"`
}

// bulkAvailabilityRequest is the body of the bulk availability update
type bulkAvailabilityRequest struct {
	Items []service.AvailabilityChange `json:"items"`
}

// ListMenu handles GET /api/stores/{storeSlug}/menu
func (h *MenuHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	storeSlug := chi.URLParam(r, "storeSlug")

	items, err := h.service.ListMenu(r.Context(), storeSlug)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, items, h.logger)
}

// GetItem handles GET /api/stores/{storeSlug}/menu/{itemId}
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	storeSlug := chi.URLParam(r, "storeSlug")
	itemID := chi.URLParam(r, "itemId")

	if strings.TrimSpace(itemID) == "" {
		WriteError(w, http.StatusBadRequest, "INVALID_ID", "Invalid ID supplied", h.logger)
		return
	}

	item, err := h.service.GetItem(r.Context(), storeSlug, itemID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, item, h.logger)
}

// SetAvailability handles PATCH /api/admin/stores/{storeSlug}/menu/{itemId}/availability
func (h *MenuHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	storeSlug := chi.URLParam(r, "storeSlug")
	itemID := chi.URLParam(r, "itemId")

	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("failed to decode availability request", "error", err)
		WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", h.logger)
		return
	}
	if req.IsAvailable == nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "isAvailable: is required", h.logger)
		return
	}

	item, err := h.service.SetAvailability(r.Context(), storeSlug, itemID, *req.IsAvailable)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, item, h.logger)
}

// BulkSetAvailability handles PATCH /api/admin/stores/{storeSlug}/menu/availability
func (h *MenuHandler) BulkSetAvailability(w http.ResponseWriter, r *http.Request) {
	storeSlug := chi.URLParam(r, "storeSlug")

	var req bulkAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("failed to decode bulk availability request", "error", err)
		WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body", h.logger)
		return
	}
	if len(req.Items) == 0 {
		WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "items: must not be empty", h.logger)
		return
	}

	items, err := h.service.BulkSetAvailability(r.Context(), storeSlug, req.Items)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, items, h.logger)
}

// PublishStatistics handles POST /api/admin/stores/{storeSlug}/menu/statistics
func (h *MenuHandler) PublishStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.PublishStatistics(r.Context(), chi.URLParam(r, "storeSlug"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, stats, h.logger)
}
