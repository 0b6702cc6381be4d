package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

type InventoryService interface {
	CreateInventoryItem(ctx context.Context, it *domain.InventoryItem) error
	ListInventory(ctx context.Context) ([]*domain.InventoryItem, error)
	SetInventoryQuantity(ctx context.Context, id string, quantity int) (*domain.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error
}

type InventoryHandler struct {
	service InventoryService
	logger  *zap.Logger
}

func NewInventoryHandler(s InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{service: s, logger: logger.Named("inventory-handler")}
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListInventory(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var it domain.InventoryItem
	if !decodeJSON(w, r, &it) {
		return
	}
	if err := h.service.CreateInventoryItem(r.Context(), &it); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *InventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	it, err := h.service.SetInventoryQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteInventoryItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
