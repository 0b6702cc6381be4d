package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

type BillingService interface {
	CreateBill(ctx context.Context, b *domain.Bill) error
	GetBill(ctx context.Context, id string) (*domain.Bill, error)
	ListBills(ctx context.Context) ([]*domain.Bill, error)
	UpdateBillStatus(ctx context.Context, id string, status domain.BillingStatus) error
	DeleteBill(ctx context.Context, id string) error
}

type BillingHandler struct {
	service BillingService
	logger  *zap.Logger
}

func NewBillingHandler(s BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{service: s, logger: logger.Named("billing-handler")}
}

func (h *BillingHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListBills(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BillingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BillingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var b domain.Bill
	if !decodeJSON(w, r, &b) {
		return
	}
	if err := h.service.CreateBill(r.Context(), &b); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BillingHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.service.UpdateBillStatus(r.Context(), id, domain.BillingStatus(req.Status)); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BillingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBill(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
