package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

type PatientService interface {
	CreatePatient(ctx context.Context, p *domain.Patient) error
	GetPatient(ctx context.Context, id string) (*domain.Patient, error)
	ListPatients(ctx context.Context) ([]*domain.Patient, error)
	UpdatePatient(ctx context.Context, p *domain.Patient) error
	DeletePatient(ctx context.Context, id string) error
}

type PatientHandler struct {
	service PatientService
	logger  *zap.Logger
}

func NewPatientHandler(s PatientService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{service: s, logger: logger.Named("patient-handler")}
}

func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPatients(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPatient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p domain.Patient
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := h.service.CreatePatient(r.Context(), &p); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p domain.Patient
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := h.service.UpdatePatient(r.Context(), &p); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePatient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
