package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

type DoctorService interface {
	CreateDoctor(ctx context.Context, d *domain.Doctor) error
	GetDoctor(ctx context.Context, id string) (*domain.Doctor, error)
	ListDoctors(ctx context.Context, departmentID string) ([]*domain.Doctor, error)
	UpdateDoctor(ctx context.Context, d *domain.Doctor) error
	DeleteDoctor(ctx context.Context, id string) error
	CreateDepartment(ctx context.Context, d *domain.Department) error
	ListDepartments(ctx context.Context) ([]*domain.Department, error)
}

// DoctorHandler обслуживает врачей и отделения: списки открыты форме записи.
type DoctorHandler struct {
	service DoctorService
	logger  *zap.Logger
}

func NewDoctorHandler(s DoctorService, logger *zap.Logger) *DoctorHandler {
	return &DoctorHandler{service: s, logger: logger.Named("doctor-handler")}
}

func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListDoctors(r.Context(), r.URL.Query().Get("department_id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *DoctorHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDoctor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var d domain.Doctor
	if !decodeJSON(w, r, &d) {
		return
	}
	if err := h.service.CreateDoctor(r.Context(), &d); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *DoctorHandler) Update(w http.ResponseWriter, r *http.Request) {
	var d domain.Doctor
	if !decodeJSON(w, r, &d) {
		return
	}
	d.ID = chi.URLParam(r, "id")
	if err := h.service.UpdateDoctor(r.Context(), &d); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DoctorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDoctor(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DoctorHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListDepartments(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *DoctorHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var d domain.Department
	if !decodeJSON(w, r, &d) {
		return
	}
	if err := h.service.CreateDepartment(r.Context(), &d); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}
