package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

type AppointmentService interface {
	CreateAppointment(ctx context.Context, a *domain.Appointment) error
	GetAppointment(ctx context.Context, id string) (*domain.Appointment, error)
	ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]*domain.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) error
	DeleteAppointment(ctx context.Context, id string) error
}

type AppointmentHandler struct {
	service AppointmentService
	logger  *zap.Logger
}

func NewAppointmentHandler(s AppointmentService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: s, logger: logger.Named("appointment-handler")}
}

// List поддерживает ?date=YYYY-MM-DD и ?status=Scheduled
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.AppointmentFilter{Date: q.Get("date"), Status: domain.AppointmentStatus(q.Get("status"))}

	list, err := h.service.ListAppointments(r.Context(), f)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.GetAppointment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var a domain.Appointment
	if !decodeJSON(w, r, &a) {
		return
	}
	if err := h.service.CreateAppointment(r.Context(), &a); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.service.UpdateAppointmentStatus(r.Context(), id, domain.AppointmentStatus(req.Status)); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAppointment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
