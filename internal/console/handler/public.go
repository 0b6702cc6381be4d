package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/hospital-console/internal/domain"
	"go.uber.org/zap"
)

type Booker interface {
	Book(ctx context.Context, req *domain.BookingRequest) (*domain.BookingConfirmation, error)
}

type ContactSubmitter interface {
	Submit(ctx context.Context, m *domain.ContactMessage) error
}

// PublicHandler — формы сайта: запись на прием и обратная связь.
type PublicHandler struct {
	booking Booker
	contact ContactSubmitter
	logger  *zap.Logger
}

func NewPublicHandler(b Booker, c ContactSubmitter, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{booking: b, contact: c, logger: logger.Named("public-handler")}
}

func (h *PublicHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	conf, err := h.booking.Book(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, conf)
}

func (h *PublicHandler) Slots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.AvailableTimes)
}

func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var m domain.ContactMessage
	if !decodeJSON(w, r, &m) {
		return
	}
	if err := h.contact.Submit(r.Context(), &m); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": m.ID})
}
