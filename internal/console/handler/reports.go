package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xela07ax/hospital-console/internal/reports"
	"go.uber.org/zap"
)

type ReportService interface {
	Monthly(ctx context.Context, month string) (*bytes.Buffer, time.Time, error)
	Archive(ctx context.Context, month string) (string, error)
}

type ReportHandler struct {
	service ReportService
	logger  *zap.Logger
}

func NewReportHandler(s ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{service: s, logger: logger.Named("report-handler")}
}

// Download отдает xlsx за ?month=YYYY-MM.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	buf, month, err := h.service.Monthly(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	w.Header().Set("Content-Type", reports.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="billing-%s.xlsx"`, month.Format("2006-01")))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *ReportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.Archive(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}
