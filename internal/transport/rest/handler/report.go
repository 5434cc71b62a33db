package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ReportOpener reads compiled reports from storage
type ReportOpener interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// ReportHandler handles report endpoints
type ReportHandler struct {
	reports ReportOpener
	log     *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportOpener, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

// Get handles GET /v1/reports/{ref}
// @Summary Download a compiled process log report
// @Tags reports
// @Produce plain
// @Param ref path string true "report reference"
// @Success 200 {string} string
// @Failure 404 {object} map[string]string
// @Router /v1/reports/{ref} [get]
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]

	rc, err := h.reports.Open(r.Context(), ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warn("report stream interrupted", zap.String("report_ref", ref), zap.Error(err))
	}
}
