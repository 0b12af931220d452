package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vowsuite-inc/vowsuite-reports/pkg/apperrors"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/auth"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/models"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/services"
	"github.com/vowsuite-inc/vowsuite-reports/pkg/sqlsafety"
)

// ReportsHandler serves natural-language report questions.
type ReportsHandler struct {
	reportService services.ReportService
	logger        *zap.Logger
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(reportService services.ReportService, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the report routes on the given mux.
// All routes are scoped to a wedding and require a token for it.
func (h *ReportsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	base := "/api/weddings/{wid}/reports"

	mux.HandleFunc("POST "+base+"/ask",
		authMiddleware.RequireWeddingAccess("wid")(h.Ask))
	mux.HandleFunc("POST "+base+"/rerun",
		authMiddleware.RequireWeddingAccess("wid")(h.Rerun))
}

// Ask handles POST /api/weddings/{wid}/reports/ask.
func (h *ReportsHandler) Ask(w http.ResponseWriter, r *http.Request) {
	weddingID, adminID, err := auth.ExtractClaimsFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	result, err := h.reportService.Ask(r.Context(), weddingID, adminID, req.Question)
	if err != nil {
		h.writeReportError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

// Rerun handles POST /api/weddings/{wid}/reports/rerun.
func (h *ReportsHandler) Rerun(w http.ResponseWriter, r *http.Request) {
	weddingID, adminID, err := auth.ExtractClaimsFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req models.RerunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	result, err := h.reportService.Rerun(r.Context(), weddingID, adminID, req.SQL)
	if err != nil {
		h.writeReportError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

// writeReportError maps service errors to HTTP responses. Validation
// failures include the rule so clients can tell policy rejections from
// malformed requests.
func (h *ReportsHandler) writeReportError(w http.ResponseWriter, err error) {
	var verr *sqlsafety.ValidationError
	switch {
	case errors.As(err, &verr):
		_ = WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "query_rejected",
			"rule":    string(verr.Rule),
			"message": verr.Message,
		})
	case errors.Is(err, apperrors.ErrEmptyQuestion):
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Question is required")
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "service_unavailable", "Report generation is currently unavailable")
	case errors.Is(err, apperrors.ErrExecutionFailed):
		_ = ErrorResponse(w, http.StatusInternalServerError, "report_failed", "The report query could not be executed")
	default:
		h.logger.Error("Unexpected report error", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
