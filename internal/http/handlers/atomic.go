package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qforge/fmea-backend/internal/docstore"
	"github.com/qforge/fmea-backend/internal/platform/apierr"
	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/services"
)

type AtomicHandler struct {
	log      *logger.Logger
	rebuild  services.RebuildService
	analysis services.FailureAnalysisService
}

func NewAtomicHandler(log *logger.Logger, rebuild services.RebuildService, analysis services.FailureAnalysisService) *AtomicHandler {
	return &AtomicHandler{
		log:      log.With("handler", "AtomicHandler"),
		rebuild:  rebuild,
		analysis: analysis,
	}
}

// POST /api/atomic/rebuild?analysisId=<id>
// Purges and reinserts the analysis' entire atomic schema from its document.
func (h *AtomicHandler) Rebuild(c *gin.Context) {
	analysisID := docstore.NormalizeAnalysisID(c.Query("analysisId"))
	if analysisID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "analysisId is required"})
		return
	}

	report, err := h.rebuild.Rebuild(c.Request.Context(), analysisID)
	if err != nil {
		status, _ := apierr.StatusOf(err)
		h.log.Warn("Rebuild failed", "analysis_id", analysisID, "status", status, "error", err)
		c.JSON(status, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"analysisId": report.AnalysisID,
		"schema":     report.Schema,
		"rebuilt":    report.Rebuilt,
	})
}

// GET /api/atomic/failure-analysis?analysisId=<id>
// Reverse-engineers the denormalized analysis rows from the atomic schema.
func (h *AtomicHandler) FailureAnalysis(c *gin.Context) {
	analysisID := docstore.NormalizeAnalysisID(c.Query("analysisId"))
	if analysisID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "analysisId is required"})
		return
	}

	rows, report, err := h.analysis.Reconcile(c.Request.Context(), analysisID)
	if err != nil {
		status, code := apierr.StatusOf(err)
		h.log.Error("Failure analysis reconcile failed", "analysis_id", analysisID, "error", err)
		c.JSON(status, gin.H{"ok": false, "error": fmt.Sprintf("%s: %s", code, err.Error())})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"analysisId": analysisID,
		"rows":       rows,
		"validation": report,
	})
}
