package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qforge/fmea-backend/internal/docstore"
	"github.com/qforge/fmea-backend/internal/engine/cdsync"
	"github.com/qforge/fmea-backend/internal/platform/apierr"
	"github.com/qforge/fmea-backend/internal/platform/logger"
	"github.com/qforge/fmea-backend/internal/services"
)

type SyncHandler struct {
	log  *logger.Logger
	sync services.SyncService
}

func NewSyncHandler(log *logger.Logger, sync services.SyncService) *SyncHandler {
	return &SyncHandler{
		log:  log.With("handler", "SyncHandler"),
		sync: sync,
	}
}

type syncStructureRequest struct {
	Direction string `json:"direction"`
	SourceID  string `json:"sourceId"`
	TargetID  string `json:"targetId"`
	Options   struct {
		Overwrite bool `json:"overwrite"`
	} `json:"options"`
}

// POST /api/sync/structure
func (h *SyncHandler) SyncStructure(c *gin.Context) {
	var req syncStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if req.SourceID == "" || req.TargetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "sourceId and targetId are required"})
		return
	}

	report, err := h.sync.SyncStructure(
		c.Request.Context(),
		req.Direction,
		docstore.NormalizeAnalysisID(req.SourceID),
		req.TargetID,
		cdsync.StructureOptions{Overwrite: req.Options.Overwrite},
	)
	if err != nil {
		status, _ := apierr.StatusOf(err)
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

type syncDataRequest struct {
	FMEAID         string   `json:"fmeaId"`
	CPNo           string   `json:"cpNo"`
	ConflictPolicy string   `json:"conflictPolicy"`
	Fields         []string `json:"fields"`
}

// POST /api/sync/data
func (h *SyncHandler) SyncData(c *gin.Context) {
	var req syncDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if req.FMEAID == "" || req.CPNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "fmeaId and cpNo are required"})
		return
	}
	policy, err := cdsync.ParsePolicy(req.ConflictPolicy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	fields, err := cdsync.ParseFields(req.Fields)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	report, err := h.sync.SyncData(c.Request.Context(), docstore.NormalizeAnalysisID(req.FMEAID), req.CPNo, policy, fields)
	if err != nil {
		status, _ := apierr.StatusOf(err)
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}
