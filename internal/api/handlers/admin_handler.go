package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iseprep/backend/internal/backup"
	"github.com/iseprep/backend/internal/service"
)

type AdminHandler struct {
	reports *service.ReportService
	backups *backup.Service
}

func NewAdminHandler(reports *service.ReportService, backups *backup.Service) *AdminHandler {
	return &AdminHandler{reports: reports, backups: backups}
}

// RefreshSnapshots rebuilds the standard-quantity snapshot tables.
func (h *AdminHandler) RefreshSnapshots(c *gin.Context) {
	summary, err := h.reports.RefreshSnapshots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh snapshots", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *AdminHandler) CreateBackup(c *gin.Context) {
	result, err := h.backups.Create(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "backup failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) ListBackups(c *gin.Context) {
	archives, err := h.backups.ListArchives()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list backups", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"archives": archives})
}

type restoreRequest struct {
	Archive string `json:"archive" binding:"required"`
}

// RestoreBackup restores from a named archive in the backup directory.
// The name must be bare; path components are rejected.
func (h *AdminHandler) RestoreBackup(c *gin.Context) {
	var req restoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "archive name required", "details": err.Error()})
		return
	}
	if strings.ContainsAny(req.Archive, "/\\") || req.Archive != filepath.Base(req.Archive) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "archive must be a bare file name"})
		return
	}

	summary, err := h.backups.RestoreByName(c.Request.Context(), req.Archive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "restore failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
