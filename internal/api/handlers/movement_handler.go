package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iseprep/backend/internal/export"
	"github.com/iseprep/backend/internal/service"
)

type MovementHandler struct {
	service  *service.MovementService
	exporter *export.Exporter
}

func NewMovementHandler(service *service.MovementService, exporter *export.Exporter) *MovementHandler {
	return &MovementHandler{service: service, exporter: exporter}
}

func (h *MovementHandler) Consumption(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	direction := strings.ToLower(c.DefaultQuery("direction", "all"))
	switch direction {
	case "all", "in", "out":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be all, in or out"})
		return
	}

	report, err := h.service.Consumption(c.Request.Context(), filter, direction)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build consumption report", "details": err.Error()})
		return
	}

	if c.Query("export") == "xlsx" {
		path, err := h.exporter.Consumption(report)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export consumption report", "details": err.Error()})
			return
		}
		c.FileAttachment(path, filepath.Base(path))
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *MovementHandler) Loans(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	rows, err := h.service.Loans(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build loans report", "details": err.Error()})
		return
	}

	if c.Query("export") == "xlsx" {
		path, err := h.exporter.Loans(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export loans report", "details": err.Error()})
			return
		}
		c.FileAttachment(path, filepath.Base(path))
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows)})
}

func (h *MovementHandler) Donations(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	rows, err := h.service.Donations(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build donations report", "details": err.Error()})
		return
	}

	if c.Query("export") == "xlsx" {
		path, err := h.exporter.Donations(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export donations report", "details": err.Error()})
			return
		}
		c.FileAttachment(path, filepath.Base(path))
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows)})
}
