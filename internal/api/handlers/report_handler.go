package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/iseprep/backend/internal/export"
	"github.com/iseprep/backend/internal/service"
)

type ReportHandler struct {
	service  *service.ReportService
	exporter *export.Exporter
}

func NewReportHandler(service *service.ReportService, exporter *export.Exporter) *ReportHandler {
	return &ReportHandler{service: service, exporter: exporter}
}

func (h *ReportHandler) StockStatement(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	report, err := h.service.StockStatement(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build stock statement", "details": err.Error()})
		return
	}

	if c.Query("export") == "xlsx" {
		path, err := h.exporter.StockStatement(report)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export stock statement", "details": err.Error()})
			return
		}
		c.FileAttachment(path, filepath.Base(path))
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) StockSummary(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	rows, err := h.service.StockSummary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build stock summary", "details": err.Error()})
		return
	}

	if c.Query("export") == "xlsx" {
		path, err := h.exporter.StockSummary(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export stock summary", "details": err.Error()})
			return
		}
		c.FileAttachment(path, filepath.Base(path))
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows)})
}

func (h *ReportHandler) StockAvailability(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	rows, err := h.service.StockAvailability(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build stock availability", "details": err.Error()})
		return
	}

	if c.Query("export") == "xlsx" {
		path, err := h.exporter.StockAvailability(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export stock availability", "details": err.Error()})
			return
		}
		c.FileAttachment(path, filepath.Base(path))
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": len(rows)})
}

func (h *ReportHandler) ExpirySchedule(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}

	schedule, err := h.service.ExpirySchedule(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build expiry schedule", "details": err.Error()})
		return
	}

	if c.Query("export") == "xlsx" {
		path, err := h.exporter.ExpirySchedule(schedule)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export expiry schedule", "details": err.Error()})
			return
		}
		c.FileAttachment(path, filepath.Base(path))
		return
	}

	c.JSON(http.StatusOK, schedule)
}
