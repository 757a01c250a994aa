package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/export"
	"github.com/iseprep/backend/internal/service"
)

type OrderHandler struct {
	service  *service.OrderService
	exporter *export.Exporter
}

func NewOrderHandler(service *service.OrderService, exporter *export.Exporter) *OrderHandler {
	return &OrderHandler{service: service, exporter: exporter}
}

// orderRequest is the POST body of an order recompute: the filter plus
// the caller's session-local row overrides.
type orderRequest struct {
	Filter    domain.ReportFilter   `json:"filter"`
	Overrides domain.OrderOverrides `json:"overrides"`
}

func (h *OrderHandler) BuildReport(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order request", "details": err.Error()})
		return
	}
	normalizeFilter(&req.Filter)

	report, err := h.service.BuildOrderReport(c.Request.Context(), req.Filter, req.Overrides)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build order report", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *OrderHandler) Export(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order request", "details": err.Error()})
		return
	}
	normalizeFilter(&req.Filter)

	report, err := h.service.BuildOrderReport(c.Request.Context(), req.Filter, req.Overrides)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build order report", "details": err.Error()})
		return
	}

	var path string
	if c.Query("format") == "csv" {
		path, err = h.exporter.OrderCSV(report)
	} else {
		path, err = h.exporter.OrderReport(report)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export order report", "details": err.Error()})
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
