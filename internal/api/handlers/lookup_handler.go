package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iseprep/backend/internal/service"
)

type LookupHandler struct {
	service *service.ReportService
}

func NewLookupHandler(service *service.ReportService) *LookupHandler {
	return &LookupHandler{service: service}
}

func (h *LookupHandler) Scenarios(c *gin.Context) {
	scenarios, err := h.service.Scenarios(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch scenarios", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
}

func (h *LookupHandler) KitNumbers(c *gin.Context) {
	kits, err := h.service.KitNumbers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch kit numbers", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kits": kits})
}

func (h *LookupHandler) ModuleNumbers(c *gin.Context) {
	modules, err := h.service.ModuleNumbers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch module numbers", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

func (h *LookupHandler) ThirdParties(c *gin.Context) {
	parties, err := h.service.ThirdParties(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch third parties", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"third_parties": parties})
}

func (h *LookupHandler) SearchItems(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	itemType := strings.TrimSpace(c.Query("type"))

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	items, err := h.service.SearchItems(c.Request.Context(), itemType, query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search items", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *LookupHandler) ProjectSettings(c *gin.Context) {
	settings, err := h.service.ProjectSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch project settings", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}
