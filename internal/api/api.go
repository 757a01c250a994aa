package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/iseprep/backend/internal/api/handlers"
	"github.com/iseprep/backend/internal/api/middleware"
	"github.com/iseprep/backend/internal/backup"
	"github.com/iseprep/backend/internal/export"
	"github.com/iseprep/backend/internal/service"
)

type Services struct {
	OrderService    *service.OrderService
	ReportService   *service.ReportService
	MovementService *service.MovementService
	BackupService   *backup.Service
	Exporter        *export.Exporter
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.OrderService != nil {
			orderHandler := handlers.NewOrderHandler(services.OrderService, services.Exporter)
			orderGroup := apiGroup.Group("/order")
			{
				orderGroup.POST("/report", orderHandler.BuildReport)
				orderGroup.POST("/export", orderHandler.Export)
			}
		}

		if services.ReportService != nil {
			reportHandler := handlers.NewReportHandler(services.ReportService, services.Exporter)
			reportGroup := apiGroup.Group("/reports")
			{
				reportGroup.GET("/statement", reportHandler.StockStatement)
				reportGroup.GET("/summary", reportHandler.StockSummary)
				reportGroup.GET("/availability", reportHandler.StockAvailability)
				reportGroup.GET("/expiry", reportHandler.ExpirySchedule)
			}

			lookupHandler := handlers.NewLookupHandler(services.ReportService)
			lookupGroup := apiGroup.Group("/lookups")
			{
				lookupGroup.GET("/scenarios", lookupHandler.Scenarios)
				lookupGroup.GET("/kits", lookupHandler.KitNumbers)
				lookupGroup.GET("/modules", lookupHandler.ModuleNumbers)
				lookupGroup.GET("/third_parties", lookupHandler.ThirdParties)
				lookupGroup.GET("/items", lookupHandler.SearchItems)
			}
			apiGroup.GET("/settings/project", lookupHandler.ProjectSettings)
		}

		if services.MovementService != nil {
			movementHandler := handlers.NewMovementHandler(services.MovementService, services.Exporter)
			movementGroup := apiGroup.Group("/movements")
			{
				movementGroup.GET("/consumption", movementHandler.Consumption)
				movementGroup.GET("/loans", movementHandler.Loans)
				movementGroup.GET("/donations", movementHandler.Donations)
			}
		}

		if services.ReportService != nil && services.BackupService != nil {
			adminHandler := handlers.NewAdminHandler(services.ReportService, services.BackupService)
			adminGroup := apiGroup.Group("/admin")
			{
				adminGroup.POST("/snapshots/refresh", adminHandler.RefreshSnapshots)
				adminGroup.POST("/backups", adminHandler.CreateBackup)
				adminGroup.GET("/backups", adminHandler.ListBackups)
				adminGroup.POST("/backups/restore", adminHandler.RestoreBackup)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
