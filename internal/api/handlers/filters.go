package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iseprep/backend/internal/domain"
)

// parseReportFilter binds the report filter from the query string and
// trims the free-text fields.
func parseReportFilter(c *gin.Context) (domain.ReportFilter, error) {
	var filter domain.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		return filter, err
	}
	normalizeFilter(&filter)
	return filter, nil
}

func normalizeFilter(f *domain.ReportFilter) {
	f.Scenario = strings.TrimSpace(f.Scenario)
	f.ManagementMode = strings.TrimSpace(f.ManagementMode)
	f.Kit = strings.TrimSpace(f.Kit)
	f.Module = strings.TrimSpace(f.Module)
	f.Type = strings.TrimSpace(f.Type)
	f.ItemSearch = strings.TrimSpace(f.ItemSearch)
	f.DateFrom = strings.TrimSpace(f.DateFrom)
	f.DateTo = strings.TrimSpace(f.DateTo)
	f.ThirdParty = strings.TrimSpace(f.ThirdParty)
	f.DocumentNumber = strings.TrimSpace(f.DocumentNumber)
	f.InType = strings.TrimSpace(f.InType)
	f.OutType = strings.TrimSpace(f.OutType)
	f.TableSearch = strings.TrimSpace(f.TableSearch)

	if f.ExpiryMonths < 0 {
		f.ExpiryMonths = 0
	}
	if f.AMCMonths < 0 {
		f.AMCMonths = 0
	}
}
