package cache

import (
	"context"
	"testing"

	"github.com/iseprep/backend/internal/config"
	"github.com/iseprep/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	a := domain.ReportFilter{Scenario: "Cholera", Kit: "Kit 1", ExpiryMonths: 6}
	b := domain.ReportFilter{Scenario: "Cholera", Kit: "Kit 1", ExpiryMonths: 6}
	c := domain.ReportFilter{Scenario: "Cholera", Kit: "Kit 2", ExpiryMonths: 6}

	assert.Equal(t, reportKey("statement", a), reportKey("statement", b))
	assert.NotEqual(t, reportKey("statement", a), reportKey("statement", c))
	assert.NotEqual(t, reportKey("statement", a), reportKey("order", a))
	assert.Contains(t, reportKey("statement", a), "report:statement:")
}

func TestNoopReportCache(t *testing.T) {
	cache, err := NewReportCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "statement", domain.ReportFilter{}, map[string]int{"a": 1}))

	var dest map[string]int
	hit, err := cache.Get(ctx, "statement", domain.ReportFilter{}, &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, dest)

	require.NoError(t, cache.InvalidateAll(ctx))
}
