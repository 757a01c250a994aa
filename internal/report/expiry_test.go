package report

import (
	"testing"
	"time"

	"github.com/iseprep/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiryYearMonth(t *testing.T) {
	ym, ok := expiryYearMonth("2026-03-15")
	require.True(t, ok)
	assert.Equal(t, "2026-03", ym.key())
	assert.Equal(t, "Mar 2026", ym.label())

	// impossible day still lands in its calendar month
	ym, ok = expiryYearMonth("2024-02-30")
	require.True(t, ok)
	assert.Equal(t, "2024-02", ym.key())

	for _, bad := range []string{"", "no expiry", "2026", "2026-13-01", "abcd-ef"} {
		_, ok := expiryYearMonth(bad)
		assert.False(t, ok, bad)
	}
}

func TestBuildExpirySchedule(t *testing.T) {
	today := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	lots := []domain.StockLot{
		{Item: "AAA", QtyIn: 10, ExpDate: "2026-03-15"},
		{Item: "AAA", QtyIn: 5, ExpDate: "2025-12-01"},
		{Item: "AAA", QtyIn: 2, ExpDate: "2026-01-20", Comments: "fridge"},
		{Item: "BBB", QtyIn: 6, ExpDate: "2026-02-30"},
		{Item: "BBB", QtyIn: 9, ExpDate: ""},
		{Item: "CCC", QtyIn: 4, ExpDate: "2027-06-01"},
		{Item: "DDD", QtyIn: 3, QtyOut: 3, ExpDate: "2026-02-01"},
	}

	schedule := BuildExpirySchedule(ExpiryParams{
		Today:        today,
		PeriodMonths: 12,
		AMCMonths:    6,
		Lots:         lots,
		AMC:          map[string]float64{"AAA": 2},
		Scenarios:    NewScenarioIndex(nil),
	})

	require.Len(t, schedule.Columns, 2)
	assert.Equal(t, "2026-02", schedule.Columns[0].Key)
	assert.Equal(t, "Feb 2026", schedule.Columns[0].Label)
	assert.Equal(t, "2026-03", schedule.Columns[1].Key)

	require.Len(t, schedule.Rows, 3)

	aaa := schedule.Rows[0]
	assert.Equal(t, "AAA", aaa.Code)
	assert.Equal(t, 5, aaa.ExpiredQty)
	assert.Equal(t, 2, aaa.ThisMonthQty)
	// 10 expiring in March, minus 3 months of consumption at AMC 2
	assert.Equal(t, 4, aaa.Projections["2026-03"])
	assert.Equal(t, 11, aaa.RowTotal)
	assert.Equal(t, "fridge", aaa.Comments)

	bbb := schedule.Rows[1]
	assert.Equal(t, "BBB", bbb.Code)
	// the lenient 2026-02-30 lot projects raw with no AMC; the dateless
	// lot counts nowhere
	assert.Equal(t, 6, bbb.Projections["2026-02"])
	assert.Equal(t, 6, bbb.RowTotal)

	// beyond the 12 month horizon: the code shows but carries nothing
	ccc := schedule.Rows[2]
	assert.Equal(t, "CCC", ccc.Code)
	assert.Equal(t, 0, ccc.RowTotal)

	assert.Equal(t, 5, schedule.ExpiredTotal)
	assert.Equal(t, 2, schedule.ThisMonthTotal)
	assert.Equal(t, 6, schedule.ColumnTotals["2026-02"])
	assert.Equal(t, 4, schedule.ColumnTotals["2026-03"])
	assert.Equal(t, 17, schedule.GrandTotal)
	assert.InDelta(t, 2, schedule.AMCTotal, 0.001)
}

func TestBuildExpiryScheduleProjectionFloor(t *testing.T) {
	today := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	schedule := BuildExpirySchedule(ExpiryParams{
		Today:        today,
		PeriodMonths: 6,
		Lots: []domain.StockLot{
			{Item: "AAA", QtyIn: 5, ExpDate: "2026-04-01"},
		},
		AMC:       map[string]float64{"AAA": 10},
		Scenarios: NewScenarioIndex(nil),
	})

	require.Len(t, schedule.Rows, 1)
	// consumption outpaces the stock; nothing is projected to be lost
	assert.Equal(t, 0, schedule.Rows[0].Projections["2026-04"])
	assert.Equal(t, 0, schedule.GrandTotal)
}

func TestBuildExpiryScheduleFilters(t *testing.T) {
	today := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	lots := []domain.StockLot{
		{Item: "AAA", QtyIn: 5, ExpDate: "2026-02-01", KitNumber: "Kit 1", ManagementMode: "on_shelf"},
		{Item: "BBB", QtyIn: 7, ExpDate: "2026-02-01", KitNumber: "Kit 2", ManagementMode: "in-box"},
	}

	schedule := BuildExpirySchedule(ExpiryParams{
		Today:        today,
		PeriodMonths: 12,
		Filter:       domain.ReportFilter{Kit: "kit 1"},
		Lots:         lots,
		Scenarios:    NewScenarioIndex(nil),
	})
	require.Len(t, schedule.Rows, 1)
	assert.Equal(t, "AAA", schedule.Rows[0].Code)

	schedule = BuildExpirySchedule(ExpiryParams{
		Today:        today,
		PeriodMonths: 12,
		Filter:       domain.ReportFilter{ManagementMode: "on-shelf"},
		Lots:         lots,
		Scenarios:    NewScenarioIndex(nil),
	})
	require.Len(t, schedule.Rows, 1)
	assert.Equal(t, "AAA", schedule.Rows[0].Code)

	// table search narrows rows and totals together
	schedule = BuildExpirySchedule(ExpiryParams{
		Today:        today,
		PeriodMonths: 12,
		Filter:       domain.ReportFilter{TableSearch: "bbb"},
		Lots:         lots,
		Scenarios:    NewScenarioIndex(nil),
	})
	require.Len(t, schedule.Rows, 1)
	assert.Equal(t, "BBB", schedule.Rows[0].Code)
	assert.Equal(t, 7, schedule.GrandTotal)
}
