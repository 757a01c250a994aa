package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISODate(t *testing.T) {
	d, ok := ParseISODate("2026-02-28")
	require.True(t, ok)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.February, d.Month())

	for _, bad := range []string{"", "2026-2-28", "2026-02-30", "28/02/2026", "no expiry", "2026-13-01"} {
		_, ok := ParseISODate(bad)
		assert.False(t, ok, bad)
	}
}

func TestCutoffDate(t *testing.T) {
	today := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-01-31", CutoffDate(today, 0))
	assert.Equal(t, "2026-02-28", CutoffDate(today, 1))
	assert.Equal(t, "2026-07-31", CutoffDate(today, 6))
	// year rollover
	assert.Equal(t, "2027-01-31", CutoffDate(today, 12))

	// leap year February
	assert.Equal(t, "2028-02-29", CutoffDate(time.Date(2027, time.December, 1, 0, 0, 0, 0, time.UTC), 2))
}

func TestAMCWindow(t *testing.T) {
	today := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	from, to := AMCWindow(today, 6)
	assert.Equal(t, "2025-10-01", from)
	assert.Equal(t, "2026-03-31", to)

	from, to = AMCWindow(today, 1)
	assert.Equal(t, "2026-03-01", from)
	assert.Equal(t, "2026-03-31", to)

	from, to = AMCWindow(today, 0)
	assert.Empty(t, from)
	assert.Empty(t, to)
}

func TestMonthKeys(t *testing.T) {
	keys := MonthKeys("2025-11-15", "2026-02-03")
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, keys)

	assert.Nil(t, MonthKeys("bad", "2026-02-03"))
	assert.Nil(t, MonthKeys("2025-11-15", ""))
	assert.Nil(t, MonthKeys("2026-03-01", "2026-02-01"))
}

func TestMonthsBetweenInclusive(t *testing.T) {
	today := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, MonthsBetweenInclusive(today, time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 3, MonthsBetweenInclusive(today, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, MonthsBetweenInclusive(today, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)))
}

func TestClampMonths(t *testing.T) {
	assert.Equal(t, 12, ClampMonths(0, 1, 99, 12))
	assert.Equal(t, 6, ClampMonths(6, 1, 99, 12))
	assert.Equal(t, 99, ClampMonths(100, 1, 99, 12))
	assert.Equal(t, 1, ClampMonths(-3, 1, 99, 12))
}
