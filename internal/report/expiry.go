package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iseprep/backend/internal/domain"
)

// ExpiryParams collects everything the projection schedule needs. Lots
// and the lookup maps come straight from the aggregator inputs; AMC is
// the already-rounded per-code map.
type ExpiryParams struct {
	Today        time.Time
	PeriodMonths int
	AMCMonths    int
	Filter       domain.ReportFilter
	Lots         []domain.StockLot
	AMC          map[string]float64
	TypeMap      map[string]domain.ItemType
	Items        map[string]domain.Item
	Scenarios    ScenarioIndex
}

type yearMonth struct {
	year  int
	month int
}

func (ym yearMonth) key() string {
	return fmt.Sprintf("%04d-%02d", ym.year, ym.month)
}

func (ym yearMonth) label() string {
	return time.Month(ym.month).String()[:3] + " " + strconv.Itoa(ym.year)
}

// expiryYearMonth parses just the year and month of an expiry value, so
// a date with an impossible day still lands in its calendar month.
func expiryYearMonth(expDate string) (yearMonth, bool) {
	if len(expDate) < 7 {
		return yearMonth{}, false
	}
	parts := strings.SplitN(expDate, "-", 3)
	if len(parts) < 2 {
		return yearMonth{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return yearMonth{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return yearMonth{}, false
	}
	return yearMonth{year: year, month: month}, true
}

// BuildExpirySchedule groups live stock by (code, expiry month) and
// projects each future bucket forward: stock expiring M months out has M
// months of consumption chances before it is lost, so the projected loss
// is the bucket quantity minus AMC times the inclusive month distance,
// floored at zero.
func BuildExpirySchedule(p ExpiryParams) domain.ExpirySchedule {
	current := yearMonth{year: p.Today.Year(), month: int(p.Today.Month())}
	horizonEnd := addYearMonth(current, p.PeriodMonths-1)

	wantMode := ""
	if !domain.IsAll(p.Filter.ManagementMode) {
		wantMode = domain.NormalizeManagementMode(p.Filter.ManagementMode)
	}

	type lotKey struct {
		code string
		ym   yearMonth
		raw  bool // true when the expiry value had no usable year-month
	}
	buckets := make(map[lotKey]int)
	comments := make(map[string]map[string]struct{})

	for _, lot := range p.Lots {
		code := domain.LotCode(lot)
		if code == "" {
			continue
		}
		qty := lot.QtyIn - lot.QtyOut
		if qty <= 0 {
			continue
		}

		if wantMode != "" && domain.NormalizeManagementMode(lot.ManagementMode) != wantMode {
			continue
		}
		if !domain.IsAll(p.Filter.Scenario) &&
			!strings.EqualFold(p.Scenarios.Resolve(lot.Scenario), p.Filter.Scenario) {
			continue
		}
		if !domain.IsAll(p.Filter.Kit) && !strings.EqualFold(lot.KitNumber, p.Filter.Kit) {
			continue
		}
		if !domain.IsAll(p.Filter.Module) && !strings.EqualFold(lot.ModuleNumber, p.Filter.Module) {
			continue
		}

		description := itemDescription(p.Items, code)
		codeType := domain.ClassifyType(code, description, p.TypeMap)
		if !p.Filter.MatchesType(codeType) {
			continue
		}
		if !p.Filter.MatchesItemSearch(code, description, codeType) {
			continue
		}
		if !p.Filter.MatchesTableSearch(code, description) {
			continue
		}

		key := lotKey{code: code}
		if ym, ok := expiryYearMonth(lot.ExpDate); ok {
			key.ym = ym
		} else {
			key.raw = true
		}
		buckets[key] += qty

		if c := strings.TrimSpace(lot.Comments); c != "" {
			set, ok := comments[code]
			if !ok {
				set = make(map[string]struct{})
				comments[code] = set
			}
			set[c] = struct{}{}
		}
	}

	// Column set: future months inside the horizon that actually hold stock.
	monthSet := make(map[yearMonth]struct{})
	for key := range buckets {
		if key.raw {
			continue
		}
		if key.ym == current || !withinRange(key.ym, current, horizonEnd) {
			continue
		}
		monthSet[key.ym] = struct{}{}
	}
	months := make([]yearMonth, 0, len(monthSet))
	for ym := range monthSet {
		months = append(months, ym)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].year < months[j].year ||
			(months[i].year == months[j].year && months[i].month < months[j].month)
	})

	rowsByCode := make(map[string]*domain.ExpiryRow)
	rowFor := func(code string) *domain.ExpiryRow {
		row, ok := rowsByCode[code]
		if !ok {
			row = &domain.ExpiryRow{
				Code:        code,
				Description: itemDescription(p.Items, code),
				Comments:    joinedComments(comments[code]),
				AMC:         p.AMC[code],
				Projections: make(map[string]int),
			}
			rowsByCode[code] = row
		}
		return row
	}

	for key, qty := range buckets {
		row := rowFor(key.code)
		switch {
		case key.raw:
			// no usable expiry month; counts nowhere
		case before(key.ym, current):
			row.ExpiredQty += qty
		case key.ym == current:
			row.ThisMonthQty += qty
		case withinRange(key.ym, current, horizonEnd):
			bucket := time.Date(key.ym.year, time.Month(key.ym.month), 1, 0, 0, 0, 0, time.UTC)
			monthsInclusive := MonthsBetweenInclusive(p.Today, bucket)
			projected := float64(qty) - row.AMC*float64(monthsInclusive)
			if projected < 0 {
				projected = 0
			}
			row.Projections[key.ym.key()] += int(roundFloat(projected, 0))
		}
	}

	schedule := domain.ExpirySchedule{
		Columns:      make([]domain.ExpiryColumn, 0, len(months)),
		ColumnTotals: make(map[string]int),
		AMCMonths:    p.AMCMonths,
		PeriodMonths: p.PeriodMonths,
	}
	for _, ym := range months {
		schedule.Columns = append(schedule.Columns, domain.ExpiryColumn{Key: ym.key(), Label: ym.label()})
	}

	codes := make([]string, 0, len(rowsByCode))
	for code := range rowsByCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		row := rowsByCode[code]
		row.RowTotal = row.ExpiredQty + row.ThisMonthQty
		for _, ym := range months {
			row.RowTotal += row.Projections[ym.key()]
		}

		schedule.ExpiredTotal += row.ExpiredQty
		schedule.ThisMonthTotal += row.ThisMonthQty
		schedule.GrandTotal += row.RowTotal
		schedule.AMCTotal += row.AMC
		for _, ym := range months {
			schedule.ColumnTotals[ym.key()] += row.Projections[ym.key()]
		}

		schedule.Rows = append(schedule.Rows, *row)
	}
	schedule.AMCTotal = roundFloat(schedule.AMCTotal, 2)

	return schedule
}

func addYearMonth(ym yearMonth, months int) yearMonth {
	total := ym.year*12 + (ym.month - 1) + months
	return yearMonth{year: total / 12, month: total%12 + 1}
}

func before(a, b yearMonth) bool {
	return a.year < b.year || (a.year == b.year && a.month < b.month)
}

func withinRange(ym, from, to yearMonth) bool {
	return !before(ym, from) && !before(to, ym)
}

func itemDescription(items map[string]domain.Item, code string) string {
	if item, ok := items[code]; ok {
		return item.Description
	}
	return ""
}

func joinedComments(set map[string]struct{}) string {
	if len(set) == 0 {
		return ""
	}
	parts := make([]string, 0, len(set))
	for c := range set {
		parts = append(parts, c)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
