package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/iseprep/backend/internal/cache"
	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/report"
	"github.com/iseprep/backend/internal/repository"
	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ReportService serves the stock statement, summary, availability and
// expiry projection reports, plus the snapshot refresh that feeds the
// standard-quantity tables.
type ReportService struct {
	db       *sqldb.DB
	std      repository.StandardQuantityRepository
	stock    repository.StockRepository
	tx       repository.TransactionRepository
	master   repository.MasterRepository
	settings repository.SettingsRepository
	cache    cache.ReportCache
	defaults ReportDefaults

	now func() time.Time
}

func NewReportService(
	db *sqldb.DB,
	std repository.StandardQuantityRepository,
	stock repository.StockRepository,
	tx repository.TransactionRepository,
	master repository.MasterRepository,
	settings repository.SettingsRepository,
	cacheImpl cache.ReportCache,
	defaults ReportDefaults,
) *ReportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &ReportService{
		db:       db,
		std:      std,
		stock:    stock,
		tx:       tx,
		master:   master,
		settings: settings,
		cache:    cacheImpl,
		defaults: defaults,
		now:      time.Now,
	}
}

// RefreshSnapshots rebuilds the standard-quantity snapshot tables and
// drops every memoized report, since they all read from the snapshots.
func (s *ReportService) RefreshSnapshots(ctx context.Context) (domain.SnapshotRefreshSummary, error) {
	summary, err := sqldb.RefreshSnapshots(ctx, s.db)
	if err != nil {
		return summary, err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("report: cache invalidation after snapshot refresh failed")
	}
	return summary, nil
}

// StockStatement compares standard quantities against live stock per
// code. The snapshots are rebuilt first so the statement always reflects
// the current kit configuration.
func (s *ReportService) StockStatement(ctx context.Context, filter domain.ReportFilter) (*domain.StatementReport, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	if _, err := s.RefreshSnapshots(ctx); err != nil {
		return nil, err
	}

	var cached domain.StatementReport
	if ok, err := s.cache.Get(ctx, "statement", filter, &cached); err == nil && ok {
		return &cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("report: statement cache get failed")
	}

	horizon := s.horizonMonths(ctx, filter)
	cutoff := ""
	if horizon > 0 {
		cutoff = report.CutoffDate(s.now(), horizon)
	}

	var (
		stdByCode = map[string]int{}
		lots      []domain.StockLot
		typeMap   = map[string]domain.ItemType{}
		scenarios []domain.Scenario
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.std.SumByCode(gctx, filter)
		if err != nil {
			log.Warn().Err(err).Msg("report: standard quantity aggregation failed")
			return nil
		}
		stdByCode = m
		return nil
	})
	g.Go(func() error {
		l, err := s.stock.ListLots(gctx, "")
		if err != nil {
			log.Warn().Err(err).Msg("report: stock lot scan failed")
			return nil
		}
		lots = l
		return nil
	})
	g.Go(func() error {
		t, err := s.master.TypeMap(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("report: type map read failed")
			return nil
		}
		typeMap = t
		return nil
	})
	g.Go(func() error {
		sc, err := s.master.Scenarios(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("report: scenario list read failed")
			return nil
		}
		scenarios = sc
		return nil
	})
	_ = g.Wait()

	stockTotals := report.AggregateStock(lots, filter, cutoff, typeMap, report.NewScenarioIndex(scenarios))

	codes := make(map[string]struct{}, len(stdByCode)+len(stockTotals))
	for code := range stdByCode {
		codes[code] = struct{}{}
	}
	for code := range stockTotals {
		codes[code] = struct{}{}
	}
	sorted := make([]string, 0, len(codes))
	for code := range codes {
		sorted = append(sorted, code)
	}
	sort.Strings(sorted)

	items, err := s.master.ItemsByCode(ctx, sorted)
	if err != nil {
		log.Warn().Err(err).Msg("report: item metadata read failed")
		items = map[string]domain.Item{}
	}

	out := &domain.StatementReport{
		Rows:          make([]domain.StatementRow, 0, len(sorted)),
		CutoffDate:    cutoff,
		HorizonMonths: horizon,
	}
	for _, code := range sorted {
		item := items[code]
		codeType := domain.ClassifyType(code, item.Description, typeMap)
		if !filter.MatchesType(codeType) {
			continue
		}
		if !filter.MatchesItemSearch(code, item.Description, codeType) {
			continue
		}

		std := stdByCode[code]
		totals := stockTotals[code]
		over := overStock(std, totals.CurrentStock)
		missing := missingQty(std, totals.CurrentStock, totals.ExpiringQty)

		// Totals always span the whole filtered set; the table search
		// only narrows which rows are shown.
		out.Totals.StandardQty += std
		out.Totals.CurrentStock += totals.CurrentStock
		out.Totals.QtyExpiring += totals.ExpiringQty
		out.Totals.OverStock += over
		out.Totals.MissingQty += missing

		if !filter.MatchesTableSearch(code, item.Description) {
			continue
		}

		out.Rows = append(out.Rows, domain.StatementRow{
			Code:            code,
			Description:     item.Description,
			Type:            codeType,
			StandardQty:     std,
			CurrentStock:    totals.CurrentStock,
			QtyExpiring:     totals.ExpiringQty,
			OverStock:       over,
			MissingQty:      missing,
			PackSize:        item.PackSize,
			PricePerPack:    item.PricePerPack,
			UnitPrice:       item.UnitPrice,
			WeightPerPackKg: item.WeightPerPackKg,
			VolumePerPack:   item.VolumePerPackDm3,
			ShelfLifeMonths: item.ShelfLifeMonths,
			Remarks:         item.Remarks,
			AccountCode:     item.AccountCode,
		})
	}

	if err := s.cache.Set(ctx, "statement", filter, out); err != nil {
		log.Warn().Err(err).Msg("report: statement cache set failed")
	}

	return out, nil
}

// overStock is the surplus above the configured standard quantity.
func overStock(std, current int) int {
	if current > std {
		return current - std
	}
	return 0
}

// missingQty is the shortage once expiring stock is written off. Only
// expiring stock that actually counts against the standard is replaced.
func missingQty(std, current, expiring int) int {
	if expiring > std {
		expiring = std
	}
	missing := std - current + expiring
	if missing < 0 {
		return 0
	}
	return missing
}

// StockSummary rolls live stock up per (scenario, kit slot, module slot,
// code) with the collective standard quantity for coverage.
func (s *ReportService) StockSummary(ctx context.Context, filter domain.ReportFilter) ([]domain.SummaryRow, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	horizon := s.periodMonths(ctx, filter)
	cutoff := ""
	if horizon > 0 {
		cutoff = report.CutoffDate(s.now(), horizon)
	}

	lots, err := s.stock.ListLots(ctx, "")
	if err != nil {
		return nil, err
	}
	scenarios, err := s.master.Scenarios(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("summary: scenario list read failed")
	}
	scenIdx := report.NewScenarioIndex(scenarios)

	collective, err := s.std.CollectiveByCode(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("summary: collective standard quantities unavailable")
		collective = map[string]int{}
	}

	wantMode := ""
	if !domain.IsAll(filter.ManagementMode) {
		wantMode = domain.NormalizeManagementMode(filter.ManagementMode)
	}

	type summaryKey struct {
		scenario     string
		kitNumber    string
		moduleNumber string
		code         string
	}
	type summaryAgg struct {
		currentStock   int
		expiringQty    int
		earliestExpiry string
		modes          map[string]struct{}
	}

	grouped := make(map[summaryKey]*summaryAgg)
	for _, lot := range lots {
		code := firstCode(lot.Item, lot.Module, lot.Kit)
		if code == "" {
			continue
		}
		if wantMode != "" && domain.NormalizeManagementMode(lot.ManagementMode) != wantMode {
			continue
		}
		scenario := scenIdx.Resolve(lot.Scenario)
		if !domain.IsAll(filter.Scenario) && scenario != filter.Scenario {
			continue
		}
		if !domain.IsAll(filter.Kit) && lot.KitNumber != filter.Kit {
			continue
		}
		if !domain.IsAll(filter.Module) && lot.ModuleNumber != filter.Module {
			continue
		}

		key := summaryKey{scenario: scenario, kitNumber: lot.KitNumber, moduleNumber: lot.ModuleNumber, code: code}
		agg, ok := grouped[key]
		if !ok {
			agg = &summaryAgg{modes: make(map[string]struct{})}
			grouped[key] = agg
		}
		agg.currentStock += lot.FinalQty
		if lot.ExpDate != "" {
			if cutoff != "" && lot.ExpDate <= cutoff {
				agg.expiringQty += lot.FinalQty
			}
			if agg.earliestExpiry == "" || lot.ExpDate < agg.earliestExpiry {
				agg.earliestExpiry = lot.ExpDate
			}
		}
		if mode := strings.TrimSpace(lot.ManagementMode); mode != "" {
			agg.modes[mode] = struct{}{}
		}
	}

	codes := make([]string, 0, len(grouped))
	seen := make(map[string]struct{})
	for key := range grouped {
		if _, ok := seen[key.code]; !ok {
			seen[key.code] = struct{}{}
			codes = append(codes, key.code)
		}
	}
	items, err := s.master.ItemsByCode(ctx, codes)
	if err != nil {
		log.Warn().Err(err).Msg("summary: item metadata read failed")
		items = map[string]domain.Item{}
	}

	rows := make([]domain.SummaryRow, 0, len(grouped))
	for key, agg := range grouped {
		item := items[key.code]
		if !filter.MatchesType(item.Type) {
			continue
		}
		if !filter.MatchesItemSearch(key.code, item.Description, item.Type) {
			continue
		}
		if !filter.MatchesTableSearch(key.code, item.Description, key.scenario, key.kitNumber, key.moduleNumber) {
			continue
		}

		std := collective[key.code]
		var coverage *float64
		if std > 0 {
			pct := math.Round(float64(agg.currentStock)*1000/float64(std)) / 10
			coverage = &pct
		}

		earliest := agg.earliestExpiry
		if _, ok := report.ParseISODate(earliest); !ok {
			earliest = ""
		}

		modes := make([]string, 0, len(agg.modes))
		for m := range agg.modes {
			modes = append(modes, m)
		}
		sort.Strings(modes)

		rows = append(rows, domain.SummaryRow{
			Scenario:        key.scenario,
			KitNumber:       key.kitNumber,
			ModuleNumber:    key.moduleNumber,
			Code:            key.code,
			Description:     item.Description,
			Type:            item.Type,
			ManagementModes: strings.Join(modes, ", "),
			StandardQty:     std,
			CurrentStock:    agg.currentStock,
			CoveragePct:     coverage,
			QtyExpiring:     agg.expiringQty,
			EarliestExpiry:  earliest,
			OverStock:       overStock(std, agg.currentStock),
			MissingQty:      missingQty(std, agg.currentStock, agg.expiringQty),
			Remarks:         item.Remarks,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Scenario != b.Scenario {
			return a.Scenario < b.Scenario
		}
		if a.KitNumber != b.KitNumber {
			return a.KitNumber < b.KitNumber
		}
		if a.ModuleNumber != b.ModuleNumber {
			return a.ModuleNumber < b.ModuleNumber
		}
		return a.Code < b.Code
	})

	return rows, nil
}

func firstCode(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !strings.EqualFold(v, "none") {
			return v
		}
	}
	return ""
}

// StockAvailability lists live lots with their expiry posture: expired
// lots first, then by months to expiry. Lots past the horizon drop out;
// lots with no expiry date always stay.
func (s *ReportService) StockAvailability(ctx context.Context, filter domain.ReportFilter) ([]domain.AvailabilityRow, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	period := s.periodMonths(ctx, filter)
	amcMonths := report.ClampMonths(filter.AMCMonths, 1, 99, s.defaults.AMCMonths)

	lots, err := s.stock.ListLots(ctx, "")
	if err != nil {
		return nil, err
	}
	amc := s.amcByCode(ctx, amcMonths)
	items, err := s.master.ItemsByCode(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("availability: item metadata read failed")
		items = map[string]domain.Item{}
	}
	scenarios, err := s.master.Scenarios(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("availability: scenario list read failed")
	}
	scenIdx := report.NewScenarioIndex(scenarios)

	wantMode := ""
	if !domain.IsAll(filter.ManagementMode) {
		wantMode = domain.NormalizeManagementMode(filter.ManagementMode)
	}

	today := s.now()
	rows := make([]domain.AvailabilityRow, 0, len(lots))
	for _, lot := range lots {
		if lot.FinalQty <= 0 {
			continue
		}
		code := domain.LotCode(lot)
		if code == "" {
			continue
		}
		if wantMode != "" && domain.NormalizeManagementMode(lot.ManagementMode) != wantMode {
			continue
		}
		scenario := scenIdx.Resolve(lot.Scenario)
		if !domain.IsAll(filter.Scenario) && !strings.EqualFold(scenario, filter.Scenario) {
			continue
		}
		if !domain.IsAll(filter.Kit) && !strings.EqualFold(lot.KitNumber, filter.Kit) {
			continue
		}
		if !domain.IsAll(filter.Module) && !strings.EqualFold(lot.ModuleNumber, filter.Module) {
			continue
		}

		item := items[code]
		codeType := item.Type
		if codeType == "" {
			codeType = domain.DetectType(code, item.Description)
		}
		if !filter.MatchesType(codeType) {
			continue
		}
		if !filter.MatchesItemSearch(code, item.Description, codeType) {
			continue
		}
		if !filter.MatchesTableSearch(code, item.Description, scenario, lot.KitNumber, lot.ModuleNumber) {
			continue
		}

		var monthsToExpiry *int
		expired := false
		if expDate, ok := report.ParseISODate(lot.ExpDate); ok {
			months := (expDate.Year()-today.Year())*12 + int(expDate.Month()) - int(today.Month())
			if period > 0 && months > period-1 {
				continue
			}
			monthsToExpiry = &months
			expired = expDate.Before(today.Truncate(24 * time.Hour))
		}

		rows = append(rows, domain.AvailabilityRow{
			Code:           code,
			Description:    item.Description,
			Type:           codeType,
			Scenario:       scenario,
			KitNumber:      lot.KitNumber,
			ModuleNumber:   lot.ModuleNumber,
			ManagementMode: strings.TrimSpace(lot.ManagementMode),
			Quantity:       lot.FinalQty,
			QtyIn:          lot.QtyIn,
			QtyOut:         lot.QtyOut,
			Discrepancy:    lot.Discrepancy,
			ExpiryDate:     lot.ExpDate,
			MonthsToExpiry: monthsToExpiry,
			Expired:        expired,
			AMC:            amc[code],
			Comments:       lot.Comments,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Expired != b.Expired {
			return a.Expired
		}
		am, bm := 9999, 9999
		if a.MonthsToExpiry != nil {
			am = *a.MonthsToExpiry
		}
		if b.MonthsToExpiry != nil {
			bm = *b.MonthsToExpiry
		}
		if am != bm {
			return am < bm
		}
		return a.Code < b.Code
	})

	return rows, nil
}

// ExpirySchedule projects expiring stock month by month against AMC.
func (s *ReportService) ExpirySchedule(ctx context.Context, filter domain.ReportFilter) (*domain.ExpirySchedule, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	period := report.ClampMonths(filter.ExpiryMonths, 1, 99, s.defaults.ExpiryPeriodMonths)
	amcMonths := filter.AMCMonths
	if amcMonths == 0 {
		amcMonths = s.defaults.AMCMonths
	}
	amcMonths = report.ClampMonths(amcMonths, 0, 99, 0)

	lots, err := s.stock.ListLots(ctx, "")
	if err != nil {
		return nil, err
	}
	items, err := s.master.ItemsByCode(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("expiry: item metadata read failed")
		items = map[string]domain.Item{}
	}
	typeMap, err := s.master.TypeMap(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("expiry: type map read failed")
		typeMap = map[string]domain.ItemType{}
	}
	scenarios, err := s.master.Scenarios(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("expiry: scenario list read failed")
	}

	schedule := report.BuildExpirySchedule(report.ExpiryParams{
		Today:        s.now(),
		PeriodMonths: period,
		AMCMonths:    amcMonths,
		Filter:       filter,
		Lots:         lots,
		AMC:          s.amcByCode(ctx, amcMonths),
		TypeMap:      typeMap,
		Items:        items,
		Scenarios:    report.NewScenarioIndex(scenarios),
	})
	return &schedule, nil
}

// amcByCode computes the rounded AMC map, degrading to empty on failure
// or when the feature is disabled.
func (s *ReportService) amcByCode(ctx context.Context, amcMonths int) map[string]float64 {
	if amcMonths <= 0 {
		return map[string]float64{}
	}
	from, to := report.AMCWindow(s.now(), amcMonths)
	consumed, err := s.tx.ConsumptionByCode(ctx, from, to)
	if err != nil {
		log.Warn().Err(err).Msg("report: consumption aggregation failed")
		return map[string]float64{}
	}
	return report.ComputeAMC(consumed, amcMonths)
}

func (s *ReportService) horizonMonths(ctx context.Context, filter domain.ReportFilter) int {
	if filter.ExpiryMonths > 0 {
		if filter.ExpiryMonths > 99 {
			return 99
		}
		return filter.ExpiryMonths
	}
	settings, err := s.settings.ProjectSettings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("report: project settings unavailable, horizon disabled")
		return 0
	}
	return settings.HorizonMonths()
}

// periodMonths resolves the expiry window for the lot-level reports,
// falling back to the configured default period.
func (s *ReportService) periodMonths(ctx context.Context, filter domain.ReportFilter) int {
	if filter.ExpiryMonths > 0 {
		if filter.ExpiryMonths > 99 {
			return 99
		}
		return filter.ExpiryMonths
	}
	settings, err := s.settings.ProjectSettings(ctx)
	if err == nil {
		if h := settings.HorizonMonths(); h > 0 {
			return h
		}
	}
	return s.defaults.ExpiryPeriodMonths
}

// Lookups for the filter dropdowns.

func (s *ReportService) Scenarios(ctx context.Context) ([]domain.Scenario, error) {
	return s.master.Scenarios(ctx)
}

func (s *ReportService) KitNumbers(ctx context.Context) ([]string, error) {
	return s.stock.DistinctKitNumbers(ctx)
}

func (s *ReportService) ModuleNumbers(ctx context.Context) ([]string, error) {
	return s.stock.DistinctModuleNumbers(ctx)
}

func (s *ReportService) ThirdParties(ctx context.Context) ([]string, error) {
	return s.settings.ThirdParties(ctx)
}

func (s *ReportService) SearchItems(ctx context.Context, itemType, query string, limit int) ([]domain.Item, error) {
	return s.master.SearchItems(ctx, itemType, query, limit)
}

func (s *ReportService) ProjectSettings(ctx context.Context) (domain.ProjectSettings, error) {
	return s.settings.ProjectSettings(ctx)
}
