package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iseprep/backend/internal/cache"
	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/report"
	"github.com/iseprep/backend/internal/repository"
	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ReportDefaults carries the configured fallbacks applied when a request
// leaves the month parameters unset.
type ReportDefaults struct {
	AMCMonths          int
	ExpiryPeriodMonths int
}

// OrderService drives the order/needs engine: it fans the aggregators
// out in parallel, merges session overrides into the fresh figures and
// prices the result per pack.
type OrderService struct {
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

func NewOrderService(
	db *sqldb.DB,
	std repository.StandardQuantityRepository,
	stock repository.StockRepository,
	tx repository.TransactionRepository,
	master repository.MasterRepository,
	settings repository.SettingsRepository,
	cacheImpl cache.ReportCache,
	defaults ReportDefaults,
) *OrderService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &OrderService{
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

// orderAggregates is what the parallel fan-out produces. Each field
// degrades to its empty value when its aggregator fails; only a dead
// connection aborts the report as a whole.
type orderAggregates struct {
	stdByCode map[string]int
	lots      []domain.StockLot
	loanTxs   []domain.StockTransaction
	items     map[string]domain.Item
	typeMap   map[string]domain.ItemType
	scenarios []domain.Scenario
}

// BuildOrderReport computes the full order sheet for one filter set.
// Overrides are the caller's session-local row edits; they survive the
// recompute but never touch the database.
func (s *OrderService) BuildOrderReport(ctx context.Context, filter domain.ReportFilter, overrides domain.OrderOverrides) (*domain.OrderReport, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	horizon := s.horizonMonths(ctx, filter)
	cutoff := ""
	if horizon > 0 {
		cutoff = report.CutoffDate(s.now(), horizon)
	}

	agg := s.gather(ctx, filter)

	scenIdx := report.NewScenarioIndex(agg.scenarios)
	stockTotals := report.AggregateStock(agg.lots, filter, cutoff, agg.typeMap, scenIdx)
	loanBalances := report.LoanBalances(agg.loanTxs)

	// A code from any aggregator gets a row: loan-only codes still carry
	// a need once the balance is netted in.
	codes := make(map[string]struct{}, len(agg.stdByCode)+len(stockTotals)+len(loanBalances))
	for code := range agg.stdByCode {
		codes[code] = struct{}{}
	}
	for code := range stockTotals {
		codes[code] = struct{}{}
	}
	for code := range loanBalances {
		codes[code] = struct{}{}
	}
	sorted := make([]string, 0, len(codes))
	for code := range codes {
		sorted = append(sorted, code)
	}
	sort.Strings(sorted)

	out := &domain.OrderReport{
		Rows:          make([]domain.OrderRow, 0, len(sorted)),
		CutoffDate:    cutoff,
		HorizonMonths: horizon,
	}

	for _, code := range sorted {
		item := agg.items[code]
		codeType := domain.ClassifyType(code, item.Description, agg.typeMap)
		if !filter.MatchesType(codeType) {
			continue
		}
		if !filter.MatchesItemSearch(code, item.Description, codeType) {
			continue
		}

		totals := stockTotals[code]
		ov, hasOverride := overrides[code]

		in := report.OrderInputs{
			StandardQty:      agg.stdByCode[code],
			CurrentStock:     totals.CurrentStock,
			QtyExpiring:      totals.ExpiringQty,
			LoanBalance:      loanBalances[code],
			PackSize:         item.PackSize,
			PricePerPack:     item.PricePerPack,
			WeightPerPackKg:  item.WeightPerPackKg,
			VolumePerPackDm3: item.VolumePerPackDm3,
		}
		if ov.BackOrders != nil {
			in.BackOrders = *ov.BackOrders
		}
		if ov.LoanBalance != nil {
			in.LoanBalance = *ov.LoanBalance
		}
		if ov.PlannedDonsGive != nil {
			in.PlannedDonsGive = *ov.PlannedDonsGive
		}
		if ov.DonsReceive != nil {
			in.DonsReceive = *ov.DonsReceive
		}
		in.QtyToOrder = ov.QtyToOrder

		m := report.ComputeOrder(in)

		remarks := item.Remarks
		if ov.Remarks != nil {
			remarks = *ov.Remarks
		}

		// Totals follow the visible rows, so the table search narrows
		// both together.
		if !filter.MatchesTableSearch(code, item.Description, remarks) {
			continue
		}

		row := domain.OrderRow{
			Code:            code,
			Description:     item.Description,
			Type:            codeType,
			StandardQty:     in.StandardQty,
			CurrentStock:    in.CurrentStock,
			QtyExpiring:     in.QtyExpiring,
			BackOrders:      in.BackOrders,
			LoanBalance:     in.LoanBalance,
			PlannedDonsGive: in.PlannedDonsGive,
			DonsReceive:     in.DonsReceive,
			QtyNeeded:       m.QtyNeeded,
			QtyToOrder:      m.QtyToOrder,
			QtyToOrderRound: m.QtyToOrderRound,
			PackSize:        item.PackSize,
			Packs:           m.Packs,
			PricePerPack:    item.PricePerPack,
			Amount:          m.Amount,
			WeightKg:        m.WeightKg,
			VolumeM3:        m.VolumeM3,
			Remarks:         remarks,
			MissingPrice:    m.MissingPrice,
			Overridden:      hasOverride,
		}
		out.Rows = append(out.Rows, row)

		out.Totals.Amount = out.Totals.Amount.Add(m.Amount)
		out.Totals.WeightKg = out.Totals.WeightKg.Add(m.WeightKg)
		out.Totals.VolumeM3 = out.Totals.VolumeM3.Add(m.VolumeM3)
		if m.MissingPrice {
			out.Totals.MissingPriceCount++
		}
	}

	return out, nil
}

// horizonMonths resolves the order/expiry horizon: an explicit request
// value wins, otherwise the sum of the project's period settings.
func (s *OrderService) horizonMonths(ctx context.Context, filter domain.ReportFilter) int {
	if filter.ExpiryMonths > 0 {
		if filter.ExpiryMonths > 99 {
			return 99
		}
		return filter.ExpiryMonths
	}

	settings, err := s.settings.ProjectSettings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("order: project settings unavailable, horizon disabled")
		return 0
	}
	return settings.HorizonMonths()
}

// gather runs the aggregator reads in parallel. They are independent
// pure reads, so each failure degrades that aggregator to empty output
// instead of failing the report.
func (s *OrderService) gather(ctx context.Context, filter domain.ReportFilter) orderAggregates {
	agg := orderAggregates{
		stdByCode: map[string]int{},
		items:     map[string]domain.Item{},
		typeMap:   map[string]domain.ItemType{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := s.std.SumByCode(gctx, filter)
		if err != nil {
			log.Warn().Err(err).Msg("order: standard quantity aggregation failed")
			return nil
		}
		agg.stdByCode = m
		return nil
	})
	g.Go(func() error {
		lots, err := s.stock.ListLots(gctx, "")
		if err != nil {
			log.Warn().Err(err).Msg("order: stock lot scan failed")
			return nil
		}
		agg.lots = lots
		return nil
	})
	g.Go(func() error {
		txs, err := s.tx.Movements(gctx, repository.MovementFilter{
			InTypes:  domain.LoanInTypes,
			OutTypes: domain.LoanOutTypes,
			Kit:      filter.Kit,
			Module:   filter.Module,
		})
		if err != nil {
			log.Warn().Err(err).Msg("order: loan ledger read failed")
			return nil
		}
		agg.loanTxs = txs
		return nil
	})
	g.Go(func() error {
		items, err := s.master.ItemsByCode(gctx, nil)
		if err != nil {
			log.Warn().Err(err).Msg("order: item metadata read failed")
			return nil
		}
		agg.items = items
		return nil
	})
	g.Go(func() error {
		types, err := s.master.TypeMap(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("order: type map read failed")
			return nil
		}
		agg.typeMap = types
		return nil
	})
	g.Go(func() error {
		scenarios, err := s.master.Scenarios(gctx)
		if err != nil {
			log.Warn().Err(err).Msg("order: scenario list read failed")
			return nil
		}
		agg.scenarios = scenarios
		return nil
	})

	// goroutines only ever return nil; Wait just synchronizes
	_ = g.Wait()

	return agg
}
