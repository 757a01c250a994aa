package service

import (
	"context"
	"testing"

	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStandardRepo struct {
	sums map[string]int
}

func (s *stubStandardRepo) SumByCode(context.Context, domain.ReportFilter) (map[string]int, error) {
	return s.sums, nil
}

func (s *stubStandardRepo) CollectiveByCode(context.Context) (map[string]int, error) {
	return s.sums, nil
}

func (s *stubStandardRepo) Entries(context.Context, domain.ReportFilter) ([]domain.StandardQuantityEntry, error) {
	return nil, nil
}

type stubStockRepo struct {
	lots []domain.StockLot
}

func (s *stubStockRepo) ListLots(context.Context, string) ([]domain.StockLot, error) {
	return s.lots, nil
}

func (s *stubStockRepo) DistinctKitNumbers(context.Context) ([]string, error) {
	return nil, nil
}

func (s *stubStockRepo) DistinctModuleNumbers(context.Context) ([]string, error) {
	return nil, nil
}

type stubSettingsRepo struct {
	settings domain.ProjectSettings
}

func (s *stubSettingsRepo) ProjectSettings(context.Context) (domain.ProjectSettings, error) {
	return s.settings, nil
}

func (s *stubSettingsRepo) ProjectInfo(context.Context) (string, string, error) {
	return "", "", nil
}

func (s *stubSettingsRepo) ThirdParties(context.Context) ([]string, error) {
	return nil, nil
}

func newOrderService(t *testing.T, std repository.StandardQuantityRepository, stock repository.StockRepository, tx repository.TransactionRepository, master repository.MasterRepository) *OrderService {
	t.Helper()
	return NewOrderService(newServiceDB(t), std, stock, tx, master, &stubSettingsRepo{}, nil, ReportDefaults{})
}

func TestBuildOrderReportLoanOnlyCode(t *testing.T) {
	// the code appears in the loan ledger only: no standard quantity, no
	// stock lots
	txRepo := &stubTransactionRepo{txs: []domain.StockTransaction{
		{Date: "2026-01-10", Code: "DEXTBAND1B", QtyIn: 10, InType: "In Borrowing", ThirdParty: "MoH"},
	}}
	svc := newOrderService(t, &stubStandardRepo{}, &stubStockRepo{}, txRepo, &stubMasterRepo{})

	out, err := svc.BuildOrderReport(context.Background(), domain.ReportFilter{}, nil)
	require.NoError(t, err)

	require.Len(t, out.Rows, 1)
	row := out.Rows[0]
	assert.Equal(t, "DEXTBAND1B", row.Code)
	assert.Equal(t, -10, row.LoanBalance)
	// borrowed stock has to be given back, so the need covers it
	assert.Equal(t, 10, row.QtyNeeded)
	assert.Equal(t, 10, row.QtyToOrder)
}

func TestBuildOrderReportTableSearch(t *testing.T) {
	std := &stubStandardRepo{sums: map[string]int{"DORAAMOX1T": 10, "DINJGLUC5W": 5}}
	master := &stubMasterRepo{items: map[string]domain.Item{
		"DORAAMOX1T": {Code: "DORAAMOX1T", Description: "AMOXICILLIN 250mg, tab", Type: domain.TypeItem,
			PackSize: 10, PricePerPack: decimal.NewFromFloat(2.5)},
		"DINJGLUC5W": {Code: "DINJGLUC5W", Description: "GLUCOSE 5%, bag", Type: domain.TypeItem,
			PackSize: 5, PricePerPack: decimal.NewFromFloat(4)},
	}}
	svc := newOrderService(t, std, &stubStockRepo{}, &stubTransactionRepo{}, master)

	out, err := svc.BuildOrderReport(context.Background(), domain.ReportFilter{TableSearch: "amox"}, nil)
	require.NoError(t, err)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, "DORAAMOX1T", out.Rows[0].Code)
	// totals follow the visible rows
	assert.True(t, out.Totals.Amount.Equal(decimal.NewFromFloat(2.5)), out.Totals.Amount.String())
}

func TestBuildOrderReportOverrides(t *testing.T) {
	std := &stubStandardRepo{sums: map[string]int{"DORAAMOX1T": 60}}
	master := &stubMasterRepo{items: map[string]domain.Item{
		"DORAAMOX1T": {Code: "DORAAMOX1T", Description: "AMOXICILLIN 250mg, tab", Type: domain.TypeItem,
			PackSize: 25, PricePerPack: decimal.NewFromFloat(12.5)},
	}}
	svc := newOrderService(t, std, &stubStockRepo{}, &stubTransactionRepo{}, master)

	pinned := 30
	overrides := domain.OrderOverrides{
		"DORAAMOX1T": {QtyToOrder: &pinned},
	}

	out, err := svc.BuildOrderReport(context.Background(), domain.ReportFilter{}, overrides)
	require.NoError(t, err)

	require.Len(t, out.Rows, 1)
	row := out.Rows[0]
	// the pin replaces the order quantity but leaves the need intact
	assert.Equal(t, 60, row.QtyNeeded)
	assert.Equal(t, 30, row.QtyToOrder)
	assert.Equal(t, 2, row.Packs)
	assert.Equal(t, 50, row.QtyToOrderRound)
	assert.True(t, row.Overridden)
}
