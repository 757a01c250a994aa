package report

import (
	"testing"

	"github.com/iseprep/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAggregateStock(t *testing.T) {
	scenarios := NewScenarioIndex([]domain.Scenario{
		{ScenarioID: 1, Name: "Cholera"},
		{ScenarioID: 2, Name: "Measles"},
	})

	lots := []domain.StockLot{
		{Scenario: "Cholera", Kit: "KMEDKIT01", Module: "KMEDMOD01", Item: "DORAAMOX1T", FinalQty: 5, ExpDate: "2026-03-15"},
		{Scenario: "1", Item: "DORAAMOX1T", FinalQty: 3, ExpDate: "2027-01-01"},
		{Scenario: "Measles", Item: "DORAAMOX1T", FinalQty: 7},
		{Scenario: "Cholera", Item: "DINJGLUC5W", FinalQty: -2},
		{Scenario: "Cholera", Item: "None", Kit: "none", FinalQty: 4},
	}
	typeMap := map[string]domain.ItemType{
		"KMEDKIT01":  domain.TypeKit,
		"KMEDMOD01":  domain.TypeModule,
		"DORAAMOX1T": domain.TypeItem,
	}

	t.Run("each lot feeds its kit, module and item codes", func(t *testing.T) {
		out := AggregateStock(lots, domain.ReportFilter{}, "", typeMap, scenarios)
		assert.Equal(t, 5, out["KMEDKIT01"].CurrentStock)
		assert.Equal(t, 5, out["KMEDMOD01"].CurrentStock)
		assert.Equal(t, 15, out["DORAAMOX1T"].CurrentStock)
		// negative and code-less lots count nowhere
		assert.NotContains(t, out, "DINJGLUC5W")
		assert.NotContains(t, out, "None")
	})

	t.Run("expiring needs a parseable date within the cutoff", func(t *testing.T) {
		out := AggregateStock(lots, domain.ReportFilter{}, "2026-07-31", typeMap, scenarios)
		// only the 2026-03-15 lot is inside the horizon
		assert.Equal(t, 5, out["DORAAMOX1T"].ExpiringQty)
		assert.Equal(t, 15, out["DORAAMOX1T"].CurrentStock)
	})

	t.Run("scenario filter resolves numeric ids", func(t *testing.T) {
		out := AggregateStock(lots, domain.ReportFilter{Scenario: "Cholera"}, "", typeMap, scenarios)
		// the "1" row resolves to Cholera; the Measles row is excluded
		assert.Equal(t, 8, out["DORAAMOX1T"].CurrentStock)
	})

	t.Run("type filter is strict", func(t *testing.T) {
		out := AggregateStock(lots, domain.ReportFilter{Type: "Kit"}, "", typeMap, scenarios)
		assert.Contains(t, out, "KMEDKIT01")
		assert.NotContains(t, out, "KMEDMOD01")
		assert.NotContains(t, out, "DORAAMOX1T")
	})
}

func TestComputeAMC(t *testing.T) {
	out := ComputeAMC(map[string]int{"DORAAMOX1T": 100, "DINJGLUC5W": 7}, 6)
	assert.InDelta(t, 16.67, out["DORAAMOX1T"], 0.001)
	assert.InDelta(t, 1.17, out["DINJGLUC5W"], 0.001)

	assert.Empty(t, ComputeAMC(map[string]int{"DORAAMOX1T": 100}, 0))
}

func TestLoanBalances(t *testing.T) {
	txs := []domain.StockTransaction{
		{Code: "DORAAMOX1T", QtyOut: 10, OutType: "Loan"},
		{Code: "DORAAMOX1T", QtyIn: 4, InType: "In Return of Loan"},
		{Code: "DORAAMOX1T", QtyOut: 2, OutType: "Return of Borrowing"},
		{Code: "DINJGLUC5W", QtyIn: 5, InType: "In Borrowing"},
		{Code: "DINJGLUC5W", QtyOut: 3, OutType: "Out MSF"}, // not a loan movement
		{Code: "", QtyOut: 9, OutType: "Loan"},
	}

	out := LoanBalances(txs)
	assert.Equal(t, 8, out["DORAAMOX1T"])
	assert.Equal(t, -5, out["DINJGLUC5W"])
	assert.Len(t, out, 2)
}
