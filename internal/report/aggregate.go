package report

import (
	"strconv"
	"strings"

	"github.com/iseprep/backend/internal/domain"
)

// StockTotals is the per-code output of the stock scan.
type StockTotals struct {
	CurrentStock int `json:"current_stock"`
	ExpiringQty  int `json:"expiring_qty"`
}

// ScenarioIndex resolves the scenario spellings found in lot rows, which
// may hold either the scenario name or its numeric id as text.
type ScenarioIndex struct {
	idToName map[string]string
	names    map[string]struct{}
}

func NewScenarioIndex(scenarios []domain.Scenario) ScenarioIndex {
	idx := ScenarioIndex{
		idToName: make(map[string]string, len(scenarios)),
		names:    make(map[string]struct{}, len(scenarios)),
	}
	for _, s := range scenarios {
		idx.idToName[strconv.FormatInt(s.ScenarioID, 10)] = s.Name
		idx.names[s.Name] = struct{}{}
	}
	return idx
}

func (idx ScenarioIndex) Resolve(raw string) string {
	return domain.ResolveScenarioName(raw, idx.idToName, idx.names)
}

// AggregateStock scans stock lots and rolls current and expiring
// quantities up per code. A lot names up to three codes (its kit, its
// module and its item); each non-empty one accumulates independently so
// kits and their contents are both visible in the rollup.
//
// Only positive quantities count. A lot expires within the horizon when
// its exp_date parses as YYYY-MM-DD and is on or before the cutoff;
// expired stock is by definition inside every horizon. Malformed dates
// keep the lot in current stock but never in the expiring bucket.
func AggregateStock(lots []domain.StockLot, filter domain.ReportFilter, cutoffISO string,
	typeMap map[string]domain.ItemType, scenarios ScenarioIndex) map[string]StockTotals {

	out := make(map[string]StockTotals)

	wantMode := ""
	if !domain.IsAll(filter.ManagementMode) {
		wantMode = domain.NormalizeManagementMode(filter.ManagementMode)
	}

	for _, lot := range lots {
		if lot.FinalQty <= 0 {
			continue
		}
		if wantMode != "" && domain.NormalizeManagementMode(lot.ManagementMode) != wantMode {
			continue
		}
		if !domain.IsAll(filter.Scenario) && scenarios.Resolve(lot.Scenario) != filter.Scenario {
			continue
		}

		if code := cleanCode(lot.Kit); code != "" {
			if domain.IsAll(filter.Kit) || filter.Kit == code {
				accumulate(out, code, lot, cutoffISO, filter, typeMap)
			}
		}
		if code := cleanCode(lot.Module); code != "" {
			if domain.IsAll(filter.Module) || filter.Module == code {
				accumulate(out, code, lot, cutoffISO, filter, typeMap)
			}
		}
		if code := cleanCode(lot.Item); code != "" {
			accumulate(out, code, lot, cutoffISO, filter, typeMap)
		}
	}

	return out
}

func cleanCode(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "none") {
		return ""
	}
	return v
}

func accumulate(out map[string]StockTotals, code string, lot domain.StockLot,
	cutoffISO string, filter domain.ReportFilter, typeMap map[string]domain.ItemType) {

	if !domain.IsAll(filter.Type) {
		want, ok := domain.ParseItemType(filter.Type)
		if !ok || typeMap[code] != want {
			return
		}
	}

	totals := out[code]
	totals.CurrentStock += lot.FinalQty
	if cutoffISO != "" {
		if _, ok := ParseISODate(lot.ExpDate); ok && lot.ExpDate <= cutoffISO {
			totals.ExpiringQty += lot.FinalQty
		}
	}
	out[code] = totals
}

// ComputeAMC turns the summed consumption window into per-code average
// monthly consumption, rounded to two decimals. The rounded value is the
// one used downstream so that displayed and computed figures agree.
func ComputeAMC(consumedByCode map[string]int, amcMonths int) map[string]float64 {
	out := make(map[string]float64, len(consumedByCode))
	if amcMonths <= 0 {
		return out
	}
	for code, total := range consumedByCode {
		out[code] = roundFloat(float64(total)/float64(amcMonths), 2)
	}
	return out
}

// LoanBalances nets the loan ledger per code: quantity given out minus
// quantity received back. Positive means the counterparty still owes.
func LoanBalances(txs []domain.StockTransaction) map[string]int {
	out := make(map[string]int)
	for _, tx := range txs {
		if tx.Code == "" {
			continue
		}
		if containsFold(domain.LoanOutTypes, tx.OutType) {
			out[tx.Code] += tx.QtyOut
		}
		if containsFold(domain.LoanInTypes, tx.InType) {
			out[tx.Code] -= tx.QtyIn
		}
	}
	return out
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
