package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/repository/sqldb"
)

type StockRepository interface {
	// ListLots returns all stock lots, optionally restricted to one
	// scenario. Optional legacy columns are probed once and filled with
	// zero values when the database predates them.
	ListLots(ctx context.Context, scenario string) ([]domain.StockLot, error)
	DistinctKitNumbers(ctx context.Context) ([]string, error)
	DistinctModuleNumbers(ctx context.Context) ([]string, error)
}

type stockRepository struct {
	db *sqldb.DB
}

func NewStockRepository(db *sqldb.DB) StockRepository {
	return &stockRepository{db: db}
}

// Columns not guaranteed to exist in databases created by older releases.
var optionalStockColumns = []string{"code", "management_mode", "comments", "discrepancy"}

func (r *stockRepository) ListLots(ctx context.Context, scenario string) ([]domain.StockLot, error) {
	cols := []string{"unique_id", "scenario", "kit", "module", "item",
		"kit_number", "module_number", "qty_in", "qty_out", "final_qty", "exp_date"}
	for _, c := range optionalStockColumns {
		ok, err := r.db.HasColumn(ctx, "stock_data", c)
		if err != nil {
			return nil, err
		}
		if ok {
			cols = append(cols, c)
		}
	}

	query := "SELECT " + strings.Join(cols, ", ") + " FROM stock_data"
	var args []interface{}
	if !domain.IsAll(scenario) {
		query += " WHERE scenario = ?"
		args = append(args, scenario)
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error listing stock lots: %w", err)
	}
	defer rows.Close()

	var lots []domain.StockLot
	for rows.Next() {
		rec := make(map[string]interface{})
		if err := rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("error scanning stock lot: %w", err)
		}
		lots = append(lots, domain.StockLot{
			UniqueID:       colStr(rec, "unique_id"),
			Code:           colStr(rec, "code"),
			Scenario:       colStr(rec, "scenario"),
			Kit:            colStr(rec, "kit"),
			Module:         colStr(rec, "module"),
			Item:           colStr(rec, "item"),
			KitNumber:      colStr(rec, "kit_number"),
			ModuleNumber:   colStr(rec, "module_number"),
			QtyIn:          colInt(rec, "qty_in"),
			QtyOut:         colInt(rec, "qty_out"),
			FinalQty:       colInt(rec, "final_qty"),
			ExpDate:        colStr(rec, "exp_date"),
			ManagementMode: colStr(rec, "management_mode"),
			Discrepancy:    colInt(rec, "discrepancy"),
			Comments:       colStr(rec, "comments"),
		})
	}
	return lots, rows.Err()
}

func (r *stockRepository) DistinctKitNumbers(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "kit_number")
}

func (r *stockRepository) DistinctModuleNumbers(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "module_number")
}

func (r *stockRepository) distinct(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM stock_data
		WHERE %s IS NOT NULL AND TRIM(%s) <> '' AND LOWER(%s) <> 'none'
		ORDER BY %s`, column, column, column, column, column)

	var values []string
	if err := r.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("error listing distinct %s: %w", column, err)
	}
	return values, nil
}

// colStr and colInt read MapScan output, which differs per driver:
// sqlite hands back []byte or string, postgres int64 for integers.
func colStr(rec map[string]interface{}, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func colInt(rec map[string]interface{}, key string) int {
	switch v := rec[key].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	case []byte:
		if n, err := strconv.Atoi(strings.TrimSpace(string(v))); err == nil {
			return n
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return 0
}
