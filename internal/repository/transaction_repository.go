package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/jmoiron/sqlx"
)

// MovementFilter selects ledger entries. Zero values mean unfiltered;
// date bounds are inclusive ISO dates. InTypes/OutTypes are OR-ed: a row
// qualifies when either side matches.
type MovementFilter struct {
	DateFrom       string
	DateTo         string
	InTypes        []string
	OutTypes       []string
	Code           string
	Scenario       string
	Kit            string
	Module         string
	ThirdParty     string
	DocumentNumber string
}

type TransactionRepository interface {
	Movements(ctx context.Context, filter MovementFilter) ([]domain.StockTransaction, error)
	// ConsumptionByCode sums qty_out of genuine consumption movements per
	// code over an inclusive date window.
	ConsumptionByCode(ctx context.Context, dateFrom, dateTo string) (map[string]int, error)
}

type transactionRepository struct {
	db *sqldb.DB
}

func NewTransactionRepository(db *sqldb.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Movements(ctx context.Context, filter MovementFilter) ([]domain.StockTransaction, error) {
	query := `
		SELECT COALESCE(date, '') AS date,
		       COALESCE(time, '') AS time,
		       COALESCE(unique_id, '') AS unique_id,
		       COALESCE(code, '') AS code,
		       COALESCE(description, '') AS description,
		       COALESCE(expiry_date, '') AS expiry_date,
		       COALESCE(scenario, '') AS scenario,
		       COALESCE(kit, '') AS kit,
		       COALESCE(module, '') AS module,
		       COALESCE(qty_in, 0) AS qty_in,
		       COALESCE(in_type, '') AS in_type,
		       COALESCE(qty_out, 0) AS qty_out,
		       COALESCE(out_type, '') AS out_type,
		       COALESCE(movement_type, '') AS movement_type,
		       COALESCE(third_party, '') AS third_party,
		       COALESCE(end_user, '') AS end_user,
		       COALESCE(document_number, '') AS document_number,
		       COALESCE(remarks, '') AS remarks
		FROM stock_transactions
		WHERE 1=1`

	var conditions []string
	var args []interface{}

	if filter.DateFrom != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.DateTo)
	}
	if len(filter.InTypes) > 0 || len(filter.OutTypes) > 0 {
		var typeClauses []string
		if len(filter.InTypes) > 0 {
			typeClauses = append(typeClauses, "in_type IN (?)")
		}
		if len(filter.OutTypes) > 0 {
			typeClauses = append(typeClauses, "out_type IN (?)")
		}
		conditions = append(conditions, "("+strings.Join(typeClauses, " OR ")+")")
		if len(filter.InTypes) > 0 {
			args = append(args, filter.InTypes)
		}
		if len(filter.OutTypes) > 0 {
			args = append(args, filter.OutTypes)
		}
	}
	if filter.Code != "" {
		conditions = append(conditions, "code = ?")
		args = append(args, filter.Code)
	}
	if !domain.IsAll(filter.Scenario) {
		conditions = append(conditions, "scenario = ?")
		args = append(args, filter.Scenario)
	}
	if !domain.IsAll(filter.Kit) {
		conditions = append(conditions, "kit = ?")
		args = append(args, filter.Kit)
	}
	if !domain.IsAll(filter.Module) {
		conditions = append(conditions, "module = ?")
		args = append(args, filter.Module)
	}
	if !domain.IsAll(filter.ThirdParty) {
		conditions = append(conditions, "third_party = ?")
		args = append(args, filter.ThirdParty)
	}
	if filter.DocumentNumber != "" {
		conditions = append(conditions, "document_number LIKE ?")
		args = append(args, "%"+filter.DocumentNumber+"%")
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, time"

	query, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error expanding movement filter: %w", err)
	}

	var txs []domain.StockTransaction
	if err := r.db.SelectContext(ctx, &txs, r.db.Rebind(query), expandedArgs...); err != nil {
		return nil, fmt.Errorf("error listing movements: %w", err)
	}
	return txs, nil
}

func (r *transactionRepository) ConsumptionByCode(ctx context.Context, dateFrom, dateTo string) (map[string]int, error) {
	query := `
		SELECT code, SUM(COALESCE(qty_out, 0)) AS total_out
		FROM stock_transactions
		WHERE LOWER(out_type) = LOWER(?)
		  AND date >= ? AND date <= ?
		  AND code IS NOT NULL AND code <> ''
		GROUP BY code`

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), domain.OutTypeConsumption, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("error aggregating consumption: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var code string
		var total int
		if err := rows.Scan(&code, &total); err != nil {
			return nil, fmt.Errorf("error scanning consumption row: %w", err)
		}
		out[code] = total
	}
	return out, rows.Err()
}
