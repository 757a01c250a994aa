package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/repository/sqldb"
)

type StandardQuantityRepository interface {
	// SumByCode aggregates std_qty per code over the snapshot table,
	// honouring the scenario/kit/module/type filters.
	SumByCode(ctx context.Context, filter domain.ReportFilter) (map[string]int, error)
	// CollectiveByCode returns the filter-independent collective standard
	// quantity per code.
	CollectiveByCode(ctx context.Context) (map[string]int, error)
	Entries(ctx context.Context, filter domain.ReportFilter) ([]domain.StandardQuantityEntry, error)
}

type standardQuantityRepository struct {
	db *sqldb.DB
}

func NewStandardQuantityRepository(db *sqldb.DB) StandardQuantityRepository {
	return &standardQuantityRepository{db: db}
}

// stdWhere builds the filter clause shared by the std_qty_helper reads. A
// kit or module filter also matches the kit/module row itself, not only
// the rows nested under it.
func stdWhere(filter domain.ReportFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if !domain.IsAll(filter.Scenario) {
		conditions = append(conditions, "scenario = ?")
		args = append(args, filter.Scenario)
	}
	if !domain.IsAll(filter.Kit) {
		conditions = append(conditions, "(kit = ? OR (UPPER(type)='KIT' AND code = ?))")
		args = append(args, filter.Kit, filter.Kit)
	}
	if !domain.IsAll(filter.Module) {
		conditions = append(conditions, "(module = ? OR (UPPER(type)='MODULE' AND code = ?))")
		args = append(args, filter.Module, filter.Module)
	}
	if !domain.IsAll(filter.Type) {
		if t, ok := domain.ParseItemType(filter.Type); ok {
			conditions = append(conditions, "UPPER(type) = ?")
			args = append(args, strings.ToUpper(string(t)))
		}
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(conditions, " AND "), args
}

func (r *standardQuantityRepository) SumByCode(ctx context.Context, filter domain.ReportFilter) (map[string]int, error) {
	query := `SELECT code, SUM(std_qty) AS total_std FROM std_qty_helper WHERE 1=1`
	clause, args := stdWhere(filter)
	query += clause + " GROUP BY code"

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("error aggregating standard quantities: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var code string
		var total *int
		if err := rows.Scan(&code, &total); err != nil {
			return nil, fmt.Errorf("error scanning standard quantity row: %w", err)
		}
		if total != nil {
			out[code] = *total
		} else {
			out[code] = 0
		}
	}
	return out, rows.Err()
}

func (r *standardQuantityRepository) CollectiveByCode(ctx context.Context) (map[string]int, error) {
	query := `SELECT code, COALESCE(std_qty_collective, 0) FROM std_list_combined`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error reading collective standard quantities: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var code string
		var qty int
		if err := rows.Scan(&code, &qty); err != nil {
			return nil, fmt.Errorf("error scanning collective standard quantity: %w", err)
		}
		out[code] = qty
	}
	return out, rows.Err()
}

func (r *standardQuantityRepository) Entries(ctx context.Context, filter domain.ReportFilter) ([]domain.StandardQuantityEntry, error) {
	query := `
		SELECT code,
		       COALESCE(scenario, '') AS scenario,
		       COALESCE(kit, '') AS kit,
		       COALESCE(module, '') AS module,
		       COALESCE(type, '') AS type,
		       COALESCE(std_qty, 0) AS std_qty
		FROM std_qty_helper WHERE 1=1`
	clause, args := stdWhere(filter)
	query += clause + " ORDER BY code"

	var entries []domain.StandardQuantityEntry
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("error listing standard quantity entries: %w", err)
	}
	return entries, nil
}
