package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type MasterRepository interface {
	// ItemsByCode returns master data keyed by code. An empty code set
	// loads the whole list. Descriptions come from the locale's
	// designation column, falling back to the legacy shared column.
	ItemsByCode(ctx context.Context, codes []string) (map[string]domain.Item, error)
	TypeMap(ctx context.Context) (map[string]domain.ItemType, error)
	SearchItems(ctx context.Context, itemType, query string, limit int) ([]domain.Item, error)
	Scenarios(ctx context.Context) ([]domain.Scenario, error)
}

type masterRepository struct {
	db     *sqldb.DB
	locale domain.Locale
}

func NewMasterRepository(db *sqldb.DB, locale domain.Locale) MasterRepository {
	return &masterRepository{db: db, locale: locale}
}

type itemRow struct {
	Code            string          `db:"code"`
	Description     string          `db:"description"`
	Type            string          `db:"type"`
	Pack            string          `db:"pack"`
	PricePerPack    sql.NullFloat64 `db:"price_per_pack_euros"`
	UnitPrice       sql.NullFloat64 `db:"unit_price_euros"`
	WeightPerPack   sql.NullFloat64 `db:"weight_per_pack_kg"`
	VolumePerPack   sql.NullFloat64 `db:"volume_per_pack_dm3"`
	ShelfLifeMonths sql.NullInt64   `db:"shelf_life_months"`
	Remarks         string          `db:"remarks"`
	AccountCode     string          `db:"account_code"`
}

func (m *masterRepository) selectClause() string {
	return fmt.Sprintf(`
		SELECT code,
		       COALESCE(%s, designation, '') AS description,
		       COALESCE(type, '') AS type,
		       COALESCE(pack, '') AS pack,
		       price_per_pack_euros,
		       unit_price_euros,
		       weight_per_pack_kg,
		       volume_per_pack_dm3,
		       shelf_life_months,
		       COALESCE(remarks, '') AS remarks,
		       COALESCE(account_code, '') AS account_code
		FROM items_list`, m.locale.DesignationColumn())
}

func (m *masterRepository) ItemsByCode(ctx context.Context, codes []string) (map[string]domain.Item, error) {
	query := m.selectClause()
	var args []interface{}
	if len(codes) > 0 {
		var err error
		query, args, err = sqlx.In(query+" WHERE code IN (?)", codes)
		if err != nil {
			return nil, fmt.Errorf("error expanding item code set: %w", err)
		}
	}

	var rows []itemRow
	if err := m.db.SelectContext(ctx, &rows, m.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("error loading item metadata: %w", err)
	}

	out := make(map[string]domain.Item, len(rows))
	for _, r := range rows {
		out[r.Code] = r.toItem()
	}
	return out, nil
}

func (r itemRow) toItem() domain.Item {
	item := domain.Item{
		Code:        r.Code,
		Description: r.Description,
		Remarks:     r.Remarks,
		AccountCode: r.AccountCode,
	}
	if t, ok := domain.ParseItemType(r.Type); ok {
		item.Type = t
	} else {
		item.Type = domain.DetectType(r.Code, r.Description)
	}
	// Legacy pack column is free text; anything non-numeric means "no
	// declared pack size".
	if n, err := strconv.Atoi(strings.TrimSpace(r.Pack)); err == nil && n > 0 {
		item.PackSize = n
	}
	if r.PricePerPack.Valid {
		item.PricePerPack = decimal.NewFromFloat(r.PricePerPack.Float64)
	}
	if r.UnitPrice.Valid {
		item.UnitPrice = decimal.NewFromFloat(r.UnitPrice.Float64)
	}
	if r.WeightPerPack.Valid {
		item.WeightPerPackKg = decimal.NewFromFloat(r.WeightPerPack.Float64)
	}
	if r.VolumePerPack.Valid {
		item.VolumePerPackDm3 = decimal.NewFromFloat(r.VolumePerPack.Float64)
	}
	if r.ShelfLifeMonths.Valid {
		item.ShelfLifeMonths = int(r.ShelfLifeMonths.Int64)
	}
	return item
}

func (m *masterRepository) TypeMap(ctx context.Context) (map[string]domain.ItemType, error) {
	rows, err := m.db.QueryxContext(ctx, `SELECT code, COALESCE(type, '') FROM items_list`)
	if err != nil {
		return nil, fmt.Errorf("error loading type map: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.ItemType)
	for rows.Next() {
		var code, rawType string
		if err := rows.Scan(&code, &rawType); err != nil {
			return nil, fmt.Errorf("error scanning type map row: %w", err)
		}
		if t, ok := domain.ParseItemType(rawType); ok {
			out[code] = t
		}
	}
	return out, rows.Err()
}

func (m *masterRepository) SearchItems(ctx context.Context, itemType, query string, limit int) ([]domain.Item, error) {
	if limit <= 0 {
		limit = 50
	}

	sqlQuery := m.selectClause() + " WHERE 1=1"
	var args []interface{}

	if !domain.IsAll(itemType) {
		sqlQuery += " AND UPPER(type) = ?"
		args = append(args, strings.ToUpper(itemType))
	}
	if q := strings.TrimSpace(query); q != "" {
		sqlQuery += ` AND (UPPER(code) LIKE UPPER(?) OR UPPER(COALESCE(designation, '')) LIKE UPPER(?))`
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}
	sqlQuery += " ORDER BY code LIMIT ?"
	args = append(args, limit)

	var rows []itemRow
	if err := m.db.SelectContext(ctx, &rows, m.db.Rebind(sqlQuery), args...); err != nil {
		return nil, fmt.Errorf("error searching items: %w", err)
	}

	items := make([]domain.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
	}
	return items, nil
}

func (m *masterRepository) Scenarios(ctx context.Context) ([]domain.Scenario, error) {
	var scenarios []domain.Scenario
	query := `SELECT scenario_id, name FROM scenarios ORDER BY name`
	if err := m.db.SelectContext(ctx, &scenarios, query); err != nil {
		return nil, fmt.Errorf("error listing scenarios: %w", err)
	}
	return scenarios, nil
}
