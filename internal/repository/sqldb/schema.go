package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/iseprep/backend/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Schema statements. Column names stay compatible with the legacy
// databases this service inherits; identifiers are case-insensitive in
// both engines so legacy mixed-case data loads unchanged.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS scenarios (
		scenario_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		activity_type TEXT,
		target_population INTEGER,
		responsible_person TEXT,
		stock_location TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS items_list (
		code TEXT PRIMARY KEY,
		type TEXT,
		designation TEXT,
		designation_en TEXT,
		designation_fr TEXT,
		designation_sp TEXT,
		pack TEXT,
		price_per_pack_euros REAL,
		unit_price_euros REAL,
		weight_per_pack_kg REAL,
		volume_per_pack_dm3 REAL,
		shelf_life_months INTEGER,
		remarks TEXT,
		account_code TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS kit_items (
		id INTEGER PRIMARY KEY,
		scenario_id INTEGER,
		scenario TEXT NOT NULL,
		kit TEXT,
		module TEXT,
		item TEXT,
		code TEXT NOT NULL,
		std_qty INTEGER NOT NULL,
		level TEXT,
		treecode TEXT,
		CHECK (std_qty > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS compositions (
		std_id TEXT PRIMARY KEY,
		scenario_id INTEGER,
		code TEXT NOT NULL,
		quantity INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_data (
		unique_id TEXT PRIMARY KEY,
		code TEXT,
		scenario TEXT,
		kit TEXT,
		module TEXT,
		item TEXT,
		kit_number TEXT,
		module_number TEXT,
		qty_in INTEGER DEFAULT 0,
		qty_out INTEGER DEFAULT 0,
		final_qty INTEGER DEFAULT 0,
		exp_date TEXT,
		management_mode TEXT,
		discrepancy INTEGER DEFAULT 0,
		comments TEXT,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS stock_transactions (
		id INTEGER PRIMARY KEY,
		date TEXT,
		time TEXT,
		unique_id TEXT,
		code TEXT,
		description TEXT,
		expiry_date TEXT,
		batch_number TEXT,
		scenario TEXT,
		kit TEXT,
		module TEXT,
		qty_in INTEGER,
		in_type TEXT,
		qty_out INTEGER,
		out_type TEXT,
		third_party TEXT,
		end_user TEXT,
		document_number TEXT,
		remarks TEXT,
		movement_type TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS project_details (
		id INTEGER PRIMARY KEY,
		project_name TEXT,
		project_code TEXT,
		lead_time_months INTEGER DEFAULT 0,
		cover_period_months INTEGER DEFAULT 0,
		buffer_months INTEGER DEFAULT 0,
		updated_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS third_parties (
		id INTEGER PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		contact TEXT,
		remarks TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS std_qty_helper (
		id TEXT,
		code TEXT,
		description TEXT,
		type TEXT,
		scenario_id INTEGER,
		scenario TEXT,
		kit TEXT,
		module TEXT,
		std_qty INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS std_list_combined (
		code TEXT,
		description TEXT,
		type TEXT,
		std_qty_collective INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_data_code ON stock_data(code)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_tx_code ON stock_transactions(code)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_tx_date ON stock_transactions(date)`,
	`CREATE INDEX IF NOT EXISTS idx_std_qty_helper_code ON std_qty_helper(code)`,
}

// InitSchema creates all tables and indexes if missing.
func InitSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema statement: %w", err)
		}
	}
	log.Info().Int("statements", len(schemaStatements)).Msg("schema initialized")
	return nil
}

// Standard-quantity snapshots are denormalized from the configuration
// tables (compositions holds scenario-level targets, kit_items holds the
// per-kit/module breakdown) so the aggregators read one flat table.
const refreshStdListCombinedSQL = `
INSERT INTO std_list_combined (code, description, type, std_qty_collective)
SELECT
    all_codes.code,
    il.designation,
    il.type,
    SUM(all_codes.qty_component) AS std_qty_collective
FROM (
    SELECT code, quantity AS qty_component FROM compositions
    UNION ALL
    SELECT code, std_qty AS qty_component FROM kit_items
) AS all_codes
LEFT JOIN items_list il ON il.code = all_codes.code
GROUP BY all_codes.code`

const refreshStdQtyHelperSQL = `
INSERT INTO std_qty_helper (id, code, description, type, scenario_id, scenario, kit, module, std_qty)
SELECT
  c.std_id,
  c.code,
  il.designation,
  il.type,
  c.scenario_id,
  s.name,
  NULL,
  NULL,
  c.quantity
FROM compositions c
LEFT JOIN items_list il ON il.code = c.code
LEFT JOIN scenarios s ON s.scenario_id = c.scenario_id
UNION ALL
SELECT
  CAST(k.id AS TEXT),
  k.code,
  il.designation,
  il.type,
  k.scenario_id,
  s.name,
  k.kit,
  k.module,
  k.std_qty
FROM kit_items k
LEFT JOIN items_list il ON il.code = k.code
LEFT JOIN scenarios s ON s.scenario_id = k.scenario_id`

// RefreshSnapshots rebuilds std_list_combined and std_qty_helper inside
// one transaction and reports the resulting row counts.
func RefreshSnapshots(ctx context.Context, db *DB) (domain.SnapshotRefreshSummary, error) {
	var summary domain.SnapshotRefreshSummary

	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM std_list_combined"); err != nil {
			return fmt.Errorf("error clearing std_list_combined: %w", err)
		}
		if _, err := tx.ExecContext(ctx, refreshStdListCombinedSQL); err != nil {
			return fmt.Errorf("error rebuilding std_list_combined: %w", err)
		}
		if err := tx.GetContext(ctx, &summary.StdListCombinedRows, "SELECT COUNT(*) FROM std_list_combined"); err != nil {
			return fmt.Errorf("error counting std_list_combined: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM std_qty_helper"); err != nil {
			return fmt.Errorf("error clearing std_qty_helper: %w", err)
		}
		if _, err := tx.ExecContext(ctx, refreshStdQtyHelperSQL); err != nil {
			return fmt.Errorf("error rebuilding std_qty_helper: %w", err)
		}
		if err := tx.GetContext(ctx, &summary.StdQtyHelperRows, "SELECT COUNT(*) FROM std_qty_helper"); err != nil {
			return fmt.Errorf("error counting std_qty_helper: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.SnapshotRefreshSummary{}, fmt.Errorf("snapshot refresh failed: %w", err)
	}

	summary.Timestamp = time.Now().Format(time.RFC3339)
	log.Info().
		Int("std_list_combined", summary.StdListCombinedRows).
		Int("std_qty_helper", summary.StdQtyHelperRows).
		Msg("snapshots refreshed")

	return summary, nil
}
