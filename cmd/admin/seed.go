package main

import (
	"fmt"
	"log"

	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

// Small dataset for local runs and demos: one scenario, a kit with one
// module and two items, a handful of lots and movements.
var demoStatements = []string{
	`INSERT INTO scenarios (scenario_id, name, activity_type, target_population)
	 VALUES (1, 'Cholera outbreak', 'Outbreak response', 5000)`,
	`INSERT INTO items_list (code, type, designation, designation_en, pack, price_per_pack_euros, unit_price_euros, weight_per_pack_kg, volume_per_pack_dm3, shelf_life_months)
	 VALUES ('KCHOKIT1', 'Kit', 'KIT cholera, 100 patients', 'KIT cholera, 100 patients', '', NULL, NULL, NULL, NULL, NULL),
	        ('KCHOMODD', 'Module', 'MODULE dressing', 'MODULE dressing', '', NULL, NULL, NULL, NULL, NULL),
	        ('DORAAMOX1T', 'Item', 'AMOXICILLIN 250mg, tab', 'AMOXICILLIN 250mg, tab', '100', 3.2, 0.032, 0.4, 0.6, 36),
	        ('DINFRING1B', 'Item', 'RINGER lactate, 1l bag', 'RINGER lactate, 1l bag', '10', 14.5, 1.45, 11, 12, 24)`,
	`INSERT INTO compositions (std_id, scenario_id, code, quantity)
	 VALUES ('C-1-1', 1, 'DORAAMOX1T', 2000),
	        ('C-1-2', 1, 'DINFRING1B', 400)`,
	`INSERT INTO kit_items (scenario_id, scenario, kit, module, item, code, std_qty)
	 VALUES (1, 'Cholera outbreak', 'KCHOKIT1', NULL, NULL, 'KCHOMODD', 2),
	        (1, 'Cholera outbreak', 'KCHOKIT1', 'KCHOMODD', NULL, 'DORAAMOX1T', 600)`,
	`INSERT INTO stock_data (unique_id, code, scenario, kit, module, item, kit_number, module_number, qty_in, qty_out, final_qty, exp_date, management_mode)
	 VALUES ('Cholera outbreak/KCHOKIT1/KCHOMODD/DORAAMOX1T', 'DORAAMOX1T', 'Cholera outbreak', 'KCHOKIT1', 'KCHOMODD', 'DORAAMOX1T', 'Kit 1', 'Mod 1', 1200, 300, 900, '2027-06-30', 'in-box'),
	        ('Cholera outbreak/None/None/DORAAMOX1T', 'DORAAMOX1T', 'Cholera outbreak', 'None', 'None', 'DORAAMOX1T', '', '', 500, 0, 500, '2026-11-30', 'on_shelf'),
	        ('Cholera outbreak/None/None/DINFRING1B', 'DINFRING1B', 'Cholera outbreak', 'None', 'None', 'DINFRING1B', '', '', 120, 40, 80, '2026-05-31', 'on_shelf')`,
	`INSERT INTO stock_transactions (date, time, code, qty_out, out_type, third_party, document_number)
	 VALUES ('2026-06-10', '09:15', 'DORAAMOX1T', 150, 'Out MSF', '', 'OUT-0001'),
	        ('2026-07-02', '14:40', 'DORAAMOX1T', 100, 'Out MSF', '', 'OUT-0002'),
	        ('2026-07-20', '11:05', 'DINFRING1B', 40, 'Out MSF', '', 'OUT-0003'),
	        ('2026-08-01', '10:30', 'DORAAMOX1T', 50, 'Loan', 'MoH clinic', 'LOAN-0001')`,
	`INSERT INTO third_parties (name, contact) VALUES ('MoH clinic', 'pharmacy desk')`,
	`INSERT INTO project_details (id, project_name, project_code, lead_time_months, cover_period_months, buffer_months)
	 VALUES (1, 'Demo project', 'DEMO1', 3, 2, 1)`,
}

func runSeedDemo(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqldb.InitSchema(c.Context, db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	err = db.WithTx(c.Context, func(tx *sqlx.Tx) error {
		var existing int
		if err := tx.GetContext(c.Context, &existing, "SELECT COUNT(*) FROM scenarios"); err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("database already holds %d scenarios, refusing to seed", existing)
		}
		for _, stmt := range demoStatements {
			if _, err := tx.ExecContext(c.Context, stmt); err != nil {
				return fmt.Errorf("demo insert failed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	summary, err := sqldb.RefreshSnapshots(c.Context, db)
	if err != nil {
		return fmt.Errorf("snapshot refresh failed: %w", err)
	}
	log.Printf("Demo data seeded: std_list_combined=%d std_qty_helper=%d",
		summary.StdListCombinedRows, summary.StdQtyHelperRows)
	return nil
}
