package repository_test

import (
	"context"
	"testing"

	"github.com/iseprep/backend/internal/domain"
	"github.com/iseprep/backend/internal/repository"
	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqldb.DB {
	t.Helper()

	raw, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	// every connection of an in-memory database is its own database
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { raw.Close() })

	db := sqldb.Open(raw)
	require.NoError(t, sqldb.InitSchema(context.Background(), db))
	return db
}

func seedTestData(t *testing.T, db *sqldb.DB) {
	t.Helper()

	stmts := []string{
		`INSERT INTO scenarios (scenario_id, name) VALUES (1, 'Cholera')`,
		`INSERT INTO items_list (code, type, designation, designation_en, pack, price_per_pack_euros, unit_price_euros, weight_per_pack_kg, volume_per_pack_dm3, shelf_life_months)
		 VALUES ('KCHOKIT1', 'Kit', 'KIT cholera, 100 patients', 'KIT cholera, 100 patients', '', NULL, NULL, NULL, NULL, NULL)`,
		`INSERT INTO items_list (code, type, designation, designation_en, pack, price_per_pack_euros, unit_price_euros, weight_per_pack_kg, volume_per_pack_dm3, shelf_life_months)
		 VALUES ('DORAAMOX1T', 'Item', 'AMOXICILLIN 250mg, tab', 'AMOXICILLIN 250mg, tab', '10', 2.5, 0.25, 0.1, 50, 36)`,
		`INSERT INTO compositions (std_id, scenario_id, code, quantity) VALUES ('C1', 1, 'DORAAMOX1T', 50)`,
		`INSERT INTO kit_items (scenario_id, scenario, kit, code, std_qty) VALUES (1, 'Cholera', 'KCHOKIT1', 'DORAAMOX1T', 20)`,
		`INSERT INTO stock_data (unique_id, code, scenario, kit, module, item, kit_number, module_number, qty_in, qty_out, final_qty, exp_date, management_mode, comments)
		 VALUES ('u1', 'DORAAMOX1T', 'Cholera', 'None', 'None', 'DORAAMOX1T', 'Kit 1', '', 10, 2, 8, '2026-03-15', 'on_shelf', 'cold chain')`,
		`INSERT INTO stock_data (unique_id, code, scenario, kit, module, item, kit_number, module_number, qty_in, qty_out, final_qty, exp_date, management_mode, comments)
		 VALUES ('u2', '', 'Cholera', 'None', 'None', 'DINJGLUC5W', '', '', 5, 0, 5, '', 'in-box', '')`,
		`INSERT INTO stock_transactions (date, time, code, qty_out, out_type, third_party)
		 VALUES ('2026-01-10', '10:00', 'DORAAMOX1T', 6, 'Out MSF', '')`,
		`INSERT INTO stock_transactions (date, time, code, qty_out, out_type, third_party, document_number)
		 VALUES ('2026-01-12', '11:00', 'DORAAMOX1T', 4, 'Loan', 'MoH', 'DOC-7')`,
		`INSERT INTO stock_transactions (date, time, code, qty_in, in_type, third_party)
		 VALUES ('2026-01-20', '12:00', 'DORAAMOX1T', 1, 'In Return of Loan', 'MoH')`,
		`INSERT INTO project_details (id, project_name, project_code, lead_time_months, cover_period_months, buffer_months)
		 VALUES (1, 'Emergency Prep', 'ET101', 2, 3, 1)`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func TestSnapshotRefreshAndStandardQuantities(t *testing.T) {
	db := newTestDB(t)
	seedTestData(t, db)
	ctx := context.Background()

	summary, err := sqldb.RefreshSnapshots(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.StdListCombinedRows)
	assert.Equal(t, 2, summary.StdQtyHelperRows)

	repo := repository.NewStandardQuantityRepository(db)

	t.Run("unfiltered sum combines compositions and kit contents", func(t *testing.T) {
		sums, err := repo.SumByCode(ctx, domain.ReportFilter{})
		require.NoError(t, err)
		assert.Equal(t, 70, sums["DORAAMOX1T"])
	})

	t.Run("kit filter keeps only rows under that kit", func(t *testing.T) {
		sums, err := repo.SumByCode(ctx, domain.ReportFilter{Kit: "KCHOKIT1"})
		require.NoError(t, err)
		assert.Equal(t, 20, sums["DORAAMOX1T"])
	})

	t.Run("collective quantities read the combined snapshot", func(t *testing.T) {
		collective, err := repo.CollectiveByCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, 70, collective["DORAAMOX1T"])
	})

	t.Run("refresh is idempotent", func(t *testing.T) {
		again, err := sqldb.RefreshSnapshots(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, summary.StdListCombinedRows, again.StdListCombinedRows)
		assert.Equal(t, summary.StdQtyHelperRows, again.StdQtyHelperRows)
	})
}

func TestStockRepository(t *testing.T) {
	db := newTestDB(t)
	seedTestData(t, db)
	ctx := context.Background()

	repo := repository.NewStockRepository(db)

	lots, err := repo.ListLots(ctx, "")
	require.NoError(t, err)
	require.Len(t, lots, 2)

	byID := map[string]domain.StockLot{}
	for _, lot := range lots {
		byID[lot.UniqueID] = lot
	}
	assert.Equal(t, "DORAAMOX1T", byID["u1"].Code)
	assert.Equal(t, 8, byID["u1"].FinalQty)
	assert.Equal(t, "2026-03-15", byID["u1"].ExpDate)
	assert.Equal(t, "on_shelf", byID["u1"].ManagementMode)
	assert.Equal(t, "cold chain", byID["u1"].Comments)
	assert.Equal(t, 5, byID["u2"].FinalQty)

	kits, err := repo.DistinctKitNumbers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kit 1"}, kits)

	modules, err := repo.DistinctModuleNumbers(ctx)
	require.NoError(t, err)
	assert.Empty(t, modules)
}

func TestTransactionRepository(t *testing.T) {
	db := newTestDB(t)
	seedTestData(t, db)
	ctx := context.Background()

	repo := repository.NewTransactionRepository(db)

	t.Run("loan type filter matches either direction", func(t *testing.T) {
		txs, err := repo.Movements(ctx, repository.MovementFilter{
			InTypes:  domain.LoanInTypes,
			OutTypes: domain.LoanOutTypes,
		})
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, "2026-01-12", txs[0].Date)
		assert.Equal(t, 4, txs[0].QtyOut)
		assert.Equal(t, "In Return of Loan", txs[1].InType)
	})

	t.Run("document number matches substrings", func(t *testing.T) {
		txs, err := repo.Movements(ctx, repository.MovementFilter{DocumentNumber: "OC-7"})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "DOC-7", txs[0].DocumentNumber)
	})

	t.Run("date window is inclusive", func(t *testing.T) {
		txs, err := repo.Movements(ctx, repository.MovementFilter{
			DateFrom: "2026-01-10",
			DateTo:   "2026-01-12",
		})
		require.NoError(t, err)
		assert.Len(t, txs, 2)
	})

	t.Run("consumption counts only consumption movements", func(t *testing.T) {
		out, err := repo.ConsumptionByCode(ctx, "2026-01-01", "2026-01-31")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"DORAAMOX1T": 6}, out)
	})
}

func TestMasterRepository(t *testing.T) {
	db := newTestDB(t)
	seedTestData(t, db)
	ctx := context.Background()

	repo := repository.NewMasterRepository(db, "en")

	items, err := repo.ItemsByCode(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)

	amox := items["DORAAMOX1T"]
	assert.Equal(t, domain.TypeItem, amox.Type)
	assert.Equal(t, 10, amox.PackSize)
	assert.Equal(t, "2.5", amox.PricePerPack.String())
	assert.Equal(t, 36, amox.ShelfLifeMonths)

	kit := items["KCHOKIT1"]
	assert.Equal(t, domain.TypeKit, kit.Type)
	assert.Equal(t, 0, kit.PackSize)
	assert.True(t, kit.PricePerPack.IsZero())

	types, err := repo.TypeMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeKit, types["KCHOKIT1"])
	assert.Equal(t, domain.TypeItem, types["DORAAMOX1T"])

	found, err := repo.SearchItems(ctx, "Item", "amox", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "DORAAMOX1T", found[0].Code)

	scenarios, err := repo.Scenarios(ctx)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "Cholera", scenarios[0].Name)
}

func TestSettingsRepository(t *testing.T) {
	db := newTestDB(t)
	seedTestData(t, db)
	ctx := context.Background()

	repo := repository.NewSettingsRepository(db)

	settings, err := repo.ProjectSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, settings.HorizonMonths())

	name, code, err := repo.ProjectInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Emergency Prep", name)
	assert.Equal(t, "ET101", code)
}
