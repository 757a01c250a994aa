package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/iseprep/backend/internal/repository/sqldb"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

// importTable describes one CSV file and the columns it feeds. Columns
// missing from the CSV header abort the import for that table.
type importTable struct {
	table   string
	file    string
	columns []string
}

var importTables = []importTable{
	{"scenarios", "scenarios.csv", []string{"name"}},
	{"third_parties", "third_parties.csv", []string{"name"}},
	{"items_list", "items_list.csv", []string{
		"code", "type", "designation_en", "designation_fr", "designation_sp",
		"pack", "price_per_pack_euros", "unit_price_euros",
		"weight_per_pack_kg", "volume_per_pack_dm3", "shelf_life_months",
		"account_code", "remarks",
	}},
	{"kit_items", "kit_items.csv", []string{
		"scenario_id", "scenario", "kit", "module", "item", "code", "std_qty",
	}},
	{"compositions", "compositions.csv", []string{
		"std_id", "scenario_id", "code", "quantity",
	}},
	{"stock_data", "stock_data.csv", []string{
		"unique_id", "code", "scenario", "kit", "module", "item",
		"kit_number", "module_number", "qty_in", "qty_out", "final_qty",
		"exp_date", "management_mode",
	}},
	{"stock_transactions", "stock_transactions.csv", []string{
		"date", "time", "unique_id", "code", "description", "expiry_date",
		"scenario", "kit", "module", "qty_in", "in_type", "qty_out",
		"out_type", "third_party", "document_number", "remarks",
	}},
}

func runImport(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqldb.InitSchema(c.Context, db); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	dataDir := c.String("data-dir")

	return db.WithTx(c.Context, func(tx *sqlx.Tx) error {
		for _, tbl := range importTables {
			path := filepath.Join(dataDir, tbl.file)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				log.Printf("Skipping %s: no %s", tbl.table, tbl.file)
				continue
			}
			count, err := importCSV(c.Context, tx, db, tbl, path)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", tbl.table, err)
			}
			log.Printf("Imported %d rows into %s", count, tbl.table)
		}
		return nil
	})
}

func importCSV(ctx context.Context, tx *sqlx.Tx, db *sqldb.DB, tbl importTable, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	indexes := make([]int, len(tbl.columns))
	for i, col := range tbl.columns {
		idx := columnIndex(header, col)
		if idx < 0 {
			return 0, fmt.Errorf("column %q not found in header of %s", col, filepath.Base(path))
		}
		indexes[i] = idx
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tbl.columns)), ", ")
	query := db.Rebind(fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		tbl.table, strings.Join(tbl.columns, ", "), placeholders,
	))

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]interface{}, len(indexes))
		for i, idx := range indexes {
			if idx < len(record) {
				args[i] = strings.TrimSpace(record[idx])
			} else {
				args[i] = ""
			}
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return count, fmt.Errorf("failed to insert record %d: %w", count+1, err)
		}
		count++
	}

	return count, nil
}

func columnIndex(header []string, column string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			return i
		}
	}
	return -1
}
