package main

import (
	"fmt"
	"log"
	"os"

	"github.com/iseprep/backend/internal/backup"
	"github.com/iseprep/backend/internal/config"
	"github.com/iseprep/backend/internal/repository"
	"github.com/iseprep/backend/internal/repository/sqldb"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Postgres connection string; omit to use the configured database",
		EnvVars: []string{"DATABASE_URL"},
	}
}

// openDB connects either to the postgres URL given on the command line
// or to whatever the environment configuration points at.
func openDB(c *cli.Context) (*sqldb.DB, error) {
	if url := c.String("db-url"); url != "" {
		raw, err := sqlx.Open("pgx", url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := raw.Ping(); err != nil {
			raw.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return sqldb.Open(raw), nil
	}
	return sqldb.NewDB(&config.Load().Database)
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "iseprep-admin",
		Usage: "Administer the inventory database",
		Commands: []*cli.Command{
			{
				Name:  "init-db",
				Usage: "Create the schema tables and indexes",
				Flags: []cli.Flag{newDBURLFlag()},
				Action: func(c *cli.Context) error {
					db, err := openDB(c)
					if err != nil {
						return err
					}
					defer db.Close()

					if err := sqldb.InitSchema(c.Context, db); err != nil {
						return fmt.Errorf("failed to initialize schema: %w", err)
					}
					log.Println("Schema initialized")
					return nil
				},
			},
			{
				Name:  "refresh-snapshots",
				Usage: "Rebuild the standard-quantity snapshot tables",
				Flags: []cli.Flag{newDBURLFlag()},
				Action: func(c *cli.Context) error {
					db, err := openDB(c)
					if err != nil {
						return err
					}
					defer db.Close()

					summary, err := sqldb.RefreshSnapshots(c.Context, db)
					if err != nil {
						return fmt.Errorf("snapshot refresh failed: %w", err)
					}
					log.Printf("Snapshots refreshed: std_list_combined=%d std_qty_helper=%d",
						summary.StdListCombinedRows, summary.StdQtyHelperRows)
					return nil
				},
			},
			{
				Name:  "import",
				Usage: "Import master and stock data from CSV files",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing the CSV files",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				},
				Action: runImport,
			},
			{
				Name:   "seed-demo",
				Usage:  "Load a small demo dataset into an empty database",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runSeedDemo,
			},
			{
				Name:  "backup",
				Usage: "Archive the database and data directories into a zip",
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					db, err := sqldb.NewDB(&cfg.Database)
					if err != nil {
						return err
					}
					defer db.Close()

					svc := backup.NewService(db, repository.NewSettingsRepository(db),
						cfg.Database.Path, cfg.App.BackupDir, []string{cfg.App.ExportDir}, nil)
					result, err := svc.Create(c.Context)
					if err != nil {
						return fmt.Errorf("backup failed: %w", err)
					}
					log.Printf("Backup created: %s (%d bytes)", result.Path, result.SizeBytes)
					return nil
				},
			},
			{
				Name:      "restore",
				Usage:     "Restore the database from a backup archive",
				ArgsUsage: "<archive.zip>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("exactly one archive path required")
					}

					cfg := config.Load()
					db, err := sqldb.NewDB(&cfg.Database)
					if err != nil {
						return err
					}
					defer db.Close()

					svc := backup.NewService(db, repository.NewSettingsRepository(db),
						cfg.Database.Path, cfg.App.BackupDir, []string{cfg.App.ExportDir}, nil)
					summary, err := svc.Restore(c.Context, c.Args().First())
					if err != nil {
						return fmt.Errorf("restore failed: %w", err)
					}
					log.Printf("Restore complete: database=%v files=%d", summary.DatabaseRestored, summary.RestoredFiles)
					for table, count := range summary.TableCounts {
						log.Printf(" - %s: %d rows", table, count)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
