package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iseprep/backend/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// DB wraps the sqlx pool with a concurrency semaphore and a per-table
// column cache used to probe optional legacy columns.
type DB struct {
	*sqlx.DB
	Driver string

	sem *semaphore.Weighted

	colMu   sync.Mutex
	columns map[string]map[string]bool
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB opens the configured database. Driver "sqlite3" uses cfg.Path;
// "postgres" builds a connection string from the host/credential fields.
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		var db *sqlx.DB
		switch cfg.Driver {
		case "postgres":
			connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
			db, err = sqlx.Connect("postgres", connStr)
		case "sqlite3", "":
			// _busy_timeout avoids immediate SQLITE_BUSY under the
			// concurrent report aggregators.
			db, err = sqlx.Connect("sqlite3", cfg.Path+"?_busy_timeout=5000&_foreign_keys=on")
		default:
			err = fmt.Errorf("unsupported database driver %q", cfg.Driver)
		}
		if err != nil {
			return
		}

		if cfg.Driver == "postgres" {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
		} else {
			// sqlite serializes writers anyway
			db.SetMaxOpenConns(4)
		}
		db.SetConnMaxLifetime(5 * time.Minute)

		dbInstance = &DB{
			DB:      db,
			Driver:  db.DriverName(),
			sem:     semaphore.NewWeighted(10),
			columns: make(map[string]map[string]bool),
		}
	})

	return dbInstance, err
}

// Open builds a DB around an existing sqlx pool. Used by tests and the
// admin CLI, which manage their own connections.
func Open(db *sqlx.DB) *DB {
	return &DB{
		DB:      db,
		Driver:  db.DriverName(),
		sem:     semaphore.NewWeighted(10),
		columns: make(map[string]map[string]bool),
	}
}

// WithTx executes fn within a transaction, holding a semaphore slot.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// HasColumn reports whether table has the named column. Legacy databases
// predate several columns, so queries probe before referencing them. The
// probe runs once per table and is cached for the life of the pool.
func (db *DB) HasColumn(ctx context.Context, table, column string) (bool, error) {
	db.colMu.Lock()
	cols, ok := db.columns[table]
	db.colMu.Unlock()
	if ok {
		return cols[strings.ToLower(column)], nil
	}

	cols = make(map[string]bool)
	switch db.Driver {
	case "sqlite3":
		rows, err := db.QueryxContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
		if err != nil {
			return false, fmt.Errorf("error probing columns of %s: %w", table, err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				cid        int
				name, typ  string
				notNull    int
				dfltValue  sql.NullString
				primaryKey int
			)
			if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &primaryKey); err != nil {
				return false, fmt.Errorf("error scanning column info of %s: %w", table, err)
			}
			cols[strings.ToLower(name)] = true
		}
		if err := rows.Err(); err != nil {
			return false, err
		}
	default:
		var names []string
		query := `SELECT column_name FROM information_schema.columns WHERE table_name = $1`
		if err := db.SelectContext(ctx, &names, query, table); err != nil {
			return false, fmt.Errorf("error probing columns of %s: %w", table, err)
		}
		for _, n := range names {
			cols[strings.ToLower(n)] = true
		}
	}

	db.colMu.Lock()
	db.columns[table] = cols
	db.colMu.Unlock()

	return cols[strings.ToLower(column)], nil
}

// Acquire takes a semaphore slot for a read-heavy operation.
func (db *DB) Acquire(ctx context.Context) (release func(), err error) {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("could not acquire semaphore: %w", err)
	}
	return func() { db.sem.Release(1) }, nil
}
