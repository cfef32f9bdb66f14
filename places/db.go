// Package places implements the history storage consumed by the places
// C surface: visit observations in, frecency-ranked autocomplete results
// out. Storage is sqlite; the schema lives in embedded migrations.
package places

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrInvalidURL rejects observations whose url does not parse as an
// absolute URL.
var ErrInvalidURL = errors.New("places: invalid url")

// DB is one places connection. It is safe for use from a single caller at
// a time; concurrent use is bounded by sqlite itself.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the places database at path and brings
// its schema up to date. A non-empty encryptionKey is applied as PRAGMA
// key, which is honored only when the driver is linked against SQLCipher
// and is inert under plain sqlite.
func Open(path, encryptionKey string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("places: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if encryptionKey != "" {
		quoted := strings.ReplaceAll(encryptionKey, "'", "''")
		if _, err := db.Exec(fmt.Sprintf("PRAGMA key = '%s'", quoted)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("places: applying key: %w", err)
		}
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("places: migrating %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// withTx runs fn in a transaction.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
