package db

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Applied to the single pooled connection. Analyses and uploads write
// concurrently, so writers wait for the lock instead of failing.
var connPragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

func ensureDir(dbFile string) error {
	return os.MkdirAll(filepath.Dir(dbFile), 0755)
}

func open(dbFile string) (*sqlx.DB, error) {
	absPath, err := filepath.Abs(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute database path: %w", err)
	}
	if err := ensureDir(absPath); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return sqlx.Connect("sqlite", absPath)
}

// NewSQLiteDB opens the document store. The pool holds one connection so
// the per-connection pragmas stay in effect.
func NewSQLiteDB(dbFile string) (*sqlx.DB, error) {
	db, err := open(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range connPragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return db, nil
}

// RunMigrations applies the embedded migrations on a dedicated connection.
func RunMigrations(dbFile string) error {
	db, err := open(dbFile)
	if err != nil {
		return fmt.Errorf("failed to connect for migrations: %w", err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
