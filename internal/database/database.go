package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// InitDB opens the database and migrates the schema to the latest version.
// With an empty primaryURL the database is a local SQLite file (or ":memory:"),
// otherwise it is the remote libsql database at primaryURL.
func InitDB(dbName string, primaryURL string, authToken string) (*sqlx.DB, func(), error) {
	var (
		db      *sql.DB
		driver  string
		dialect string
		err     error
	)

	if primaryURL == "" {
		log.Info("Initializing local SQLite database", "path", dbName)
		driver, dialect = "sqlite3", "sqlite3"
		db, err = sql.Open(driver, dbName+"?_foreign_keys=on")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local database: %w", err)
		}
		// A single connection serializes writers and keeps ":memory:" databases alive.
		db.SetMaxOpenConns(1)
	} else {
		log.Info("Initializing Turso database", "url", primaryURL)
		driver, dialect = "libsql", "turso"
		db, err = sql.Open(driver, primaryURL+"?authToken="+authToken)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db %s: %w", primaryURL, err)
		}
	}

	if err := migrate(db, dialect); err != nil {
		db.Close()
		return nil, nil, err
	}

	teardown := func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}

	log.Info("Database initialized successfully")
	return sqlx.NewDb(db, driver), teardown, nil
}

func migrate(db *sql.DB, dialect string) error {
	// Foreign key support is not enabled by default in SQLite
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Error("Error enabling foreign keys", "error", err)
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(log.StandardLog())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
