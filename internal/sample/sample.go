// Package sample builds database images from the embedded schema and
// sample data migrations. The sample image is what the session falls back
// to when the operational database is unavailable.
package sample

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// schemaVersion is the migration that creates the tables without data.
const schemaVersion = 1

// Build writes a database file at path. With demo set it also carries the
// sample rows; otherwise only the schema is created.
func Build(path string, demo bool) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if demo {
		err = m.Up()
	} else {
		err = m.Migrate(schemaVersion)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Image returns the bytes of a freshly built database. Each seed statement
// runs after the migrations, so tests can add rows of their own.
func Image(demo bool, seed ...string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "condominio-sample-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "image.db")
	if err := Build(path, demo); err != nil {
		return nil, err
	}
	if len(seed) > 0 {
		if err := exec(path, seed); err != nil {
			return nil, err
		}
	}
	return os.ReadFile(path)
}

func exec(path string, statements []string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("seed %q: %w", stmt, err)
		}
	}
	return nil
}
