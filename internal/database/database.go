// Package database provides a read-only, in-memory SQLite handle over a
// database image and the queries the views run against it.
package database

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bryan-buckman/condominio/internal/model"
	_ "modernc.org/sqlite"
)

// ErrCorruptDatabase is returned when the bytes are not a usable database image.
var ErrCorruptDatabase = errors.New("corrupt database image")

// Table names in the database image.
const (
	TableNews     = "Noticias"
	TableEvents   = "Calendario"
	TableTenants  = "Inquilinos"
	TablePayments = "PagoDeCuotas"
)

// RequiredTables lists the tables every image must contain.
var RequiredTables = []string{TableNews, TableEvents, TableTenants, TablePayments}

var sqliteHeader = []byte("SQLite format 3\x00")

// Header offsets of the file format read and write versions. 2 marks WAL.
const (
	headerWriteVersion = 18
	headerReadVersion  = 19
)

// deserializer is implemented by modernc.org/sqlite connections.
type deserializer interface {
	Deserialize(buf []byte) error
}

// DB wraps an in-memory SQLite connection holding one database image.
type DB struct {
	conn *sql.DB
	size int
}

// Open loads image into a fresh in-memory database. Invalid images fail
// with ErrCorruptDatabase. The handle rejects writes.
func Open(ctx context.Context, image []byte) (*DB, error) {
	if len(image) < len(sqliteHeader) || !bytes.Equal(image[:len(sqliteHeader)], sqliteHeader) {
		return nil, fmt.Errorf("%w: missing SQLite header", ErrCorruptDatabase)
	}

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// An in-memory database lives inside its connection, so the pool is
	// pinned to a single connection that is never recycled.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	conn.SetConnMaxIdleTime(0)

	db := &DB{conn: conn, size: len(image)}
	if err := db.deserialize(ctx, image); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.verify(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set query_only: %w", err)
	}
	return db, nil
}

// Close closes the database connection and discards the image.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Size returns the length in bytes of the image the handle was built from.
func (db *DB) Size() int {
	return db.size
}

func (db *DB) deserialize(ctx context.Context, image []byte) error {
	c, err := db.conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer c.Close()

	return c.Raw(func(driverConn any) error {
		d, ok := driverConn.(deserializer)
		if !ok {
			return fmt.Errorf("sqlite driver %T cannot deserialize", driverConn)
		}
		if err := d.Deserialize(rollbackJournal(image)); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptDatabase, err)
		}
		return nil
	})
}

// rollbackJournal returns image with a WAL header switched back to the
// legacy rollback journal. The in-memory VFS cannot open WAL databases.
// The caller's slice is never modified.
func rollbackJournal(image []byte) []byte {
	if len(image) <= headerReadVersion {
		return image
	}
	if image[headerWriteVersion] != 2 && image[headerReadVersion] != 2 {
		return image
	}
	patched := bytes.Clone(image)
	patched[headerWriteVersion] = 1
	patched[headerReadVersion] = 1
	return patched
}

// verify checks the image is readable and carries every required table.
func (db *DB) verify(ctx context.Context) error {
	var check string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA quick_check;").Scan(&check); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptDatabase, err)
	}
	if check != "ok" {
		return fmt.Errorf("%w: integrity check: %s", ErrCorruptDatabase, check)
	}

	rows, err := db.conn.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptDatabase, err)
	}
	defer rows.Close()
	tables := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptDatabase, err)
		}
		tables[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptDatabase, err)
	}

	var missing []string
	for _, t := range RequiredTables {
		if !tables[t] {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing tables %s", ErrCorruptDatabase, strings.Join(missing, ", "))
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
