package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryan-buckman/condominio/internal/model"
	"github.com/bryan-buckman/condominio/internal/sample"
)

// openImage builds a schema-only image, applies seed, and opens it.
func openImage(t *testing.T, seed ...string) *DB {
	t.Helper()
	img, err := sample.Image(false, seed...)
	require.NoError(t, err)

	db, err := Open(context.Background(), img)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func date(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOpen_RejectsCorruptImages(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, nil)
	assert.ErrorIs(t, err, ErrCorruptDatabase)

	_, err = Open(ctx, []byte("definitely not a database"))
	assert.ErrorIs(t, err, ErrCorruptDatabase)

	// A valid header followed by garbage.
	garbage := append([]byte("SQLite format 3\x00"), make([]byte, 100)...)
	_, err = Open(ctx, garbage)
	assert.ErrorIs(t, err, ErrCorruptDatabase)
}

func TestOpen_RequiresTables(t *testing.T) {
	img, err := sample.Image(false, "DROP TABLE PagoDeCuotas")
	require.NoError(t, err)

	_, err = Open(context.Background(), img)
	require.ErrorIs(t, err, ErrCorruptDatabase)
	assert.Contains(t, err.Error(), "PagoDeCuotas")
}

// walImage builds a database file in WAL mode with one news row and
// returns its bytes once the log has been checkpointed into the file.
func walImage(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wal.db")
	require.NoError(t, sample.Build(path, false))

	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)

	var mode string
	require.NoError(t, conn.QueryRow("PRAGMA journal_mode=WAL").Scan(&mode))
	require.Equal(t, "wal", mode)
	_, err = conn.Exec("INSERT INTO Noticias (Fecha, Texto) VALUES ('2025-01-01', 'Año nuevo')")
	require.NoError(t, err)
	_, err = conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	img, err := os.ReadFile(path)
	require.NoError(t, err)
	return img
}

func TestOpen_WALImage(t *testing.T) {
	img := walImage(t)
	require.Equal(t, byte(2), img[headerWriteVersion])
	require.Equal(t, byte(2), img[headerReadVersion])

	db, err := Open(context.Background(), img)
	require.NoError(t, err)
	defer db.Close()

	news, err := db.LatestNews(context.Background(), DefaultNewsLimit)
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "Año nuevo", news[0].Text)

	// The caller's bytes are untouched.
	assert.Equal(t, byte(2), img[headerWriteVersion])
	assert.Equal(t, byte(2), img[headerReadVersion])
}

func TestRollbackJournal(t *testing.T) {
	short := []byte("SQLite")
	assert.Equal(t, short, rollbackJournal(short))

	legacy := make([]byte, 100)
	legacy[headerWriteVersion], legacy[headerReadVersion] = 1, 1
	assert.Same(t, &legacy[0], &rollbackJournal(legacy)[0])

	wal := make([]byte, 100)
	wal[headerWriteVersion], wal[headerReadVersion] = 2, 2
	got := rollbackJournal(wal)
	assert.Equal(t, byte(1), got[headerWriteVersion])
	assert.Equal(t, byte(1), got[headerReadVersion])
	assert.Equal(t, byte(2), wal[headerWriteVersion])
}

func TestOpen_ReadOnly(t *testing.T) {
	db := openImage(t)
	_, err := db.conn.Exec("INSERT INTO Noticias (Fecha, Texto) VALUES ('2025-01-01', 'x')")
	assert.Error(t, err)
}

func TestOpen_DemoImage(t *testing.T) {
	img, err := sample.Image(true)
	require.NoError(t, err)

	db, err := Open(context.Background(), img)
	require.NoError(t, err)
	defer db.Close()

	stats, err := db.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{News: 4, Events: 6, Tenants: 4, Payments: 8}, stats)
	assert.Equal(t, len(img), db.Size())
}

func TestLatestNews(t *testing.T) {
	db := openImage(t,
		"INSERT INTO Noticias (Fecha, Texto) VALUES ('2024-12-31', 'fin de año'), ('2025-01-01', 'año nuevo')",
		"INSERT INTO Noticias (Fecha, Texto) VALUES ('2024-06-01', 'junio'), ('2024-11-15', 'noviembre')",
	)
	ctx := context.Background()

	items, err := db.LatestNews(ctx, DefaultNewsLimit)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "año nuevo", items[0].Text)
	assert.Equal(t, date("2025-01-01"), items[0].Date)
	assert.Equal(t, "fin de año", items[1].Text)
	assert.Equal(t, "noviembre", items[2].Text)
}

func TestLatestNews_Empty(t *testing.T) {
	db := openImage(t)
	items, err := db.LatestNews(context.Background(), DefaultNewsLimit)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEventsForMonth(t *testing.T) {
	db := openImage(t, `INSERT INTO Calendario (Fecha, Titulo, Descripcion) VALUES
		('2025-08-15', 'Asamblea', 'Salón comunal'),
		('2025-08-15', 'Agua', NULL),
		('2025-08-01', 'Limpieza', NULL),
		('2025-07-31', 'Julio', NULL),
		('2025-09-01', 'Septiembre', NULL),
		('2024-08-15', 'Otro año', NULL)`)
	ym := model.YearMonth{Year: 2025, Month: 8}

	byDay, err := db.EventsForMonth(context.Background(), ym)
	require.NoError(t, err)
	require.Len(t, byDay, 2)

	for day, events := range byDay {
		for _, ev := range events {
			assert.Equal(t, ym, model.Of(ev.Date))
			assert.Equal(t, day, ev.Date.Day())
		}
	}

	require.Len(t, byDay[15], 2)
	assert.Equal(t, "Agua", byDay[15][0].Title, "same-day events ordered by title")
	assert.Equal(t, "", byDay[15][0].Description)
	assert.Equal(t, "Asamblea", byDay[15][1].Title)
	assert.Equal(t, "Salón comunal", byDay[15][1].Description)
	assert.Equal(t, "Limpieza", byDay[1][0].Title)
}

func TestFindTenant(t *testing.T) {
	db := openImage(t, `INSERT INTO Inquilinos VALUES ('1234567890123', 'Ana', 'López', '1990-05-12', 101)`)
	ctx := context.Background()
	q := TenantQuery{
		NationalID:       "1234567890123",
		HouseNumber:      101,
		FirstNamePattern: "Ana",
		LastNamePattern:  "López",
		BirthDate:        "1990-05-12",
	}

	tenant, found, err := db.FindTenant(ctx, q)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.Tenant{
		NationalID:  "1234567890123",
		FirstName:   "Ana",
		LastName:    "López",
		BirthDate:   date("1990-05-12"),
		HouseNumber: 101,
	}, tenant)

	mismatches := map[string]func(*TenantQuery){
		"dpi":        func(q *TenantQuery) { q.NationalID = "1234567890124" },
		"house":      func(q *TenantQuery) { q.HouseNumber = 102 },
		"birth date": func(q *TenantQuery) { q.BirthDate = "1990-05-13" },
		"first name": func(q *TenantQuery) { q.FirstNamePattern = "Ann" },
		"last name":  func(q *TenantQuery) { q.LastNamePattern = "Lopez" },
	}
	for name, mutate := range mismatches {
		t.Run(name, func(t *testing.T) {
			bad := q
			mutate(&bad)
			_, found, err := db.FindTenant(ctx, bad)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestFindTenant_NamesUseLike(t *testing.T) {
	db := openImage(t, `INSERT INTO Inquilinos VALUES ('1234567890123', 'Ana', 'López', '1990-05-12', 101)`)
	q := TenantQuery{
		NationalID:       "1234567890123",
		HouseNumber:      101,
		FirstNamePattern: "ANA",
		LastNamePattern:  "L%",
		BirthDate:        "1990-05-12",
	}
	// LIKE folds ASCII case and honours wildcards.
	_, found, err := db.FindTenant(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestIsDuesPaidForCurrentMonth(t *testing.T) {
	now := time.Date(2025, 8, 20, 9, 30, 0, 0, time.UTC)
	db := openImage(t, "INSERT INTO PagoDeCuotas VALUES (101, 2025, 8, '2025-08-07'), (102, 2025, 7, '2025-07-10')")
	ctx := context.Background()

	paid, err := db.IsDuesPaidForCurrentMonth(ctx, 101, now)
	require.NoError(t, err)
	assert.True(t, paid)

	paid, err = db.IsDuesPaidForCurrentMonth(ctx, 102, now)
	require.NoError(t, err)
	assert.False(t, paid)

	paid, err = db.IsDuesPaidForCurrentMonth(ctx, 101, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.False(t, paid, "a new month needs a new payment")
}

func TestPaymentHistory(t *testing.T) {
	db := openImage(t, `INSERT INTO PagoDeCuotas VALUES
		(101, 2025, 2, '2025-02-03'),
		(101, 2024, 12, '2024-12-10'),
		(101, 2025, 1, '2025-01-09'),
		(101, 2024, 11, '2024-11-11'),
		(102, 2025, 1, '2025-01-15')`)
	ctx := context.Background()

	got, err := db.PaymentHistory(ctx, 101, model.YearMonth{Year: 2024, Month: 12}, model.YearMonth{Year: 2025, Month: 2})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, model.YearMonth{Year: 2024, Month: 12}, got[0].Period())
	assert.Equal(t, model.YearMonth{Year: 2025, Month: 1}, got[1].Period())
	assert.Equal(t, model.YearMonth{Year: 2025, Month: 2}, got[2].Period())
	assert.Equal(t, date("2025-02-03"), got[2].PaidDate)

	for _, p := range got {
		assert.Equal(t, 101, p.HouseNumber)
	}
}

func TestPaymentHistory_StartAfterEnd(t *testing.T) {
	db := openImage(t, "INSERT INTO PagoDeCuotas VALUES (101, 2025, 1, '2025-01-09')")

	got, err := db.PaymentHistory(context.Background(), 101,
		model.YearMonth{Year: 2025, Month: 3}, model.YearMonth{Year: 2025, Month: 1})
	require.NoError(t, err)
	assert.Empty(t, got)
}
