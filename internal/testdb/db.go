package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/grams-api/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds individual setup operations.
const TestTimeout = 5 * time.Second

// migrations already run, keyed by database URL.
var migrated sync.Map

type migrationResult struct {
	once sync.Once
	err  error
}

// GetTestDatabaseURL returns GRAMS_TEST_DATABASE_URL, falling back to
// DATABASE_URL.
func GetTestDatabaseURL() string {
	if url := os.Getenv("GRAMS_TEST_DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// GetTestDBWithT opens a connection to the test database with the schema
// migrated. The test is skipped when no database URL is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("GRAMS_TEST_DATABASE_URL or DATABASE_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open database connection")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close database connection: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "database ping failed")

	SetupTestDatabaseSchema(t, db, dbURL)
	return db
}

// SetupTestDatabaseSchema applies the embedded migrations once per database URL.
func SetupTestDatabaseSchema(t *testing.T, db *sql.DB, dbURL string) {
	t.Helper()

	v, _ := migrated.LoadOrStore(dbURL, &migrationResult{})
	result := v.(*migrationResult)
	result.once.Do(func() {
		goose.SetBaseFS(migrations.FS)
		goose.SetLogger(&testGooseLogger{t: t})
		defer goose.SetLogger(goose.NopLogger())
		if result.err = goose.SetDialect("postgres"); result.err != nil {
			return
		}
		result.err = goose.Up(db, ".")
	})
	require.NoError(t, result.err, "failed to run migrations")
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

type testGooseLogger struct {
	t *testing.T
}

func (l *testGooseLogger) Printf(format string, v ...any) {
	l.t.Log("goose: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *testGooseLogger) Fatalf(format string, v ...any) {
	l.t.Fatal("goose fatal error: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}
