// Package pgtest starts a disposable PostgreSQL container with the schema
// migrations applied, for repository tests. Tests are skipped when Docker
// is unavailable or -short is set.
package pgtest

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/inspector/cmd/migrate/migrations"
	"github.com/JaimeStill/inspector/pkg/database"
)

const image = "postgres:16-alpine"

// New returns a pool connected to a fresh migrated database. The container
// and pool are released when t finishes.
func New(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase("inspector"),
		postgres.WithUsername("inspector"),
		postgres.WithPassword("inspector"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	if err := migrateUp(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sys, err := database.New(&database.Config{
		URL:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: "5m",
		ConnTimeout:     "10s",
	}, Logger())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := sys.Ping(ctx); err != nil {
		t.Fatalf("ping database: %v", err)
	}

	db := sys.Connection()
	t.Cleanup(func() { db.Close() })
	return db
}

// Reset empties every table so subtests start from a known state.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec("TRUNCATE products, defects"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

// Logger discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func migrateUp(dsn string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
