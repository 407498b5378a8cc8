package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/inspector/cmd/migrate/migrations"
	"github.com/JaimeStill/inspector/internal/config"
	"github.com/JaimeStill/inspector/pkg/database"
)

const envDSN = "INSPECTOR_DB_DSN"

type options struct {
	dsn     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	forced  bool
	verbose bool
}

func main() {
	opts := parseFlags()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(opts, logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.dsn, "dsn", "", "database connection string (default: INSPECTOR_DB_DSN or INSPECTOR_DB_* settings)")
	flag.BoolVar(&o.up, "up", false, "apply all pending migrations")
	flag.BoolVar(&o.down, "down", false, "revert all migrations")
	flag.IntVar(&o.steps, "steps", 0, "apply N migrations (negative reverts)")
	flag.BoolVar(&o.version, "version", false, "print the current schema version")
	flag.IntVar(&o.force, "force", -1, "force the schema version without running migrations")
	flag.BoolVar(&o.verbose, "verbose", false, "log each migration as it runs")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			o.forced = true
		}
	})
	return o
}

func run(o options, logger *slog.Logger) error {
	dsn, err := resolveDSN(o.dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()
	m.Log = migrateLogger{logger: logger, verbose: o.verbose}

	switch {
	case o.version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
	case o.forced:
		if err := m.Force(o.force); err != nil {
			return fmt.Errorf("force version %d: %w", o.force, err)
		}
		logger.Info("version forced", "version", o.force)
	case o.up:
		return apply("up", m.Up(), logger)
	case o.down:
		return apply("down", m.Down(), logger)
	case o.steps != 0:
		return apply(fmt.Sprintf("steps %d", o.steps), m.Steps(o.steps), logger)
	default:
		fmt.Fprintln(os.Stderr, "usage: migrate [-dsn <url>] -up | -down | -steps N | -version | -force N")
		flag.PrintDefaults()
	}
	return nil
}

func apply(op string, err error, logger *slog.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current", "op", op)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("migrations applied", "op", op)
	return nil
}

// resolveDSN prefers the flag, then INSPECTOR_DB_DSN, then the same
// database settings the server reads (including .env).
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if err := godotenv.Load(config.DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("load %s: %w", config.DotEnvFile, err)
	}
	if dsn := os.Getenv(envDSN); dsn != "" {
		return dsn, nil
	}

	var db database.Config
	if err := db.Finalize(config.DatabaseEnv); err != nil {
		return "", fmt.Errorf("database config: %w", err)
	}
	return db.Dsn(), nil
}

type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.verbose
}
