package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/slok/flowtrack/internal/log"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// historyMigrationsTable is the table where golang-migrate tracks the applied versions.
const historyMigrationsTable = "workflow_history_migrations"

// Migrator applies the workflow history schema migrations.
type Migrator struct {
	db     *sql.DB
	logger log.Logger
}

// NewMigrator creates a new migrator instance.
func NewMigrator(db *sql.DB, logger log.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logger == nil {
		logger = log.Noop
	}

	return &Migrator{
		db:     db,
		logger: logger.WithValues(log.Kv{"svc": "storage.SQLiteMigrator"}),
	}, nil
}

// Up applies all the pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, func(inst *migrate.Migrate) error { return inst.Up() })
}

// Down reverts all the migrations.
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, func(inst *migrate.Migrate) error { return inst.Down() })
}

// Version returns the current schema version, zero if no migration has been applied.
func (m *Migrator) Version(ctx context.Context) (uint, error) {
	var version uint
	err := m.run(ctx, func(inst *migrate.Migrate) error {
		v, dirty, err := inst.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", v)
		}
		version = v
		return nil
	})

	return version, err
}

func (m *Migrator) run(ctx context.Context, f func(inst *migrate.Migrate) error) error {
	src, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return fmt.Errorf("could not load migrations: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			m.logger.Errorf("could not close migrations source: %s", err)
		}
	}()

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{MigrationsTable: historyMigrationsTable})
	if err != nil {
		return fmt.Errorf("could not create driver: %w", err)
	}

	inst, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	err = f(inst)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	m.logger.Debugf("Migrations applied successfully")
	return nil
}
