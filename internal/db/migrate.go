package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// RunPostgresMigrations applies all pending Postgres migrations over a
// separate connection.
func RunPostgresMigrations(dsn string, logger *zap.SugaredLogger) error {
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer db.Close()

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}
	return run("migrations/postgres", "postgres", dbDriver, logger)
}

// RunSQLiteMigrations applies all pending SQLite migrations on db. The
// handle stays open for the caller.
func RunSQLiteMigrations(db *sql.DB, logger *zap.SugaredLogger) error {
	dbDriver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}
	return run("migrations/sqlite", "sqlite", dbDriver, logger)
}

func run(dir, dbName string, dbDriver database.Driver, logger *zap.SugaredLogger) error {
	sourceDriver, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbName, dbDriver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Warnf("migrations: %s at version %d (dirty)", dbName, version)
	} else {
		logger.Infof("migrations: %s at version %d", dbName, version)
	}
	return nil
}
