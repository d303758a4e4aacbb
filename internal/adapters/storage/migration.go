package storage

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Blank import required for PostgreSQL driver registration for migrations
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator is the subset of migrate.Migrate used here
type Migrator interface {
	Up() error
	Close() (error, error)
}

// MigrationEngine builds a Migrator, so tests never touch a database
type MigrationEngine func(databaseURL string) (Migrator, error)

// Migration applies the embedded PostgreSQL schema
type Migration struct {
	databaseURL string
	engine      MigrationEngine
}

func NewMigration(databaseURL string, engine MigrationEngine) *Migration {
	return &Migration{
		databaseURL: databaseURL,
		engine:      engine,
	}
}

// DefaultEngine reads migrations from the binary
func DefaultEngine(databaseURL string) (Migrator, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", source, databaseURL)
}

// Up applies every pending migration. No pending migration is not an error.
func (mg *Migration) Up() (err error) {
	m, err := mg.engine(mg.databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration source error: %v", err, serr)
			} else {
				err = serr
			}
		}
		if dberr != nil {
			if err != nil {
				err = fmt.Errorf("%w; migration database error: %v", err, dberr)
			} else {
				err = dberr
			}
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
