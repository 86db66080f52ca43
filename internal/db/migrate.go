package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5:// scheme
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jonathan/outreach-tracker/internal/db/migrations"
)

// MigrateResult describes what happened during migration.
type MigrateResult struct {
	Version uint
	Dirty   bool
	Changed bool
}

// MigrateDirection selects which way Migrate moves the schema.
type MigrateDirection string

// Migration directions.
const (
	MigrateUp   MigrateDirection = "up"
	MigrateDown MigrateDirection = "down"
)

// MigrationURL rewrites a postgres:// connection string to the pgx5:// scheme
// understood by the golang-migrate pgx/v5 driver.
func MigrationURL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}

// Migrate applies (up) or rolls back (down) the embedded migrations.
func Migrate(databaseURL string, direction MigrateDirection) (*MigrateResult, error) {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	switch direction {
	case MigrateUp, "":
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return nil, fmt.Errorf("unknown migration direction %q", direction)
	}

	changed := true
	if errors.Is(err, migrate.ErrNoChange) {
		changed = false
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", direction, err)
	}

	return currentVersion(m, changed)
}

// MigrationVersion reports the applied schema version without changing it.
func MigrationVersion(databaseURL string) (*MigrateResult, error) {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return currentVersion(m, false)
}

func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, MigrationURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

func currentVersion(m *migrate.Migrate, changed bool) (*MigrateResult, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return &MigrateResult{Changed: changed}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migration version: %w", err)
	}
	return &MigrateResult{Version: version, Dirty: dirty, Changed: changed}, nil
}
