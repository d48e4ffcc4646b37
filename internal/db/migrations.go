package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/erazemk/lostfound/internal/query"
)

//go:embed migrations
var migrationsFS embed.FS

// Schema versions. Operator tables come first so the lost-and-found tables
// can be rebuilt without touching accounts.
const (
	VersionOperators = 1
	VersionLostFound = 2
)

// Migrator applies the embedded schema migrations.
type Migrator struct {
	DB     *sql.DB
	Driver string
	// DSN is required for PostgreSQL, where the migrator opens its own
	// connection. SQLite migrates through DB so in-memory databases work.
	DSN string
}

// run opens a migrator, calls fn and releases the migrator's resources.
func (mg Migrator) run(fn func(*migrate.Migrate) error) error {
	d, err := query.DialectFor(mg.Driver)
	if err != nil {
		return err
	}

	if d == query.Postgres {
		src, err := iofs.New(migrationsFS, "migrations/postgres")
		if err != nil {
			return fmt.Errorf("loading migrations: %w", err)
		}
		url, err := pgxURL(mg.DSN)
		if err != nil {
			return err
		}
		m, err := migrate.NewWithSourceInstance("iofs", src, url)
		if err != nil {
			return fmt.Errorf("creating migrator: %w", err)
		}
		defer m.Close()
		return fn(m)
	}

	src, err := iofs.New(migrationsFS, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	inst, err := migratesqlite.WithInstance(mg.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, d.String(), inst)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	// Closing m would close mg.DB, which the caller owns.
	return fn(m)
}

// Up applies all pending migrations.
func (mg Migrator) Up() error {
	return mg.run(func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("running migrations: %w", err)
		}
		return nil
	})
}

// Down reverts every applied migration.
func (mg Migrator) Down() error {
	return mg.run(func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("reverting migrations: %w", err)
		}
		return nil
	})
}

// DownTo reverts applied migrations until version is the newest one left.
// It does nothing when the schema is already at or below version.
func (mg Migrator) DownTo(version uint) error {
	return mg.run(func(m *migrate.Migrate) error {
		cur, _, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
		if cur <= version {
			return nil
		}
		if version == 0 {
			err = m.Down()
		} else {
			err = m.Migrate(version)
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("reverting migrations: %w", err)
		}
		return nil
	})
}

// Version returns the applied schema version. A fresh database reports 0.
func (mg Migrator) Version() (version uint, dirty bool, err error) {
	err = mg.run(func(m *migrate.Migrate) error {
		v, d, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
		version, dirty = v, d
		return nil
	})
	return version, dirty, err
}

// pgxURL rewrites a postgres:// URL into the scheme of migrate's pgx driver.
func pgxURL(dsn string) (string, error) {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme), nil
		}
	}
	if strings.HasPrefix(dsn, "pgx5://") {
		return dsn, nil
	}
	return "", fmt.Errorf("postgres migrations need a postgres:// URL, got %q", dsn)
}
