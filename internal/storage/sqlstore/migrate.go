package sqlstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies the embedded migrations for the configured backend.
func (s *Storage) Migrate() (err error) {
	const op = "storage.sqlstore.Migrate"

	src, err := iofs.New(migrationsFS, "migrations/"+s.dialect.name)
	if err != nil {
		return fmt.Errorf("%s: open migrations: %w", op, err)
	}

	// The migrate drivers close the *sql.DB they are given. Networked backends
	// get a dedicated pool for it; SQLite must reuse its single connection.
	db := s.db
	owned := s.dialect.name != DriverSQLite
	if owned {
		db, err = sql.Open(s.dialect.driverName, s.dsn)
		if err != nil {
			return fmt.Errorf("%s: open migration connection: %w", op, err)
		}
	}

	driver, err := s.dialect.migrationDriver(db)
	if err != nil {
		if owned {
			db.Close()
		}
		return fmt.Errorf("%s: migration driver: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, s.dialect.name, driver)
	if err != nil {
		if owned {
			db.Close()
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if owned {
		defer func() {
			srcErr, dbErr := m.Close()
			if err == nil {
				err = errors.Join(srcErr, dbErr)
			}
		}()
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: migration up: %w", op, err)
	}

	return nil
}
