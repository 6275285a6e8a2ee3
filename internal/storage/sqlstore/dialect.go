package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// dialect carries everything that differs between backends. Queries shared by
// all backends are written with `?` placeholders and go through rebind.
type dialect struct {
	name       string
	driverName string

	upsertClient    string
	upsertEquipment string
	upsertSettings  string
	markCompany     string

	rebind                func(string) string
	isForeignKeyViolation func(error) bool
	migrationDriver       func(*sql.DB) (database.Driver, error)
}

func dialectFor(name string) (*dialect, error) {
	switch name {
	case DriverMySQL:
		return &dialect{
			name:       DriverMySQL,
			driverName: "mysql",
			upsertClient: `INSERT INTO clients (id, name) VALUES (?, ?)
				ON DUPLICATE KEY UPDATE name = VALUES(name)`,
			// client_id stays as first written: an equipment never changes owner on update
			upsertEquipment: `INSERT INTO equipment (id, name, category, is_billable, client_id) VALUES (?, ?, ?, ?, ?)
				ON DUPLICATE KEY UPDATE
					name = VALUES(name),
					category = VALUES(category),
					is_billable = VALUES(is_billable)`,
			upsertSettings: `INSERT INTO settings (id, price_per_equipment, cache_expiration) VALUES (1, ?, ?)
				ON DUPLICATE KEY UPDATE
					price_per_equipment = VALUES(price_per_equipment),
					cache_expiration = VALUES(cache_expiration)`,
			markCompany: `INSERT IGNORE INTO sync_run_companies (run_id, company_id) VALUES (?, ?)`,
			rebind:      func(q string) string { return q },
			isForeignKeyViolation: func(err error) bool {
				var mysqlErr *mysql.MySQLError
				return errors.As(err, &mysqlErr) && mysqlErr.Number == 1452
			},
			migrationDriver: func(db *sql.DB) (database.Driver, error) {
				return migratemysql.WithInstance(db, &migratemysql.Config{})
			},
		}, nil

	case DriverSQLite, DriverPostgres:
		d := &dialect{
			name: name,
			upsertClient: `INSERT INTO clients (id, name) VALUES (?, ?)
				ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
			upsertEquipment: `INSERT INTO equipment (id, name, category, is_billable, client_id) VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					name = excluded.name,
					category = excluded.category,
					is_billable = excluded.is_billable`,
			upsertSettings: `INSERT INTO settings (id, price_per_equipment, cache_expiration) VALUES (1, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					price_per_equipment = excluded.price_per_equipment,
					cache_expiration = excluded.cache_expiration`,
			markCompany: `INSERT INTO sync_run_companies (run_id, company_id) VALUES (?, ?)
				ON CONFLICT (run_id, company_id) DO NOTHING`,
		}

		if name == DriverSQLite {
			d.driverName = "sqlite"
			d.rebind = func(q string) string { return q }
			d.isForeignKeyViolation = func(err error) bool {
				var sqliteErr *sqlite.Error
				if !errors.As(err, &sqliteErr) {
					return false
				}
				// the primary code shows up when extended result codes are off
				return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
					(sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "FOREIGN KEY"))
			}
			d.migrationDriver = func(db *sql.DB) (database.Driver, error) {
				return migratesqlite.WithInstance(db, &migratesqlite.Config{})
			}
			return d, nil
		}

		d.driverName = "pgx"
		d.rebind = rebindDollar
		d.isForeignKeyViolation = func(err error) bool {
			var pgErr *pgconn.PgError
			return errors.As(err, &pgErr) && pgErr.Code == "23503"
		}
		d.migrationDriver = func(db *sql.DB) (database.Driver, error) {
			return migratepgx.WithInstance(db, &migratepgx.Config{})
		}
		return d, nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", name)
}

// rebindDollar turns `?` placeholders into postgres `$n` ones.
func rebindDollar(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 8)

	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
