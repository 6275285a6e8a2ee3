package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/Rainbow-Platypus/projet-facturation-clients-script/internal/config"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Storage is the relational store for clients, equipment, invoices, settings
// and sync bookkeeping. It is safe for concurrent use.
type Storage struct {
	db      *sql.DB
	dsn     string
	dialect *dialect
}

// New opens the database described by cfg and checks the connection.
// Schema changes are applied separately by Migrate.
func New(ctx context.Context, cfg config.Storage) (*Storage, error) {
	const op = "storage.sqlstore.New"

	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dsn := cfg.DSN
	if dsn == "" {
		dsn = defaultDSN(d.name, cfg)
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s, err := newStorage(ctx, db, dsn, d)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func newStorage(ctx context.Context, db *sql.DB, dsn string, d *dialect) (*Storage, error) {
	if d.name == DriverSQLite {
		// one writer; an in-memory database also lives and dies with its single connection
		db.SetMaxOpenConns(1)

		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Storage{db: db, dsn: dsn, dialect: d}, nil
}

func defaultDSN(driver string, cfg config.Storage) string {
	switch driver {
	case DriverSQLite:
		return cfg.SQLitePath
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", cfg.DBHost, cfg.DBPort)
		mc.DBName = cfg.DBName
		mc.ParseTime = true
		mc.MultiStatements = true
		return mc.FormatDSN()
	default:
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Driver names the backend in use: mysql, sqlite or postgres.
func (s *Storage) Driver() string {
	return s.dialect.name
}

type txKey struct{}

// WithinTx runs fn in one transaction. Storage calls made with the context
// handed to fn join it; nested calls reuse the outer transaction.
func (s *Storage) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	const op = "storage.sqlstore.WithinTx"

	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}

	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}

func (s *Storage) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}
