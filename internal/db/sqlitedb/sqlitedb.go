// Package sqlitedb provides the single-file SQLite storage backend.
// It uses the pure Go modernc.org/sqlite driver, so no cgo is required.
package sqlitedb

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/patric-chuzhbe/shoplist/internal/db/sqldb"
)

//go:embed migrations/*.sql
var migrations embed.FS

type SQLiteDB struct {
	*sqldb.DB
}

// New opens (or creates) the database file at path and migrates it.
func New(ctx context.Context, path string, connectionTimeout time.Duration) (*SQLiteDB, error) {
	database, err := sqlx.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("in internal/db/sqlitedb/sqlitedb.go/New(): error while `sqlx.Open()` calling: %w", err)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY between our own goroutines.
	database.SetMaxOpenConns(1)

	if err := migrate(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	return &SQLiteDB{
		DB: sqldb.New(database, connectionTimeout, sqldb.Violations{
			Unique:     isUniqueViolation,
			ForeignKey: isForeignKeyViolation,
		}),
	}, nil
}

func dsn(path string) string {
	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return path + separator + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func migrate(ctx context.Context, database *sqlx.DB) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("in internal/db/sqlitedb/sqlitedb.go/migrate(): error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.UpContext(ctx, database.DB, "migrations"); err != nil {
		return fmt.Errorf("in internal/db/sqlitedb/sqlitedb.go/migrate(): error while `goose.UpContext()` calling: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	}

	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
