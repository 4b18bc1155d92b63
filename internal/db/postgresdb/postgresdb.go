// Package postgresdb provides a PostgreSQL-based implementation of the storage interface.
// Queries are shared with the SQLite backend through sqldb; this package owns the
// connection, the schema migrations and the mapping of PostgreSQL error codes.
package postgresdb

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/shoplist/internal/db/sqldb"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// PostgresDB is a PostgreSQL-backed implementation of the shopping-list storage.
type PostgresDB struct {
	*sqldb.DB
}

type initOptions struct {
	DBPreReset bool
}

type InitOption func(*initOptions)

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
// Optionally accepts initialization options, such as WithDBPreReset.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sqlx.Open("pgx", databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("in internal/db/postgresdb/postgresdb.go/New(): error while `sqlx.Open()` calling: %w", err)
	}

	if options.DBPreReset {
		if err := resetDB(ctx, database); err != nil {
			_ = database.Close()
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := migrate(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	return &PostgresDB{
		DB: sqldb.New(database, connectionTimeout, sqldb.Violations{
			Unique:     isUniqueViolation,
			ForeignKey: isForeignKeyViolation,
		}),
	}, nil
}

// WithDBPreReset enables or disables dropping every table before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

func migrate(ctx context.Context, database *sqlx.DB) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/migrate(): error while `goose.SetDialect()` calling: %w",
			err,
		)
	}

	if err := goose.UpContext(ctx, database.DB, "migrations"); err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/migrate(): error while `goose.UpContext()` calling: %w",
			err,
		)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

func resetDB(ctx context.Context, database *sqlx.DB) error {
	_, err := database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `database.ExecContext()` calling: %w",
			err,
		)
	}

	return nil
}
