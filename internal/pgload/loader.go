// Package pgload copies the canonical tables into PostgreSQL.
//
// Each load replaces a table's contents inside one transaction: the table
// is created if missing, truncated, and refilled with COPY.
package pgload

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ReviewSheet/internal/schema"
)

// DefaultSchema is the database schema the tables are written to.
const DefaultSchema = "public"

// Tx is the part of pgx.Tx a load uses.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, rows pgx.CopyFromSource) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Loader writes canonical tables through a transaction factory.
type Loader struct {
	schema string
	begin  func(ctx context.Context) (Tx, error)
}

// New returns a Loader writing into dbSchema through pool. An empty schema
// means DefaultSchema.
func New(pool *pgxpool.Pool, dbSchema string) *Loader {
	return newLoader(func(ctx context.Context) (Tx, error) {
		return pool.Begin(ctx)
	}, dbSchema)
}

func newLoader(begin func(ctx context.Context) (Tx, error), dbSchema string) *Loader {
	if dbSchema == "" {
		dbSchema = DefaultSchema
	}
	return &Loader{schema: dbSchema, begin: begin}
}

// LoadTable replaces the contents of table t with rows and returns the
// number of rows copied.
func (l *Loader) LoadTable(ctx context.Context, t schema.Table, rows [][]string) (n int64, err error) {
	tx, err := l.begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin load of %s: %w", t.Key, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	ident := pgx.Identifier{l.schema, t.Key}

	if _, err = tx.Exec(ctx, CreateTableSQL(l.schema, t)); err != nil {
		return 0, fmt.Errorf("create %s: %w", t.Key, err)
	}
	if _, err = tx.Exec(ctx, "TRUNCATE TABLE "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", t.Key, err)
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = convertRow(t.Fields, row)
	}

	n, err = tx.CopyFrom(ctx, ident, t.Columns(), pgx.CopyFromRows(values))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", t.Key, err)
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit %s: %w", t.Key, err)
	}
	return n, nil
}

// CreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for t.
// No key constraints are declared: key columns may be empty, and empty
// cells load as NULL.
func CreateTableSQL(dbSchema string, t schema.Table) string {
	cols := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = pgx.Identifier{f.Name}.Sanitize() + " " + f.Type.String()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{dbSchema, t.Key}.Sanitize(), strings.Join(cols, ", "))
}

// PoolOptions sizes the connection pool.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Connect opens and pings a pool for databaseURL.
func Connect(ctx context.Context, databaseURL string, opts PoolOptions) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// DatabaseName returns the database named in a connection URL, for logs.
func DatabaseName(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
