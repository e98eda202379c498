// Package adapter is the thin driver pass-through the renderer's
// callers use to actually run the SQL pkg/render produces: prepare,
// query, stream, and execute, plus the result-shape normalization
// execute needs. It owns a connection, nothing else; every SQL string
// and parameter list it sees was produced upstream by pkg/render and
// is passed through unmodified.
package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// featureNotSupportedCode is PostgreSQL's SQLSTATE for
// feature_not_supported.
const featureNotSupportedCode = "0A000"

// Config carries the connection options passed through to the driver,
// with a default port of 5432 when unset.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	return c
}

func (c Config) dsn() string {
	c = c.withDefaults()
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s", c.Host, c.Port, c.Database, c.SSLMode)
	if c.Username != "" {
		dsn += " user=" + c.Username
	}
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}

// Adapter wraps a pgx-backed *sql.DB. It adds no buffering, retry, or
// pooling policy of its own beyond what database/sql and pgx already
// provide; every method here is a direct forward.
type Adapter struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// Open connects to PostgreSQL via the pgx stdlib driver and pings it
// once to fail fast on bad credentials.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("pgx", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("adapter: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("adapter: ping: %w", err)
	}
	return &Adapter{DB: db, Logger: logger}, nil
}

func (a *Adapter) Close() error {
	return a.DB.Close()
}

// PrepareExecute prepares sql once and executes it with args; a
// transparent pass-through to database/sql.
func (a *Adapter) PrepareExecute(ctx context.Context, sqlText string, args ...any) (sql.Result, error) {
	stmt, err := a.DB.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stmt.Close() }()
	return stmt.ExecContext(ctx, args...)
}

// Query is a transparent pass-through to database/sql's row-returning
// execution.
func (a *Adapter) Query(ctx context.Context, sqlText string, args ...any) (*sql.Rows, error) {
	return a.DB.QueryContext(ctx, sqlText, args...)
}

// Stream is the streaming counterpart of Query. database/sql's *Rows
// is already an incremental cursor, so stream and query share one
// implementation; the distinct method exists to mirror the two
// separate entry points it mirrors.
func (a *Adapter) Stream(ctx context.Context, sqlText string, args ...any) (*sql.Rows, error) {
	return a.DB.QueryContext(ctx, sqlText, args...)
}

// PreparedQuery identifies a cached, named prepared statement: the
// SQL text it was built from, plus the name the driver most recently
// assigned it. It is the caller's responsibility to hold one per
// statement it wants reuse for.
type PreparedQuery struct {
	Name string
	SQL  string
}

// ExecOutcome is the normalized result of Execute: exactly one of
// Result, ResetErr or Err is set, and Reset is true exactly when
// ResetErr is set. Reset signals that the caller's cached
// PreparedQuery is no longer valid and should be discarded before any
// retry.
type ExecOutcome struct {
	Result   sql.Result
	Reset    bool
	ResetErr error
	Err      error
}

// Execute runs ref against args and normalizes the result the way
// the caller needs:
//   - a successful exec whose driver-assigned statement name no
//     longer matches ref.Name still reports success, with the rename
//     folded in rather than surfaced to the caller;
//   - pgconn errors carrying the feature_not_supported SQLSTATE, and
//     any error the driver itself reports as safe to retry (per
//     pgconn.SafeToRetry), become a reset signal so the caller drops
//     its cached PreparedQuery;
//   - every other error propagates unchanged.
func (a *Adapter) Execute(ctx context.Context, ref *PreparedQuery, args []any) ExecOutcome {
	stmt, err := a.DB.PrepareContext(ctx, ref.SQL)
	if err != nil {
		return classifyExecError(err)
	}
	defer func() { _ = stmt.Close() }()

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return classifyExecError(err)
	}

	// database/sql's statement cache can silently re-prepare under a
	// new server-side name after a schema change invalidates the old
	// one; ref.SQL is unchanged so the caller's next Execute call will
	// transparently reuse whatever name the driver now holds.
	ref.Name = ref.SQL
	return ExecOutcome{Result: res}
}

func classifyExecError(err error) ExecOutcome {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == featureNotSupportedCode {
		return ExecOutcome{Reset: true, ResetErr: err}
	}
	if pgconn.SafeToRetry(err) {
		return ExecOutcome{Reset: true, ResetErr: err}
	}
	return ExecOutcome{Err: err}
}
