package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/ticketd/db/types"
)

//go:embed schema.sql
var schema string

// DB wraps sql.DB with the application context and time source. The ticket
// store only lives in memory: data is lost when the process exits.
type DB struct {
	*sql.DB
	ctx     context.Context
	timeNow func() time.Time
	path    string
}

var _ types.Querier = (*DB)(nil)

// MemoryPath returns a new path to a named in-memory SQLite database. Each call
// returns a unique name, so that separate DB instances don't share data.
func MemoryPath() (string, error) {
	rndName := make([]byte, 12)
	if _, err := rand.Read(rndName); err != nil {
		return "", fmt.Errorf("failed generating database name: %w", err)
	}

	// Not using just :memory: to avoid 'no such table' issue with multiple
	// connections.
	// See https://github.com/mattn/go-sqlite3#faq
	return fmt.Sprintf("file:ticketd-%x?mode=memory&cache=shared", rndName), nil
}

// Open creates and configures a new in-memory SQLite database.
func Open(ctx context.Context, path string, timeNow func() time.Time) (*DB, error) {
	sqliteDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening SQLite database: %w", err)
	}

	// The database is gone once the last connection is closed, so keep idle
	// connections around indefinitely.
	sqliteDB.SetMaxIdleConns(10)
	sqliteDB.SetConnMaxLifetime(0)

	if timeNow == nil {
		timeNow = time.Now
	}

	return &DB{DB: sqliteDB, ctx: ctx, path: path, timeNow: timeNow}, nil
}

// Init creates the database schema.
func (d *DB) Init(appVersion string, logger *slog.Logger) error {
	dblogger := logger.With("path", d.path)
	dblogger.Debug("initializing database")

	ctx := d.NewContext()
	if _, err := d.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed creating database schema: %w", err)
	}

	_, err := d.ExecContext(ctx,
		`INSERT INTO _meta (version, created_at) VALUES (?, ?)`,
		appVersion, d.TimeNow().UTC())
	if err != nil {
		return fmt.Errorf("failed inserting into _meta: %w", err)
	}

	dblogger.Debug("database initialized")

	return nil
}

// NewContext returns the main database context, for operations that don't run
// within a request.
func (d *DB) NewContext() context.Context {
	return d.ctx
}

// TimeNow returns the current system time.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}
