// Package engine describes the database engines stmtpool can drive.
//
// Each dialect (SQLite, PostgreSQL) implements Engine and registers a
// factory, usually through the builtin package:
//
//	import _ "github.com/electwix/stmtpool/internal/engine/builtin"
//
//	e, err := engine.New("sqlite")
//	if err != nil {
//	    return err
//	}
//	db, err := engine.Open(ctx, e, "file::memory:", engine.ConnectionPoolConfig{})
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Engine encapsulates database-specific connection behavior.
type Engine interface {
	// Name returns the engine identifier (e.g., "sqlite", "postgresql").
	Name() string

	// DriverName returns the database/sql driver name registered by the driver package.
	DriverName() string

	// DefaultDriver returns the Go import path of the driver package.
	DefaultDriver() string

	// SupportsFeature reports whether this engine supports a specific feature.
	SupportsFeature(feature Feature) bool

	// ConnectionPool returns recommended connection pool settings.
	ConnectionPool() ConnectionPoolConfig
}

// ConnectionPoolConfig defines connection pool settings for a database.
type ConnectionPoolConfig struct {
	// MaxOpenConns is the maximum number of open connections to the database.
	// A value of 0 means no limit.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of connections in the idle connection pool.
	MaxIdleConns int

	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	// A value of 0 means connections are not closed due to age.
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime is the maximum amount of time a connection may be idle
	// before being closed.
	ConnMaxIdleTime time.Duration
}

// Merge returns c with every non-zero field of override applied.
func (c ConnectionPoolConfig) Merge(override ConnectionPoolConfig) ConnectionPoolConfig {
	if override.MaxOpenConns != 0 {
		c.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns != 0 {
		c.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime != 0 {
		c.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if override.ConnMaxIdleTime != 0 {
		c.ConnMaxIdleTime = override.ConnMaxIdleTime
	}
	return c
}

// Apply configures db with the pool settings.
func (c ConnectionPoolConfig) Apply(db *sql.DB) {
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	db.SetConnMaxLifetime(c.ConnMaxLifetime)
	db.SetConnMaxIdleTime(c.ConnMaxIdleTime)
}

// New creates a new Engine for the specified database dialect.
// Returns an error if the dialect is not supported.
func New(dialect string) (Engine, error) {
	return registry.New(dialect)
}

// Open opens and pings a database through e's driver. Non-zero fields of
// pool override the engine's recommended pool settings.
func Open(ctx context.Context, e Engine, dsn string, pool ConnectionPoolConfig) (*sql.DB, error) {
	db, err := sql.Open(e.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", e.Name(), err)
	}

	e.ConnectionPool().Merge(pool).Apply(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", e.Name(), err)
	}
	return db, nil
}
