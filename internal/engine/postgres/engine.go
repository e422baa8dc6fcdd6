// Package postgres provides the PostgreSQL engine backed by pgx.
package postgres

import (
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/electwix/stmtpool/internal/engine"
)

const (
	postgresMaxOpenConns    = 25
	postgresMaxIdleConns    = 5
	postgresConnMaxLifetime = 1 * time.Hour
	postgresConnMaxIdleTime = 30 * time.Minute
)

// Engine implements engine.Engine for PostgreSQL.
type Engine struct{}

// New creates a new PostgreSQL engine instance.
func New() (engine.Engine, error) {
	return &Engine{}, nil
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "postgresql"
}

// DriverName returns the database/sql driver name registered by pgx/v5/stdlib.
func (e *Engine) DriverName() string {
	return "pgx"
}

// DefaultDriver returns the Go import path of the PostgreSQL driver.
func (e *Engine) DefaultDriver() string {
	return "github.com/jackc/pgx/v5"
}

// SupportsFeature reports whether PostgreSQL supports a specific feature.
func (e *Engine) SupportsFeature(feature engine.Feature) bool {
	switch feature {
	case engine.FeaturePreparedStatements,
		engine.FeatureReturning,
		engine.FeatureCallableStatements, // CALL procedure(...)
		engine.FeatureScrollableCursors,  // DECLARE ... SCROLL CURSOR
		engine.FeatureUpdatableCursors,   // WHERE CURRENT OF
		engine.FeatureHoldableCursors:    // DECLARE ... WITH HOLD
		return true
	default:
		return false
	}
}

// ConnectionPool returns recommended connection pool settings for PostgreSQL.
func (e *Engine) ConnectionPool() engine.ConnectionPoolConfig {
	return engine.ConnectionPoolConfig{
		MaxOpenConns:    postgresMaxOpenConns,
		MaxIdleConns:    postgresMaxIdleConns,
		ConnMaxLifetime: postgresConnMaxLifetime,
		ConnMaxIdleTime: postgresConnMaxIdleTime,
	}
}
