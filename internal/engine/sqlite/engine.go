// Package sqlite provides the SQLite engine backed by modernc.org/sqlite.
package sqlite

import (
	"time"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/electwix/stmtpool/internal/engine"
)

const (
	sqliteMaxOpenConns    = 4
	sqliteMaxIdleConns    = 2
	sqliteConnMaxLifetime = 1 * time.Hour
	sqliteConnMaxIdleTime = 10 * time.Minute
)

// Engine implements engine.Engine for SQLite.
type Engine struct{}

// New creates a new SQLite engine instance.
func New() (engine.Engine, error) {
	return &Engine{}, nil
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "sqlite"
}

// DriverName returns the database/sql driver name.
func (e *Engine) DriverName() string {
	return "sqlite"
}

// DefaultDriver returns the Go import path of the SQLite driver.
func (e *Engine) DefaultDriver() string {
	return "modernc.org/sqlite"
}

// SupportsFeature reports whether SQLite supports a specific feature.
func (e *Engine) SupportsFeature(feature engine.Feature) bool {
	switch feature {
	case engine.FeaturePreparedStatements,
		engine.FeatureReturning: // SQLite 3.35.0+
		return true
	case engine.FeatureCallableStatements,
		engine.FeatureScrollableCursors,
		engine.FeatureUpdatableCursors,
		engine.FeatureHoldableCursors:
		return false
	default:
		return false
	}
}

// ConnectionPool returns recommended pool settings. SQLite serialises
// writers, so the pool stays small.
func (e *Engine) ConnectionPool() engine.ConnectionPoolConfig {
	return engine.ConnectionPoolConfig{
		MaxOpenConns:    sqliteMaxOpenConns,
		MaxIdleConns:    sqliteMaxIdleConns,
		ConnMaxLifetime: sqliteConnMaxLifetime,
		ConnMaxIdleTime: sqliteConnMaxIdleTime,
	}
}
