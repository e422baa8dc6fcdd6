// Package mysql provides the MySQL engine backed by go-sql-driver/mysql.
package mysql

import (
	"time"

	// Registers the "mysql" database/sql driver.
	_ "github.com/go-sql-driver/mysql"

	"github.com/electwix/stmtpool/internal/engine"
)

const (
	mysqlMaxOpenConns = 10
	mysqlMaxIdleConns = 5
	// Below the server's default wait_timeout so idle connections are
	// recycled before MySQL drops them.
	mysqlConnMaxLifetime = 30 * time.Minute
	mysqlConnMaxIdleTime = 5 * time.Minute
)

// Engine implements engine.Engine for MySQL.
type Engine struct{}

// New creates a new MySQL engine instance.
func New() (engine.Engine, error) {
	return &Engine{}, nil
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return "mysql"
}

// DriverName returns the database/sql driver name.
func (e *Engine) DriverName() string {
	return "mysql"
}

// DefaultDriver returns the default Go driver import path for MySQL.
func (e *Engine) DefaultDriver() string {
	return "github.com/go-sql-driver/mysql"
}

// SupportsFeature reports whether MySQL supports a specific feature.
func (e *Engine) SupportsFeature(feature engine.Feature) bool {
	switch feature {
	case engine.FeaturePreparedStatements,
		engine.FeatureReturning, // via LAST_INSERT_ID, reported in sql.Result
		engine.FeatureCallableStatements:
		return true
	case engine.FeatureScrollableCursors,
		engine.FeatureUpdatableCursors,
		engine.FeatureHoldableCursors:
		return false // the text and binary protocols stream forward only
	default:
		return false
	}
}

// ConnectionPool returns recommended pool settings for MySQL.
func (e *Engine) ConnectionPool() engine.ConnectionPoolConfig {
	return engine.ConnectionPoolConfig{
		MaxOpenConns:    mysqlMaxOpenConns,
		MaxIdleConns:    mysqlMaxIdleConns,
		ConnMaxLifetime: mysqlConnMaxLifetime,
		ConnMaxIdleTime: mysqlConnMaxIdleTime,
	}
}
