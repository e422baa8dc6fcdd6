// Package builtin registers all built-in database engines.
//
// Import this package to register the SQLite, PostgreSQL and MySQL engines:
//
//	import _ "github.com/electwix/stmtpool/internal/engine/builtin"
package builtin

import (
	"github.com/electwix/stmtpool/internal/engine"
	"github.com/electwix/stmtpool/internal/engine/mysql"
	"github.com/electwix/stmtpool/internal/engine/postgres"
	"github.com/electwix/stmtpool/internal/engine/sqlite"
)

//nolint:gochecknoinits // Package registration via init is idiomatic for this use case
func init() {
	RegisterAll()
}

// RegisterAll registers all built-in database engines. It is called on
// package import.
func RegisterAll() {
	engine.Register("sqlite", sqlite.New)
	engine.Register("postgresql", postgres.New)
	engine.Register("postgres", postgres.New) // Alias
	engine.Register("mysql", mysql.New)
}
