package proxy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/electwix/stmtpool/internal/engine"
	"github.com/electwix/stmtpool/internal/logging"
)

// DefaultCacheSize is the statement cache capacity used when
// Options.CacheSize is zero.
const DefaultCacheSize = 32

// Options configures the connections handed out by a Pool.
type Options struct {
	// CacheSize is the per-connection statement cache capacity.
	CacheSize int
	// Engine, when set, rejects preparation modes the engine lacks.
	Engine engine.Engine
	// Logger defaults to a nop logger.
	Logger logging.Logger
}

// Pool hands out cache-owning connections from a *sql.DB.
type Pool struct {
	db   *sql.DB
	opts Options
}

// NewPool wraps db. The caller keeps ownership of db.
func NewPool(db *sql.DB, opts Options) *Pool {
	if opts.CacheSize == 0 {
		opts.CacheSize = DefaultCacheSize
	}
	opts.Logger = logging.OrNop(opts.Logger)
	return &Pool{db: db, opts: opts}
}

// DB returns the wrapped database handle.
func (p *Pool) DB() *sql.DB { return p.db }

// Acquire takes a connection from the database/sql pool and gives it a
// fresh statement cache. Close the returned Conn to release it.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	raw, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	conn, err := newConn(raw, p.opts)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}
	return conn, nil
}
