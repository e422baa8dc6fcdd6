package proxy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/electwix/stmtpool/internal/engine"
	"github.com/electwix/stmtpool/internal/logging"
	"github.com/electwix/stmtpool/internal/stmtcache"
)

// handle is the cached form of a prepared statement. closed is set once
// the cache has evicted or cleared it, so that Stmt proxies still holding
// it know to prepare again.
type handle struct {
	stmt   *sql.Stmt
	rows   map[*Rows]struct{}
	closed bool
}

func (h *handle) track(r *Rows) {
	if h.rows == nil {
		h.rows = make(map[*Rows]struct{})
	}
	h.rows[r] = struct{}{}
}

func (h *handle) untrack(r *Rows) {
	delete(h.rows, r)
}

// Close closes the rows still open on the statement before the statement
// itself; drivers may free row state together with the statement.
func (h *handle) Close() error {
	h.closed = true
	for r := range h.rows {
		r.release()
	}
	h.rows = nil
	return h.stmt.Close()
}

// Conn is a pooled connection that owns a statement cache.
type Conn struct {
	id           uuid.UUID
	raw          *sql.Conn
	cache        *stmtcache.Cache[*handle]
	engine       engine.Engine
	logger       logging.Logger
	lastActivity time.Time
	closed       bool
	now          func() time.Time
}

func newConn(raw *sql.Conn, opts Options) (*Conn, error) {
	id := uuid.New()
	logger := logging.OrNop(opts.Logger).With("conn", id.String())

	cache, err := stmtcache.New[*handle](opts.CacheSize, stmtcache.Options{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("statement cache: %w", err)
	}

	c := &Conn{
		id:     id,
		raw:    raw,
		cache:  cache,
		engine: opts.Engine,
		logger: logger,
		now:    time.Now,
	}
	c.touch()
	logger.Debug("connection acquired", "capacity", cache.Cap())
	return c, nil
}

// ID identifies the connection in logs.
func (c *Conn) ID() uuid.UUID { return c.id }

// LastActivity returns when the connection or one of its statements or
// rows was last used.
func (c *Conn) LastActivity() time.Time { return c.lastActivity }

// Stats returns the statement cache counters.
func (c *Conn) Stats() stmtcache.Stats { return c.cache.Stats() }

// CacheCap returns the statement cache capacity.
func (c *Conn) CacheCap() int { return c.cache.Cap() }

// CachedKeys returns the cached preparation requests from least to most
// recently used.
func (c *Conn) CachedKeys() []stmtcache.Key { return c.cache.Keys() }

// Prepare returns a statement for key, reusing a cached one when possible.
func (c *Conn) Prepare(ctx context.Context, key stmtcache.Key) (*Stmt, error) {
	h, err := c.prepareHandle(ctx, key)
	if err != nil {
		return nil, err
	}
	return &Stmt{conn: c, key: key, h: h}, nil
}

// PrepareContext is Prepare for a plain query.
func (c *Conn) PrepareContext(ctx context.Context, query string) (*Stmt, error) {
	return c.Prepare(ctx, stmtcache.NewKey(query))
}

// ExecContext runs query without preparing or caching it.
func (c *Conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if c.closed {
		return nil, ErrConnClosed
	}
	c.touch()
	return c.raw.ExecContext(ctx, query, args...)
}

// Invalidate drops the cached statement for key, if any. Use it after the
// driver reports a statement as unusable.
func (c *Conn) Invalidate(key stmtcache.Key) bool {
	return c.cache.Remove(key)
}

// Close closes every cached statement and returns the connection to the
// database/sql pool.
func (c *Conn) Close() error {
	if c.closed {
		return ErrConnClosed
	}
	c.closed = true

	stats := c.cache.Stats()
	c.cache.Clear()
	c.logger.Debug("connection released",
		"hits", stats.Hits,
		"misses", stats.Misses,
		"evictions", stats.Evictions,
	)

	if err := c.raw.Close(); err != nil {
		return fmt.Errorf("release connection: %w", err)
	}
	return nil
}

func (c *Conn) prepareHandle(ctx context.Context, key stmtcache.Key) (*handle, error) {
	if c.closed {
		return nil, ErrConnClosed
	}
	if err := c.checkFeatures(key); err != nil {
		return nil, err
	}

	if h, ok := c.cache.Lookup(key); ok {
		c.touch()
		return h, nil
	}

	stmt, err := c.raw.PrepareContext(ctx, key.SQL())
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", key, err)
	}
	h := &handle{stmt: stmt}
	c.cache.Insert(key, h)
	c.touch()
	c.logger.Debug("statement prepared", "key", key.String(), "cached", c.cache.Len())
	return h, nil
}

func (c *Conn) checkFeatures(key stmtcache.Key) error {
	if c.engine == nil {
		return nil
	}
	for _, f := range requiredFeatures(key) {
		if !c.engine.SupportsFeature(f) {
			return &UnsupportedError{Engine: c.engine.Name(), Feature: f, Key: key}
		}
	}
	return nil
}

func (c *Conn) touch() {
	c.lastActivity = c.now()
}
