package proxy

import (
	"context"
	"database/sql"

	"github.com/electwix/stmtpool/internal/stmtcache"
)

// Stmt is the application's view of a cached prepared statement.
type Stmt struct {
	conn   *Conn
	key    stmtcache.Key
	h      *handle
	closed bool
}

// Key returns the preparation request the statement was created for.
func (s *Stmt) Key() stmtcache.Key { return s.key }

// ExecContext executes the statement.
func (s *Stmt) ExecContext(ctx context.Context, args ...any) (sql.Result, error) {
	stmt, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return stmt.ExecContext(ctx, args...)
}

// QueryContext executes the statement and returns its rows.
func (s *Stmt) QueryContext(ctx context.Context, args ...any) (*Rows, error) {
	stmt, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	r := &Rows{rows: rows, conn: s.conn, h: s.h}
	s.h.track(r)
	return r, nil
}

// Close hands the statement back to the connection's cache. The prepared
// handle stays open until the cache evicts it or the connection closes.
func (s *Stmt) Close() error {
	if s.closed {
		return ErrStmtClosed
	}
	s.closed = true
	s.h = nil
	return nil
}

// active returns the underlying statement, preparing it again if the
// cache has evicted the handle since Prepare.
func (s *Stmt) active(ctx context.Context) (*sql.Stmt, error) {
	if s.closed {
		return nil, ErrStmtClosed
	}
	if s.conn.closed {
		return nil, ErrConnClosed
	}
	if s.h.closed {
		h, err := s.conn.prepareHandle(ctx, s.key)
		if err != nil {
			return nil, err
		}
		s.h = h
	}
	s.conn.touch()
	return s.h.stmt, nil
}
