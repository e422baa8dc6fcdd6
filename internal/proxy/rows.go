package proxy

import "database/sql"

// Rows wraps *sql.Rows. The first Close closes the underlying rows and
// ignores their close error; later calls return ErrRowsClosed.
//
// Rows are also closed when the statement that produced them leaves the
// cache, by eviction, Conn.Invalidate or Conn.Close. Next then reports
// false and Scan, Columns and Close return ErrRowsClosed.
type Rows struct {
	rows   *sql.Rows
	conn   *Conn
	h      *handle
	closed bool
}

// Next advances to the next row. It returns false once the rows are closed.
func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	r.conn.touch()
	return r.rows.Next()
}

// Scan copies the current row into dest.
func (r *Rows) Scan(dest ...any) error {
	if r.closed {
		return ErrRowsClosed
	}
	r.conn.touch()
	return r.rows.Scan(dest...)
}

// Columns returns the column names.
func (r *Rows) Columns() ([]string, error) {
	if r.closed {
		return nil, ErrRowsClosed
	}
	r.conn.touch()
	return r.rows.Columns()
}

// Err returns the error, if any, encountered during iteration. It may be
// called after Close.
func (r *Rows) Err() error {
	return r.rows.Err()
}

// Close releases the rows.
func (r *Rows) Close() error {
	if r.closed {
		return ErrRowsClosed
	}
	r.release()
	r.h.untrack(r)
	return nil
}

func (r *Rows) release() {
	r.closed = true
	_ = r.rows.Close()
}
