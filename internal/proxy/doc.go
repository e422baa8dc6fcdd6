// Package proxy wraps database/sql connections so that prepared statements
// are reused through a per-connection stmtcache.Cache.
//
// A Pool hands out Conn values. Each Conn owns one statement cache for its
// whole life: Prepare looks the request up in the cache and only asks the
// driver to prepare on a miss. Closing a Stmt returns it to the cache;
// closing the Conn closes every cached statement and releases the
// underlying connection back to the database/sql pool.
//
// Conn, Stmt and Rows follow the single-owner model of the cache: they must
// not be shared between goroutines.
package proxy
