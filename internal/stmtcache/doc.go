// Package stmtcache caches prepared statement handles for a single pooled
// connection.
//
// A Cache maps preparation requests (Key) to opened statement handles and
// keeps them in least-recently-used order. When an insert pushes the cache
// past its capacity the least recently used handle is closed and dropped.
//
// Usage:
//
//	c, err := stmtcache.New[*sql.Stmt](32, stmtcache.Options{})
//	if err != nil {
//	    return err
//	}
//	key := stmtcache.NewColumnNamesKey("INSERT INTO users (name) VALUES (?)", "id")
//	stmt, ok := c.Lookup(key)
//	if !ok {
//	    stmt, err = conn.PrepareContext(ctx, key.SQL())
//	    if err != nil {
//	        return err
//	    }
//	    c.Insert(key, stmt)
//	}
//
// A Cache is owned by exactly one connection and must not be used from
// several goroutines at once. Call Clear when the owning connection closes.
package stmtcache
