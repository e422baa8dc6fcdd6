package stmtcache

import (
	"errors"

	"github.com/electwix/stmtpool/internal/logging"
)

// ErrInvalidCapacity is returned by New when capacity is below one.
var ErrInvalidCapacity = errors.New("stmtcache: capacity must be at least 1")

// Statement is an opened statement handle. *sql.Stmt satisfies it.
type Statement interface {
	comparable
	Close() error
}

// Options configures a Cache.
type Options struct {
	// Logger receives close failures at debug level. Defaults to a nop logger.
	Logger logging.Logger
}

// Stats counts cache activity since construction.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Inserts     uint64
	Evictions   uint64
	CloseErrors uint64
}

// Lookups returns Hits + Misses.
func (s Stats) Lookups() uint64 {
	return s.Hits + s.Misses
}

// entry is one node of the recency chain. sibling links entries whose
// keys share a hash bucket.
type entry[S Statement] struct {
	key     Key
	stmt    S
	prev    *entry[S]
	next    *entry[S]
	sibling *entry[S]
}

// Cache is a fixed-capacity LRU cache of statement handles.
// The chain runs from head (least recently used) to tail (most recently used).
// A Cache is not safe for concurrent use.
type Cache[S Statement] struct {
	capacity int
	buckets  map[uint32]*entry[S]
	size     int
	head     *entry[S]
	tail     *entry[S]
	stats    Stats
	logger   logging.Logger
}

// New creates a cache holding at most capacity statements.
func New[S Statement](capacity int, opts Options) (*Cache[S], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Cache[S]{
		capacity: capacity,
		buckets:  make(map[uint32]*entry[S], capacity),
		logger:   logging.OrNop(opts.Logger),
	}, nil
}

// Cap returns the capacity given to New.
func (c *Cache[S]) Cap() int { return c.capacity }

// Len returns the number of cached statements.
func (c *Cache[S]) Len() int { return c.size }

// Stats returns a snapshot of the activity counters.
func (c *Cache[S]) Stats() Stats { return c.stats }

// Lookup returns the statement cached for key and marks it most recently
// used. It reports false, without other side effects, when key is absent.
func (c *Cache[S]) Lookup(key Key) (S, bool) {
	e := c.find(key)
	if e == nil {
		c.stats.Misses++
		var zero S
		return zero, false
	}
	c.stats.Hits++
	if c.size > 1 && e != c.tail {
		c.unlink(e)
		c.push(e)
	}
	return e.stmt, true
}

// Insert caches stmt under key as the most recently used entry. If the
// cache then holds more than Cap statements, the least recently used one
// is dropped and closed.
//
// Inserting a key that is already cached replaces its statement in place,
// promotes it and closes the previous statement if it differs from stmt.
//
// The zero Key never matches a cached entry, so Insert does not cache it:
// stmt is closed straight away and the cache is left unchanged.
func (c *Cache[S]) Insert(key Key, stmt S) {
	if key.kind == 0 {
		c.closeStatement(key, stmt, "invalid key")
		return
	}
	if e := c.find(key); e != nil {
		old := e.stmt
		e.stmt = stmt
		if e != c.tail {
			c.unlink(e)
			c.push(e)
		}
		if old != stmt {
			c.closeStatement(key, old, "replaced")
		}
		return
	}

	e := &entry[S]{key: key, stmt: stmt}
	e.sibling = c.buckets[key.hash]
	c.buckets[key.hash] = e
	c.size++
	c.push(e)
	c.stats.Inserts++

	if c.size > c.capacity {
		victim := c.head
		c.drop(victim)
		c.stats.Evictions++
		c.closeStatement(victim.key, victim.stmt, "evicted")
	}
}

// Remove drops and closes the statement cached for key. It reports
// whether key was present.
func (c *Cache[S]) Remove(key Key) bool {
	e := c.find(key)
	if e == nil {
		return false
	}
	c.drop(e)
	c.closeStatement(e.key, e.stmt, "removed")
	return true
}

// Clear closes every cached statement and empties the cache.
func (c *Cache[S]) Clear() {
	if c.size == 0 {
		return
	}
	e := c.head
	c.head, c.tail = nil, nil
	c.size = 0
	clear(c.buckets)
	for e != nil {
		next := e.next
		e.prev, e.next, e.sibling = nil, nil, nil
		c.closeStatement(e.key, e.stmt, "cleared")
		e = next
	}
}

// Keys returns the cached keys from least to most recently used.
func (c *Cache[S]) Keys() []Key {
	keys := make([]Key, 0, c.size)
	for e := c.head; e != nil; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

func (c *Cache[S]) find(key Key) *entry[S] {
	for e := c.buckets[key.hash]; e != nil; e = e.sibling {
		if e.key.Equal(key) {
			return e
		}
	}
	return nil
}

// push appends e to the tail of the chain.
func (c *Cache[S]) push(e *entry[S]) {
	e.prev = c.tail
	e.next = nil
	if c.tail == nil {
		c.head = e
	} else {
		c.tail.next = e
	}
	c.tail = e
}

func (c *Cache[S]) unlink(e *entry[S]) {
	if e.prev == nil {
		c.head = e.next
	} else {
		e.prev.next = e.next
	}
	if e.next == nil {
		c.tail = e.prev
	} else {
		e.next.prev = e.prev
	}
	e.prev, e.next = nil, nil
}

// drop removes e from both the chain and its bucket.
func (c *Cache[S]) drop(e *entry[S]) {
	c.unlink(e)
	c.size--

	h := e.key.hash
	first := c.buckets[h]
	if first == e {
		if e.sibling == nil {
			delete(c.buckets, h)
		} else {
			c.buckets[h] = e.sibling
		}
		e.sibling = nil
		return
	}
	for p := first; p != nil; p = p.sibling {
		if p.sibling == e {
			p.sibling = e.sibling
			e.sibling = nil
			return
		}
	}
}

// closeStatement closes stmt and discards any error; a failed close must
// not disturb the cache.
func (c *Cache[S]) closeStatement(key Key, stmt S, reason string) {
	if err := stmt.Close(); err != nil {
		c.stats.CloseErrors++
		c.logger.Debug("statement close failed", "key", key.String(), "reason", reason, "err", err)
	}
}
