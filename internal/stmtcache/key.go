package stmtcache

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies the shape of a preparation request.
type Kind uint8

const (
	// KindText is plain query text.
	KindText Kind = iota + 1
	// KindGeneratedKeys is query text plus a generated-keys flag.
	KindGeneratedKeys
	// KindColumnIndexes is query text plus the indexes of generated columns.
	KindColumnIndexes
	// KindColumnNames is query text plus the names of generated columns.
	KindColumnNames
	// KindResultSet is query text plus cursor type and concurrency.
	KindResultSet
	// KindHoldable is KindResultSet plus cursor holdability.
	KindHoldable
	// KindCall is callable statement text.
	KindCall
	// KindCallResultSet is callable text plus cursor type and concurrency.
	KindCallResultSet
	// KindCallHoldable is KindCallResultSet plus cursor holdability.
	KindCallHoldable
)

var kindNames = map[Kind]string{
	KindText:          "text",
	KindGeneratedKeys: "generated_keys",
	KindColumnIndexes: "column_indexes",
	KindColumnNames:   "column_names",
	KindResultSet:     "result_set",
	KindHoldable:      "holdable",
	KindCall:          "call",
	KindCallResultSet: "call_result_set",
	KindCallHoldable:  "call_holdable",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Callable reports whether k describes a callable statement.
func (k Kind) Callable() bool {
	return k == KindCall || k == KindCallResultSet || k == KindCallHoldable
}

// GeneratedKeys tells the driver whether auto-generated keys should be
// made available after execution.
type GeneratedKeys int

const (
	ReturnGeneratedKeys GeneratedKeys = 1
	NoGeneratedKeys     GeneratedKeys = 2
)

// ResultSetType describes how a cursor may be traversed.
type ResultSetType int

const (
	TypeForwardOnly ResultSetType = iota + 1
	TypeScrollInsensitive
	TypeScrollSensitive
)

// Concurrency describes whether a cursor may update rows.
type Concurrency int

const (
	ConcurReadOnly Concurrency = iota + 1
	ConcurUpdatable
)

// Holdability describes whether cursors survive a commit.
type Holdability int

const (
	HoldCursorsOverCommit Holdability = iota + 1
	CloseCursorsAtCommit
)

// Key identifies a statement preparation request. Keys are immutable; the
// hash is computed once by the constructors. The zero Key is not valid.
type Key struct {
	kind        Kind
	sql         string
	keys        GeneratedKeys
	indexes     []int
	names       []string
	rsType      ResultSetType
	concurrency Concurrency
	holdability Holdability
	hash        uint32
}

// NewKey describes a plain prepared statement.
func NewKey(sql string) Key {
	k := Key{kind: KindText, sql: sql}
	k.hash = k.computeHash()
	return k
}

// NewGeneratedKeysKey describes a statement prepared with a generated-keys flag.
func NewGeneratedKeysKey(sql string, flag GeneratedKeys) Key {
	k := Key{kind: KindGeneratedKeys, sql: sql, keys: flag}
	k.hash = k.computeHash()
	return k
}

// NewColumnIndexesKey describes a statement returning the given generated
// columns by index. The slice is copied.
func NewColumnIndexesKey(sql string, indexes ...int) Key {
	k := Key{kind: KindColumnIndexes, sql: sql, indexes: slices.Clone(indexes)}
	k.hash = k.computeHash()
	return k
}

// NewColumnNamesKey describes a statement returning the given generated
// columns by name. The slice is copied.
func NewColumnNamesKey(sql string, names ...string) Key {
	k := Key{kind: KindColumnNames, sql: sql, names: slices.Clone(names)}
	k.hash = k.computeHash()
	return k
}

// NewResultSetKey describes a statement prepared with cursor options.
func NewResultSetKey(sql string, typ ResultSetType, concurrency Concurrency) Key {
	k := Key{kind: KindResultSet, sql: sql, rsType: typ, concurrency: concurrency}
	k.hash = k.computeHash()
	return k
}

// NewHoldableKey describes a statement prepared with cursor options and holdability.
func NewHoldableKey(sql string, typ ResultSetType, concurrency Concurrency, holdability Holdability) Key {
	k := Key{kind: KindHoldable, sql: sql, rsType: typ, concurrency: concurrency, holdability: holdability}
	k.hash = k.computeHash()
	return k
}

// NewCallKey describes a plain callable statement.
func NewCallKey(sql string) Key {
	k := Key{kind: KindCall, sql: sql}
	k.hash = k.computeHash()
	return k
}

// NewCallResultSetKey describes a callable statement with cursor options.
func NewCallResultSetKey(sql string, typ ResultSetType, concurrency Concurrency) Key {
	k := Key{kind: KindCallResultSet, sql: sql, rsType: typ, concurrency: concurrency}
	k.hash = k.computeHash()
	return k
}

// NewCallHoldableKey describes a callable statement with cursor options and holdability.
func NewCallHoldableKey(sql string, typ ResultSetType, concurrency Concurrency, holdability Holdability) Key {
	k := Key{kind: KindCallHoldable, sql: sql, rsType: typ, concurrency: concurrency, holdability: holdability}
	k.hash = k.computeHash()
	return k
}

func (k Key) Kind() Kind                   { return k.kind }
func (k Key) SQL() string                  { return k.sql }
func (k Key) Hash() uint32                 { return k.hash }
func (k Key) GeneratedKeys() GeneratedKeys { return k.keys }
func (k Key) ResultSetType() ResultSetType { return k.rsType }
func (k Key) Concurrency() Concurrency     { return k.concurrency }
func (k Key) Holdability() Holdability     { return k.holdability }

// ColumnIndexes returns a copy of the generated column indexes.
func (k Key) ColumnIndexes() []int { return slices.Clone(k.indexes) }

// ColumnNames returns a copy of the generated column names.
func (k Key) ColumnNames() []string { return slices.Clone(k.names) }

// Equal reports whether k and other describe the same preparation request.
// Keys of different kinds are never equal.
func (k Key) Equal(other Key) bool {
	if k.kind != other.kind || k.hash != other.hash {
		return false
	}
	switch k.kind {
	case KindText, KindCall:
		return k.sql == other.sql
	case KindGeneratedKeys:
		return k.keys == other.keys && k.sql == other.sql
	case KindColumnIndexes:
		return slices.Equal(k.indexes, other.indexes) && k.sql == other.sql
	case KindColumnNames:
		return slices.Equal(k.names, other.names) && k.sql == other.sql
	case KindResultSet, KindCallResultSet:
		return k.rsType == other.rsType && k.concurrency == other.concurrency && k.sql == other.sql
	case KindHoldable, KindCallHoldable:
		return k.rsType == other.rsType && k.concurrency == other.concurrency &&
			k.holdability == other.holdability && k.sql == other.sql
	default:
		return false
	}
}

const prime = 31

// computeHash folds the kind's fields into a 31-multiplier running hash,
// scalar fields first and the query text last.
func (k Key) computeHash() uint32 {
	text := hashString(k.sql)
	var h uint32
	switch k.kind {
	case KindGeneratedKeys:
		h = uint32(k.keys)
	case KindColumnIndexes:
		h = hashInts(k.indexes)
	case KindColumnNames:
		h = hashStrings(k.names)
	case KindResultSet, KindCallResultSet:
		h = uint32(k.rsType)
		h = prime*h + uint32(k.concurrency)
	case KindHoldable, KindCallHoldable:
		h = uint32(k.rsType)
		h = prime*h + uint32(k.concurrency)
		h = prime*h + uint32(k.holdability)
	default:
		return text
	}
	return prime*h + text
}

func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = prime*h + uint32(s[i])
	}
	return h
}

func hashInts(values []int) uint32 {
	h := uint32(1)
	for _, v := range values {
		h = prime*h + uint32(v)
	}
	return h
}

func hashStrings(values []string) uint32 {
	h := uint32(1)
	for _, v := range values {
		h = prime*h + hashString(v)
	}
	return h
}

// String renders the key for logs.
func (k Key) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q", k.kind, k.sql)
	switch k.kind {
	case KindGeneratedKeys:
		fmt.Fprintf(&b, " keys=%d", k.keys)
	case KindColumnIndexes:
		fmt.Fprintf(&b, " columns=%v", k.indexes)
	case KindColumnNames:
		fmt.Fprintf(&b, " names=%q", k.names)
	case KindResultSet, KindCallResultSet:
		fmt.Fprintf(&b, " type=%d concurrency=%d", k.rsType, k.concurrency)
	case KindHoldable, KindCallHoldable:
		fmt.Fprintf(&b, " type=%d concurrency=%d holdability=%d", k.rsType, k.concurrency, k.holdability)
	}
	return b.String()
}
