package proxy

import (
	"errors"
	"fmt"

	"github.com/electwix/stmtpool/internal/engine"
	"github.com/electwix/stmtpool/internal/stmtcache"
)

var (
	// ErrConnClosed is returned by operations on a closed Conn.
	ErrConnClosed = errors.New("proxy: connection is closed")
	// ErrStmtClosed is returned by operations on a closed Stmt.
	ErrStmtClosed = errors.New("proxy: statement is closed")
	// ErrRowsClosed is returned when Rows are used or closed after Close.
	ErrRowsClosed = errors.New("proxy: rows are closed")
)

// UnsupportedError reports a preparation request that the connection's
// engine cannot serve.
type UnsupportedError struct {
	Engine  string
	Feature engine.Feature
	Key     stmtcache.Key
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s does not support %s (%s)", e.Engine, e.Feature, e.Key.Kind())
}

// requiredFeatures lists the engine features a key's preparation mode needs.
func requiredFeatures(key stmtcache.Key) []engine.Feature {
	var features []engine.Feature
	kind := key.Kind()

	switch kind {
	case stmtcache.KindGeneratedKeys:
		if key.GeneratedKeys() == stmtcache.ReturnGeneratedKeys {
			features = append(features, engine.FeatureReturning)
		}
	case stmtcache.KindColumnIndexes, stmtcache.KindColumnNames:
		features = append(features, engine.FeatureReturning)
	}

	if kind.Callable() {
		features = append(features, engine.FeatureCallableStatements)
	}

	switch kind {
	case stmtcache.KindResultSet, stmtcache.KindHoldable,
		stmtcache.KindCallResultSet, stmtcache.KindCallHoldable:
		if key.ResultSetType() != stmtcache.TypeForwardOnly {
			features = append(features, engine.FeatureScrollableCursors)
		}
		if key.Concurrency() == stmtcache.ConcurUpdatable {
			features = append(features, engine.FeatureUpdatableCursors)
		}
	}

	if (kind == stmtcache.KindHoldable || kind == stmtcache.KindCallHoldable) &&
		key.Holdability() == stmtcache.HoldCursorsOverCommit {
		features = append(features, engine.FeatureHoldableCursors)
	}

	return features
}
