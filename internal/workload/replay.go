package workload

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/electwix/stmtpool/internal/logging"
	"github.com/electwix/stmtpool/internal/proxy"
	"github.com/electwix/stmtpool/internal/stmtcache"
)

// Conn is the connection surface a workload replays against.
type Conn interface {
	Prepare(ctx context.Context, key stmtcache.Key) (*proxy.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ReplayOptions configures Replay.
type ReplayOptions struct {
	Logger logging.Logger
}

// Result summarizes a replay.
type Result struct {
	Steps      int
	Executions int
	Rows       int
}

// Replay runs each step Times times in order. Prepared steps obtain their
// statement from conn, execute it, and close it again so that repeated
// steps are served from the statement cache.
func Replay(ctx context.Context, conn Conn, steps []Step, opts ReplayOptions) (Result, error) {
	logger := logging.OrNop(opts.Logger)

	var res Result
	for i, step := range steps {
		for n := 0; n < step.Times; n++ {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			rows, err := runStep(ctx, conn, step)
			if err != nil {
				return res, fmt.Errorf("step %d (line %d): %w", i+1, step.Line, err)
			}
			res.Executions++
			res.Rows += rows
		}
		res.Steps++
		logger.Debug("step replayed", "line", step.Line, "key", step.Key.String(), "times", step.Times)
	}
	return res, nil
}

func runStep(ctx context.Context, conn Conn, step Step) (int, error) {
	if step.Exec {
		_, err := conn.ExecContext(ctx, step.SQL(), step.Args...)
		return 0, err
	}

	stmt, err := conn.Prepare(ctx, step.Key)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	if !returnsRows(step.Key) {
		_, err := stmt.ExecContext(ctx, step.Args...)
		return 0, err
	}

	rows, err := stmt.QueryContext(ctx, step.Args...)
	if err != nil {
		return 0, err
	}
	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return count, err
	}
	return count, rows.Close()
}

// returnsRows reports whether a step should be run as a query.
func returnsRows(key stmtcache.Key) bool {
	switch key.Kind() {
	case stmtcache.KindColumnIndexes, stmtcache.KindColumnNames,
		stmtcache.KindResultSet, stmtcache.KindHoldable,
		stmtcache.KindCallResultSet, stmtcache.KindCallHoldable:
		return true
	}
	text := strings.ToUpper(strings.TrimSpace(key.SQL()))
	for _, prefix := range []string{"SELECT", "WITH", "VALUES", "PRAGMA"} {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return strings.Contains(text, " RETURNING ")
}
