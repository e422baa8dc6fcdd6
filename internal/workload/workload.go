// Package workload parses and replays statement workloads.
//
// A workload is a list of steps, one per line by convention:
//
//	exec    "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)"
//	prepare "INSERT INTO users (name) VALUES (?)" generated_keys return args ("ann") times 3
//	prepare "SELECT id FROM users WHERE name = ?" columns (1) args ("ann")
//	call    "SELECT 1" type forward_only concurrency read_only
//
// Each prepare or call step maps to exactly one stmtcache.Key kind. Exec
// steps run without preparing.
package workload

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"

	"github.com/electwix/stmtpool/internal/stmtcache"
)

// Step is one parsed workload instruction.
type Step struct {
	Line   int
	Column int
	// Exec marks a statement run directly on the connection, bypassing
	// the statement cache.
	Exec  bool
	Key   stmtcache.Key
	Args  []any
	Times int
}

// SQL returns the statement text of the step.
func (s Step) SQL() string { return s.Key.SQL() }

// ParseError reports a syntax or semantic error in a workload file.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Parse parses the workload in src. name is used in error positions.
func Parse(name, src string) ([]Step, error) {
	tree, err := workloadParser.ParseString(name, src)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := perr.Position()
			return nil, &ParseError{File: name, Line: pos.Line, Column: pos.Column, Message: perr.Message()}
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	steps := make([]Step, 0, len(tree.Steps))
	for _, node := range tree.Steps {
		step, err := buildStep(name, node)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func buildStep(name string, node *stepNode) (Step, error) {
	fail := func(line, col int, format string, args ...any) (Step, error) {
		return Step{}, &ParseError{File: name, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
	}

	step := Step{
		Line:   node.Pos.Line,
		Column: node.Pos.Column,
		Exec:   node.Verb == "exec",
		Times:  1,
	}

	// String tokens keep their quotes; unquote them here so malformed
	// escapes surface as positioned errors.
	sql, err := strconv.Unquote(node.SQL)
	if err != nil {
		return fail(node.Pos.Line, node.Pos.Column, "invalid string literal %s", node.SQL)
	}
	names := make([]string, 0, len(node.Names))
	for _, quoted := range node.Names {
		unquoted, err := strconv.Unquote(quoted)
		if err != nil {
			return fail(node.Pos.Line, node.Pos.Column, "invalid string literal %s", quoted)
		}
		names = append(names, unquoted)
	}

	if node.Times != nil {
		if node.Times.Count < 1 {
			return fail(node.Times.Pos.Line, node.Times.Pos.Column, "times must be at least 1, got %d", node.Times.Count)
		}
		step.Times = node.Times.Count
	}

	for _, arg := range node.Args {
		value, err := arg.value()
		if err != nil {
			return fail(node.Pos.Line, node.Pos.Column, "invalid string literal %s", *arg.String)
		}
		step.Args = append(step.Args, value)
	}

	hasOptions := node.GeneratedKeys != "" || node.Columns != nil || node.Names != nil || node.Cursor != nil

	switch node.Verb {
	case "exec":
		if hasOptions {
			return fail(node.Pos.Line, node.Pos.Column, "exec does not accept preparation options")
		}
		step.Key = stmtcache.NewKey(sql)

	case "prepare":
		switch {
		case node.GeneratedKeys != "":
			step.Key = stmtcache.NewGeneratedKeysKey(sql, generatedKeys(node.GeneratedKeys))
		case node.Columns != nil:
			step.Key = stmtcache.NewColumnIndexesKey(sql, node.Columns...)
		case node.Names != nil:
			step.Key = stmtcache.NewColumnNamesKey(sql, names...)
		case node.Cursor != nil:
			c := node.Cursor
			if c.Holdability != "" {
				step.Key = stmtcache.NewHoldableKey(sql, resultSetType(c.Type), concurrency(c.Concurrency), holdability(c.Holdability))
			} else {
				step.Key = stmtcache.NewResultSetKey(sql, resultSetType(c.Type), concurrency(c.Concurrency))
			}
		default:
			step.Key = stmtcache.NewKey(sql)
		}

	case "call":
		switch {
		case node.GeneratedKeys != "" || node.Columns != nil || node.Names != nil:
			return fail(node.Pos.Line, node.Pos.Column, "call accepts only cursor options")
		case node.Cursor != nil:
			c := node.Cursor
			if c.Holdability != "" {
				step.Key = stmtcache.NewCallHoldableKey(sql, resultSetType(c.Type), concurrency(c.Concurrency), holdability(c.Holdability))
			} else {
				step.Key = stmtcache.NewCallResultSetKey(sql, resultSetType(c.Type), concurrency(c.Concurrency))
			}
		default:
			step.Key = stmtcache.NewCallKey(sql)
		}
	}

	return step, nil
}

func (a *argNode) value() (any, error) {
	switch {
	case a.String != nil:
		return strconv.Unquote(*a.String)
	case a.Int != nil:
		return *a.Int, nil
	default:
		return nil, nil
	}
}

func generatedKeys(word string) stmtcache.GeneratedKeys {
	if word == "return" {
		return stmtcache.ReturnGeneratedKeys
	}
	return stmtcache.NoGeneratedKeys
}

func resultSetType(word string) stmtcache.ResultSetType {
	switch word {
	case "scroll_insensitive":
		return stmtcache.TypeScrollInsensitive
	case "scroll_sensitive":
		return stmtcache.TypeScrollSensitive
	default:
		return stmtcache.TypeForwardOnly
	}
}

func concurrency(word string) stmtcache.Concurrency {
	if word == "updatable" {
		return stmtcache.ConcurUpdatable
	}
	return stmtcache.ConcurReadOnly
}

func holdability(word string) stmtcache.Holdability {
	if word == "hold" {
		return stmtcache.HoldCursorsOverCommit
	}
	return stmtcache.CloseCursorsAtCommit
}
