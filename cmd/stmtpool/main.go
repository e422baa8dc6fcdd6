// Package main implements the stmtpool CLI. It replays a workload through
// one pooled connection and reports how the statement cache behaved.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/electwix/stmtpool/internal/cli"
	"github.com/electwix/stmtpool/internal/config"
	"github.com/electwix/stmtpool/internal/engine"
	_ "github.com/electwix/stmtpool/internal/engine/builtin"
	"github.com/electwix/stmtpool/internal/logging"
	"github.com/electwix/stmtpool/internal/proxy"
	"github.com/electwix/stmtpool/internal/report"
	"github.com/electwix/stmtpool/internal/workload"
)

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if cli.ErrHelp(err) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	plan, err := loadPlan(opts, stderr)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	slogger := logging.New(logging.Options{
		Verbose: plan.Verbose,
		Format:  plan.LogFormat,
		Writer:  stderr,
	})
	logger := logging.NewSlogAdapter(slogger)

	summary, keys, err := replay(ctx, plan, logger)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	if err := summary.Write(stdout); err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if opts.ListKeys {
		_, _ = fmt.Fprintln(stdout, "cached keys (least to most recently used):")
		for _, key := range keys {
			_, _ = fmt.Fprintf(stdout, "  %s\n", key)
		}
	}
	return 0
}

// loadPlan reads the configuration, then applies environment and
// command-line overrides in that order.
func loadPlan(opts cli.Options, stderr io.Writer) (config.Plan, error) {
	plan := config.Default()

	result, err := config.Load(opts.ConfigPath, config.LoadOptions{Strict: opts.StrictConfig})
	switch {
	case err == nil:
		plan = result.Plan
		for _, warning := range result.Warnings {
			_, _ = fmt.Fprintf(stderr, "warning: %s\n", warning)
		}
	case !opts.ConfigSet && errors.Is(err, fs.ErrNotExist):
		// No config file at the default location; built-in defaults apply.
	default:
		return plan, err
	}

	environ, err := config.Environ(opts.EnvFile)
	if err != nil {
		return plan, err
	}
	if plan, err = config.ApplyEnv(plan, environ); err != nil {
		return plan, err
	}

	if opts.Workload != "" {
		plan.Workload = opts.Workload
	}
	if opts.Capacity > 0 {
		plan.CacheSize = opts.Capacity
	}
	if opts.LogFormat != "" {
		format, err := logging.ParseFormat(opts.LogFormat)
		if err != nil {
			return plan, err
		}
		plan.LogFormat = format
	}
	plan.Verbose = plan.Verbose || opts.Verbose

	if plan.Workload == "" {
		return plan, errors.New("no workload configured; set workload in the config file or pass -workload")
	}
	return plan, nil
}

func replay(ctx context.Context, plan config.Plan, logger logging.Logger) (report.Summary, []string, error) {
	var summary report.Summary

	src, err := os.ReadFile(plan.Workload)
	if err != nil {
		return summary, nil, fmt.Errorf("read workload: %w", err)
	}
	steps, err := workload.Parse(plan.Workload, string(src))
	if err != nil {
		return summary, nil, err
	}

	eng, err := engine.New(plan.Driver)
	if err != nil {
		return summary, nil, err
	}
	db, err := engine.Open(ctx, eng, plan.DSN, plan.Pool)
	if err != nil {
		return summary, nil, err
	}
	defer func() { _ = db.Close() }()

	pool := proxy.NewPool(db, proxy.Options{
		CacheSize: plan.CacheSize,
		Engine:    eng,
		Logger:    logger,
	})
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return summary, nil, err
	}

	result, replayErr := workload.Replay(ctx, conn, steps, workload.ReplayOptions{Logger: logger})

	cached := conn.CachedKeys()
	keys := make([]string, 0, len(cached))
	for _, key := range cached {
		keys = append(keys, key.String())
	}
	summary = report.Summary{
		Steps:      result.Steps,
		Executions: result.Executions,
		Rows:       result.Rows,
		Capacity:   conn.CacheCap(),
		Cached:     len(cached),
		Stats:      conn.Stats(),
	}

	if err := errors.Join(replayErr, conn.Close()); err != nil {
		return summary, keys, err
	}
	logger.Debug("workload replayed", "driver", eng.Name(), "steps", summary.Steps, "hit_ratio", summary.HitRatio().String())
	return summary, keys, nil
}
