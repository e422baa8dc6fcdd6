// Package config loads and validates the stmtpool configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/electwix/stmtpool/internal/engine"
	_ "github.com/electwix/stmtpool/internal/engine/builtin"
	"github.com/electwix/stmtpool/internal/logging"
)

// DefaultDriver is used when the configuration does not name one.
const DefaultDriver = "sqlite"

// StatementCacheConfig captures per-connection statement cache settings.
type StatementCacheConfig struct {
	Capacity *int `toml:"capacity" yaml:"capacity"`
}

// PoolConfig captures database/sql pool overrides. Durations use
// time.ParseDuration syntax.
type PoolConfig struct {
	MaxOpenConns    int    `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime string `toml:"conn_max_idle_time" yaml:"conn_max_idle_time"`
}

// LogConfig captures logging settings.
type LogConfig struct {
	Verbose bool   `toml:"verbose" yaml:"verbose"`
	Format  string `toml:"format" yaml:"format"`
}

// Config mirrors the configuration file schema.
type Config struct {
	Driver         string               `toml:"driver" yaml:"driver"`
	DSN            string               `toml:"dsn" yaml:"dsn"`
	Workload       string               `toml:"workload" yaml:"workload"`
	StatementCache StatementCacheConfig `toml:"statement_cache" yaml:"statement_cache"`
	Pool           PoolConfig           `toml:"pool" yaml:"pool"`
	Log            LogConfig            `toml:"log" yaml:"log"`
}

// Plan is the fully-resolved configuration used by the runner.
type Plan struct {
	Driver string
	DSN    string
	// Workload is the workload file path, resolved against the config
	// directory. Empty when not configured.
	Workload string
	// CacheSize is zero when the configuration leaves the default in place.
	CacheSize int
	Pool      engine.ConnectionPoolConfig
	Verbose   bool
	LogFormat logging.Format
}

// LoadOptions tunes config loading behavior.
type LoadOptions struct {
	// Strict turns unknown-key warnings into errors.
	Strict bool
}

// Result wraps a loaded plan alongside any non-fatal warnings.
type Result struct {
	Plan     Plan
	Warnings []string
}

// knownKeys lists accepted keys; nested maps describe tables.
var knownKeys = map[string][]string{
	"driver":          nil,
	"dsn":             nil,
	"workload":        nil,
	"statement_cache": {"capacity"},
	"pool":            {"max_open_conns", "max_idle_conns", "conn_max_lifetime", "conn_max_idle_time"},
	"log":             {"verbose", "format"},
}

// Default returns the plan used when no configuration file exists.
func Default() Plan {
	return Plan{Driver: DefaultDriver, DSN: ":memory:", LogFormat: logging.FormatText}
}

type decoder func(data []byte, v any) error

// Load reads, validates, and resolves a configuration file. The format is
// chosen by extension: .yaml/.yml for YAML, anything else is TOML.
func Load(path string, opts LoadOptions) (Result, error) {
	var res Result

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}

	decode := decoder(toml.Unmarshal)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decode = yaml.Unmarshal
	}

	var cfg Config
	if err := decode(data, &cfg); err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	unknownKeys, err := collectUnknownKeys(data, decode)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	if len(unknownKeys) > 0 {
		slices.Sort(unknownKeys)
		message := fmt.Sprintf("%s: unknown configuration keys: %s", path, strings.Join(unknownKeys, ", "))
		if opts.Strict {
			return res, errors.New(message)
		}
		res.Warnings = append(res.Warnings, message)
	}

	driver, err := resolveDriver(path, cfg.Driver)
	if err != nil {
		return res, err
	}

	dsn, err := resolveDSN(path, driver, cfg.DSN)
	if err != nil {
		return res, err
	}

	cacheSize, err := resolveCacheSize(path, cfg.StatementCache.Capacity)
	if err != nil {
		return res, err
	}

	pool, err := resolvePool(path, cfg.Pool)
	if err != nil {
		return res, err
	}

	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	res.Plan = Plan{
		Driver:    driver,
		DSN:       dsn,
		Workload:  resolveWorkload(path, cfg.Workload),
		CacheSize: cacheSize,
		Pool:      pool,
		Verbose:   cfg.Log.Verbose,
		LogFormat: format,
	}

	return res, nil
}

func collectUnknownKeys(data []byte, decode decoder) ([]string, error) {
	var raw map[string]any
	if err := decode(data, &raw); err != nil {
		return nil, err
	}

	unknown := make([]string, 0)
	for key, value := range raw {
		nested, ok := knownKeys[key]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		table, ok := value.(map[string]any)
		if !ok || nested == nil {
			continue
		}
		for sub := range table {
			if !slices.Contains(nested, sub) {
				unknown = append(unknown, key+"."+sub)
			}
		}
	}

	return unknown, nil
}

func resolveDriver(path, driver string) (string, error) {
	if driver == "" {
		return DefaultDriver, nil
	}
	if !engine.IsDialectSupported(driver) {
		return "", fmt.Errorf("%s: %w", path, &engine.UnknownDialectError{Dialect: driver, Known: engine.ListRegistered()})
	}
	return driver, nil
}

func resolveDSN(path, driver, dsn string) (string, error) {
	if dsn != "" {
		return dsn, nil
	}
	if driver == "sqlite" {
		return ":memory:", nil
	}
	return "", fmt.Errorf("%s: dsn is required for driver %q", path, driver)
}

func resolveCacheSize(path string, capacity *int) (int, error) {
	if capacity == nil {
		return 0, nil
	}
	if *capacity < 1 {
		return 0, fmt.Errorf("%s: statement_cache.capacity must be at least 1, got %d", path, *capacity)
	}
	return *capacity, nil
}

func resolvePool(path string, cfg PoolConfig) (engine.ConnectionPoolConfig, error) {
	var pool engine.ConnectionPoolConfig

	if cfg.MaxOpenConns < 0 {
		return pool, fmt.Errorf("%s: pool.max_open_conns must not be negative", path)
	}
	if cfg.MaxIdleConns < 0 {
		return pool, fmt.Errorf("%s: pool.max_idle_conns must not be negative", path)
	}
	pool.MaxOpenConns = cfg.MaxOpenConns
	pool.MaxIdleConns = cfg.MaxIdleConns

	var err error
	if pool.ConnMaxLifetime, err = parseDuration(path, "pool.conn_max_lifetime", cfg.ConnMaxLifetime); err != nil {
		return pool, err
	}
	if pool.ConnMaxIdleTime, err = parseDuration(path, "pool.conn_max_idle_time", cfg.ConnMaxIdleTime); err != nil {
		return pool, err
	}
	return pool, nil
}

func parseDuration(path, field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", path, field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: %s must not be negative", path, field)
	}
	return d, nil
}

func resolveWorkload(path, workload string) string {
	if workload == "" || filepath.IsAbs(workload) {
		return workload
	}
	return filepath.Join(filepath.Dir(path), filepath.Clean(workload))
}
