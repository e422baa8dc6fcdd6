package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/electwix/stmtpool/internal/logging"
)

// EnvPrefix starts every environment variable read by ApplyEnv.
const EnvPrefix = "STMTPOOL_"

// EnvOverrides lists the environment variables that override a loaded
// plan. Zero values leave the plan untouched.
type EnvOverrides struct {
	Driver          string        `env:"DRIVER"`
	DSN             string        `env:"DSN"`
	Workload        string        `env:"WORKLOAD"`
	CacheCapacity   int           `env:"CACHE_CAPACITY"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME"`
	LogFormat       string        `env:"LOG_FORMAT"`
	Verbose         bool          `env:"VERBOSE"`
}

// Environ returns the process environment merged with the optional dotenv
// file. Variables already set in the process win over the file. A missing
// file is not an error.
func Environ(dotenv string) (map[string]string, error) {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	if dotenv == "" {
		return environ, nil
	}

	values, err := godotenv.Read(dotenv)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return environ, nil
		}
		return nil, fmt.Errorf("%s: %w", dotenv, err)
	}
	for k, v := range values {
		if _, ok := environ[k]; !ok {
			environ[k] = v
		}
	}
	return environ, nil
}

// ApplyEnv overlays STMTPOOL_* variables from environ onto plan.
func ApplyEnv(plan Plan, environ map[string]string) (Plan, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	var o EnvOverrides
	if err := env.ParseWithOptions(&o, env.Options{Environment: environ, Prefix: EnvPrefix}); err != nil {
		return plan, fmt.Errorf("environment: %w", err)
	}

	const source = "environment"
	if o.Driver != "" {
		driver, err := resolveDriver(source, o.Driver)
		if err != nil {
			return plan, err
		}
		plan.Driver = driver
	}
	if o.DSN != "" {
		plan.DSN = o.DSN
	}
	if o.Workload != "" {
		plan.Workload = o.Workload
	}
	if o.CacheCapacity != 0 {
		size, err := resolveCacheSize(source, &o.CacheCapacity)
		if err != nil {
			return plan, err
		}
		plan.CacheSize = size
	}
	if o.MaxOpenConns < 0 {
		return plan, fmt.Errorf("%s: %sMAX_OPEN_CONNS must not be negative", source, EnvPrefix)
	}
	if o.MaxOpenConns > 0 {
		plan.Pool.MaxOpenConns = o.MaxOpenConns
	}
	if o.ConnMaxLifetime < 0 {
		return plan, fmt.Errorf("%s: %sCONN_MAX_LIFETIME must not be negative", source, EnvPrefix)
	}
	if o.ConnMaxLifetime > 0 {
		plan.Pool.ConnMaxLifetime = o.ConnMaxLifetime
	}
	if o.LogFormat != "" {
		format, err := logging.ParseFormat(o.LogFormat)
		if err != nil {
			return plan, fmt.Errorf("%s: %w", source, err)
		}
		plan.LogFormat = format
	}
	plan.Verbose = plan.Verbose || o.Verbose
	return plan, nil
}
