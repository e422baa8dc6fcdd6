// Package cli parses stmtpool command-line flags.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// DefaultConfigPath is read when -config is not given. A missing default
// file is not an error; the built-in defaults apply instead.
const DefaultConfigPath = "stmtpool.toml"

type Options struct {
	ConfigPath string
	// ConfigSet reports whether -config was passed explicitly.
	ConfigSet    bool
	Workload     string
	EnvFile      string
	Capacity     int
	LogFormat    string
	ListKeys     bool
	StrictConfig bool
	Verbose      bool
	Args         []string
}

func Parse(args []string) (Options, error) {
	opts := Options{
		ConfigPath: DefaultConfigPath,
	}

	fs := flag.NewFlagSet("stmtpool", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to configuration file (TOML, or YAML by .yaml/.yml extension)")
	fs.StringVar(&opts.ConfigPath, "c", opts.ConfigPath, "Path to configuration file")
	fs.StringVar(&opts.Workload, "workload", "", "Override the workload file; relative paths are resolved against the working directory")
	fs.StringVar(&opts.EnvFile, "env-file", ".env", "Optional dotenv file with STMTPOOL_* overrides; missing files are ignored")
	fs.IntVar(&opts.Capacity, "capacity", 0, "Override the per-connection statement cache capacity")
	fs.StringVar(&opts.LogFormat, "log-format", "", "Override the log format (text or json)")
	fs.BoolVar(&opts.ListKeys, "list", false, "Print the cached statement keys after the run")
	fs.BoolVar(&opts.StrictConfig, "strict-config", false, "Treat configuration warnings as errors")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable verbose logging")

	if err := fs.Parse(args); err != nil {
		return Options{}, fmt.Errorf("%w\n\n%s", err, Usage(fs))
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" || f.Name == "c" {
			opts.ConfigSet = true
		}
	})

	if opts.Capacity < 0 {
		return Options{}, fmt.Errorf("-capacity must be at least 1, got %d\n\n%s", opts.Capacity, Usage(fs))
	}

	opts.Args = fs.Args()
	return opts, nil
}

// ErrHelp reports whether err came from -h or -help.
func ErrHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func Usage(fs *flag.FlagSet) string {
	if fs == nil {
		return ""
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s:\n", fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}
