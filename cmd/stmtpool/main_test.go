package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunReplaysWorkload(t *testing.T) {
	configPath := prepareCmdFixtures(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"--config", configPath}, stdout, stderr)
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", exitCode, stderr.String())
	}
	if stderr.Len() != 0 {
		t.Fatalf("unexpected stderr output: %q", stderr.String())
	}

	out := stdout.String()
	// insert: miss, hit, hit; select: miss, hit; count: miss evicts
	// insert; insert again: miss evicts select.
	for _, want := range []string{
		"steps:        5",
		"executions:   8",
		"capacity:     2",
		"cached:       2",
		"hits:         3",
		"misses:       4",
		"evictions:    2",
		"hit ratio:    0.4286",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout %q missing %q", out, want)
		}
	}
}

func TestRunListKeys(t *testing.T) {
	configPath := prepareCmdFixtures(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"-c", configPath, "-list", "-capacity", "8"}, stdout, stderr)
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", exitCode, stderr.String())
	}

	out := stdout.String()
	if !strings.Contains(out, "capacity:     8") {
		t.Fatalf("stdout %q missing capacity override", out)
	}
	idx := strings.Index(out, "cached keys (least to most recently used):")
	if idx < 0 {
		t.Fatalf("stdout %q missing key listing", out)
	}
	listing := out[idx:]
	selectAt := strings.Index(listing, `"SELECT id FROM users WHERE name = ?"`)
	insertAt := strings.Index(listing, `"INSERT INTO users (name) VALUES (?)"`)
	if selectAt < 0 || insertAt < 0 || selectAt > insertAt {
		t.Fatalf("unexpected key order in %q", listing)
	}
}

func TestRunWithoutConfigFile(t *testing.T) {
	dir := prepareFixtureDir(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	// The default config path does not exist in the package directory.
	exitCode := run(context.Background(), []string{"-workload", filepath.Join(dir, "workload.stmt")}, stdout, stderr)
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", exitCode, stderr.String())
	}
	if !strings.Contains(stdout.String(), "capacity:     32") {
		t.Fatalf("stdout %q missing default capacity", stdout.String())
	}
}

func TestRunErrors(t *testing.T) {
	dir := prepareFixtureDir(t)
	writeFile(t, filepath.Join(dir, "broken.stmt"), "prepare \"SELECT 1\"\nprepare times 2\n")
	writeFile(t, filepath.Join(dir, "strict.toml"), "workload = \"workload.stmt\"\nretries = 3\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing config",
			args:    []string{"-config", filepath.Join(dir, "missing.toml")},
			wantErr: "missing.toml",
		},
		{
			name:    "strict config",
			args:    []string{"-config", filepath.Join(dir, "strict.toml"), "-strict-config"},
			wantErr: "unknown configuration keys: retries",
		},
		{
			name:    "workload syntax",
			args:    []string{"-config", filepath.Join(dir, "config.toml"), "-workload", filepath.Join(dir, "broken.stmt")},
			wantErr: "broken.stmt:2:9:",
		},
		{
			name:    "bad flag",
			args:    []string{"-bogus"},
			wantErr: "Usage of stmtpool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			exitCode := run(context.Background(), tt.args, stdout, stderr)
			if exitCode != 1 {
				t.Fatalf("exit code = %d, want 1", exitCode)
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Fatalf("stderr %q missing %q", stderr.String(), tt.wantErr)
			}
		})
	}
}

func TestRunWarnsOnUnknownKeys(t *testing.T) {
	dir := prepareFixtureDir(t)
	configPath := filepath.Join(dir, "lenient.toml")
	writeFile(t, configPath, "workload = \"workload.stmt\"\nretries = 3\n")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"-config", configPath}, stdout, stderr)
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", exitCode, stderr.String())
	}
	if !strings.Contains(stderr.String(), "warning: ") || !strings.Contains(stderr.String(), "retries") {
		t.Fatalf("stderr %q missing unknown-key warning", stderr.String())
	}
}

func TestRunRequiresWorkload(t *testing.T) {
	dir := prepareFixtureDir(t)
	configPath := filepath.Join(dir, "bare.toml")
	writeFile(t, configPath, "driver = \"sqlite\"\n")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"-config", configPath}, stdout, stderr)
	if exitCode != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode)
	}
	if !strings.Contains(stderr.String(), "no workload configured") {
		t.Fatalf("stderr %q missing workload error", stderr.String())
	}
}

func TestRunEnvironmentOverrides(t *testing.T) {
	dir := prepareFixtureDir(t)
	dotenv := filepath.Join(dir, "bench.env")
	writeFile(t, dotenv, "STMTPOOL_CACHE_CAPACITY=5\nSTMTPOOL_WORKLOAD="+filepath.Join(dir, "workload.stmt")+"\n")
	t.Setenv("STMTPOOL_CACHE_CAPACITY", "3")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	exitCode := run(context.Background(), []string{"-env-file", dotenv}, stdout, stderr)
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", exitCode, stderr.String())
	}
	// The process environment wins over the dotenv file.
	if !strings.Contains(stdout.String(), "capacity:     3") {
		t.Fatalf("stdout %q missing environment capacity", stdout.String())
	}
}

func TestRunHelp(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"-h"}, stdout, stderr)
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0", exitCode)
	}
	if !strings.Contains(stdout.String(), "-workload") {
		t.Fatalf("stdout %q missing usage", stdout.String())
	}
}

func prepareCmdFixtures(t *testing.T) string {
	t.Helper()
	return filepath.Join(prepareFixtureDir(t), "config.toml")
}

func prepareFixtureDir(t *testing.T) string {
	t.Helper()
	dst := t.TempDir()
	entries, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatalf("ReadDir testdata: %v", err)
	}
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join("testdata", entry.Name()))
		if err != nil {
			t.Fatalf("ReadFile %q: %v", entry.Name(), err)
		}
		writeFile(t, filepath.Join(dst, entry.Name()), string(data))
	}
	return dst
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile %q: %v", path, err)
	}
}
