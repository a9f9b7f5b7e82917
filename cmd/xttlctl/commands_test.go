package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xttl/pkg/observability/xlog"
	"github.com/omeyang/xttl/pkg/storage/xttl"
)

func TestUsageError(t *testing.T) {
	inner := errors.New("boom")
	err := &usageError{msg: "load config file", err: inner}
	if err.Error() != "load config file: boom" {
		t.Errorf("usageError.Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("usageError should unwrap to its cause")
	}

	plain := &usageError{msg: "--workers must be at least 1"}
	if plain.Error() != "--workers must be at least 1" {
		t.Errorf("usageError.Error() = %q", plain.Error())
	}
}

func TestIsCLIUsageError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("flag provided but not defined: -nope"), true},
		{errors.New("flag needs an argument: -ttl"), true},
		{errors.New(`invalid value "x" for flag -ttl: parse error`), true},
		{errors.New("scenario assertion failed"), false},
	}
	for _, tt := range tests {
		if got := isCLIUsageError(tt.err); got != tt.want {
			t.Errorf("isCLIUsageError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRunScenarios(t *testing.T) {
	var buf bytes.Buffer
	if err := runScenarios(context.Background(), &buf, xlog.Discard()); err != nil {
		t.Fatalf("runScenarios() error = %v", err)
	}
	for _, name := range []string{"A", "B", "C"} {
		if !strings.Contains(buf.String(), "scenario "+name+": ok") {
			t.Errorf("missing ok line for scenario %s in output:\n%s", name, buf.String())
		}
	}
}

func TestRunScenarios_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := runScenarios(ctx, &buf, xlog.Discard())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("runScenarios() error = %v, want context.Canceled", err)
	}
	if !strings.Contains(buf.String(), "scenario B: FAIL") {
		t.Errorf("scenario B should fail on canceled context, output:\n%s", buf.String())
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"scenarios", []string{"xttlctl", "scenarios"}, 0},
		{"bad log level", []string{"xttlctl", "--log-level", "loud", "scenarios"}, 2},
		{"bad log format", []string{"xttlctl", "--log-format", "xml", "scenarios"}, 2},
		{"unknown flag", []string{"xttlctl", "--nope", "scenarios"}, 2},
		{"bad workers", []string{"xttlctl", "soak", "--workers", "0"}, 2},
		{"bad ttl", []string{"xttlctl", "--ttl", "-1s", "soak", "--duration", "10ms"}, 2},
		{"missing config file", []string{"xttlctl", "-c", "/nonexistent/xttl.yaml", "soak"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(context.Background(), tt.args); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

// loadWithArgs 使用应用的全局参数解析 args 并加载缓存配置。
func loadWithArgs(t *testing.T, args ...string) (xttl.Config, error) {
	t.Helper()
	var (
		cfg     xttl.Config
		loadErr error
	)
	cmd := &cli.Command{
		Name:  "xttlctl",
		Flags: createApp().Flags,
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, loadErr = loadCacheConfig(cmd)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"xttlctl"}, args...)); err != nil {
		t.Fatalf("cmd.Run() error = %v", err)
	}
	return cfg, loadErr
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCacheConfig_Defaults(t *testing.T) {
	cfg, err := loadWithArgs(t)
	if err != nil {
		t.Fatal(err)
	}
	want := xttl.Config{TTL: defaultTTL, SweepInterval: defaultSweepInterval}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestLoadCacheConfig_File(t *testing.T) {
	yamlPath := writeConfig(t, "cache.yaml", "cache:\n  ttl: 30s\n  sweep_interval: 5s\n  capacity: 50\n")
	jsonPath := writeConfig(t, "cache.json", `{"cache": {"ttl": "1m", "capacity": 7}}`)

	tests := []struct {
		name string
		args []string
		want xttl.Config
	}{
		{"yaml", []string{"-c", yamlPath},
			xttl.Config{TTL: 30 * time.Second, SweepInterval: 5 * time.Second, Capacity: 50}},
		{"json keeps default sweep", []string{"-c", jsonPath},
			xttl.Config{TTL: time.Minute, SweepInterval: defaultSweepInterval, Capacity: 7}},
		{"flags override file", []string{"-c", yamlPath, "--ttl", "2s", "--capacity", "3"},
			xttl.Config{TTL: 2 * time.Second, SweepInterval: 5 * time.Second, Capacity: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadWithArgs(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if cfg != tt.want {
				t.Errorf("config = %+v, want %+v", cfg, tt.want)
			}
		})
	}
}

func TestLoadCacheConfig_BadFile(t *testing.T) {
	tomlPath := writeConfig(t, "cache.toml", "ttl = 1")
	brokenPath := writeConfig(t, "cache.yaml", "cache: [unterminated\n")

	for _, path := range []string{tomlPath, brokenPath, "/nonexistent/cache.yaml"} {
		_, err := loadWithArgs(t, "-c", path)
		var usageErr *usageError
		if !errors.As(err, &usageErr) {
			t.Errorf("loadCacheConfig(%s) error = %v, want *usageError", path, err)
		}
	}
}

func TestSoakOptionsValidate(t *testing.T) {
	valid := soakOptions{duration: time.Second, workers: 1, keys: 1, reportInterval: time.Second}
	if err := valid.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	tests := []struct {
		name   string
		modify func(*soakOptions)
	}{
		{"duration", func(o *soakOptions) { o.duration = 0 }},
		{"workers", func(o *soakOptions) { o.workers = 0 }},
		{"keys", func(o *soakOptions) { o.keys = -1 }},
		{"report interval", func(o *soakOptions) { o.reportInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.modify(&opts)
			var usageErr *usageError
			if err := opts.validate(); !errors.As(err, &usageErr) {
				t.Errorf("validate() error = %v, want *usageError", err)
			}
		})
	}
}

func TestRunSoak(t *testing.T) {
	var buf bytes.Buffer
	cfg := xttl.Config{TTL: 20 * time.Millisecond, SweepInterval: 10 * time.Millisecond, Capacity: 64}
	opts := soakOptions{
		duration:       300 * time.Millisecond,
		workers:        4,
		keys:           256,
		reportInterval: 100 * time.Millisecond,
		noSignals:      true,
	}

	if err := runSoak(context.Background(), &buf, cfg, opts, xlog.Discard()); err != nil {
		t.Fatalf("runSoak() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[progress]",
		"[final]",
		"xttl.operation.total{set,ok}=",
		"xttl.operation.total{close,ok}=1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunSoak_InvalidConfig(t *testing.T) {
	opts := soakOptions{duration: time.Second, workers: 1, keys: 1, reportInterval: time.Second, noSignals: true}
	err := runSoak(context.Background(), &bytes.Buffer{}, xttl.Config{TTL: time.Second}, opts, xlog.Discard())

	var usageErr *usageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("runSoak() error = %v, want *usageError", err)
	}
	if !errors.Is(err, xttl.ErrInvalidSweepInterval) {
		t.Errorf("runSoak() error = %v, want ErrInvalidSweepInterval", err)
	}
}
