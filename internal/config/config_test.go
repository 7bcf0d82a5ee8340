package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// newFlags returns the global flag set the CLI registers, parsed from args.
func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("yfin", pflag.ContinueOnError)
	flags.String("output", "json", "")
	flags.String("log-level", "warn", "")
	flags.String("config", "", "")
	if err := flags.Parse(args); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}
	return flags
}

// isolate points HOME and the working directory at an empty directory so no
// real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"Output", cfg.Output, "json"},
		{"LogLevel", cfg.LogLevel, "warn"},
		{"Concurrency", cfg.Concurrency, 4},
		{"Query1URL", cfg.Yahoo.Query1URL, "https://query1.finance.yahoo.com"},
		{"Query2URL", cfg.Yahoo.Query2URL, "https://query2.finance.yahoo.com"},
		{"RootURL", cfg.Yahoo.RootURL, "https://finance.yahoo.com"},
		{"CookieURL", cfg.Yahoo.CookieURL, "https://fc.yahoo.com"},
		{"UserAgent", cfg.Yahoo.UserAgent, DefaultUserAgent},
		{"Timeout", cfg.Yahoo.Timeout, 30 * time.Second},
		{"RetryCount", cfg.Yahoo.RetryCount, 3},
		{"RequestsPerSecond", cfg.Yahoo.RequestsPerSecond, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)

	envVars := map[string]string{
		"YFIN_OUTPUT":                    "table",
		"YFIN_CONCURRENCY":               "8",
		"YFIN_YAHOO_QUERY1_URL":          "http://127.0.0.1:9000",
		"YFIN_YAHOO_TIMEOUT":             "5s",
		"YFIN_YAHOO_RETRY_COUNT":         "0",
		"YFIN_YAHOO_REQUESTS_PER_SECOND": "0.5",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load(newFlags(t))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"Output", cfg.Output, "table"},
		{"Concurrency", cfg.Concurrency, 8},
		{"Query1URL", cfg.Yahoo.Query1URL, "http://127.0.0.1:9000"},
		{"Query2URL", cfg.Yahoo.Query2URL, "https://query2.finance.yahoo.com"},
		{"Timeout", cfg.Yahoo.Timeout, 5 * time.Second},
		{"RetryCount", cfg.Yahoo.RetryCount, 0},
		{"RequestsPerSecond", cfg.Yahoo.RequestsPerSecond, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "output: table\nlog_level: info\nconcurrency: 2\nyahoo:\n  retry_count: 1\n")

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(newFlags(t, "--config", path))
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if cfg.Output != "table" || cfg.LogLevel != "info" || cfg.Concurrency != 2 || cfg.Yahoo.RetryCount != 1 {
			t.Errorf("Load() = %+v, want values from %s", cfg, path)
		}
	})

	t.Run("environment over file", func(t *testing.T) {
		t.Setenv("YFIN_LOG_LEVEL", "debug")
		cfg, err := Load(newFlags(t, "--config", path))
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
	})

	t.Run("flag over environment", func(t *testing.T) {
		t.Setenv("YFIN_OUTPUT", "table")
		cfg, err := Load(newFlags(t, "--config", path, "--output", "JSON"))
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if cfg.Output != "json" {
			t.Errorf("Output = %q, want json", cfg.Output)
		}
	})
}

func TestLoad_DefaultConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), "concurrency: 6\n")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Concurrency != 6 {
		t.Errorf("Concurrency = %d, want 6", cfg.Concurrency)
	}
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name        string
		setup       func() []string
		wantErrText string
	}{
		{
			name:        "explicit file missing",
			setup:       func() []string { return []string{"--config", filepath.Join(dir, "missing.yaml")} },
			wantErrText: "failed to read config file",
		},
		{
			name: "default file broken",
			setup: func() []string {
				writeFile(t, filepath.Join(dir, "config.yaml"), "output: [unterminated\n")
				return nil
			},
			wantErrText: "failed to read config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newFlags(t, tt.setup()...))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrText) {
				t.Errorf("Load() error = %q, want it to contain %q", err.Error(), tt.wantErrText)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErrText string
	}{
		{"bad output", map[string]string{"YFIN_OUTPUT": "xml"}, "output:"},
		{"bad log level", map[string]string{"YFIN_LOG_LEVEL": "chatty"}, "log_level:"},
		{"zero concurrency", map[string]string{"YFIN_CONCURRENCY": "0"}, "concurrency:"},
		{"empty url", map[string]string{"YFIN_YAHOO_QUERY2_URL": " "}, "yahoo.query2_url:"},
		{"negative retries", map[string]string{"YFIN_YAHOO_RETRY_COUNT": "-1"}, "yahoo.retry_count:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load(newFlags(t))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErrText) {
				t.Errorf("Load() error = %q, want it to contain %q", err.Error(), tt.wantErrText)
			}
		})
	}
}
