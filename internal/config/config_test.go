package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "marketbat.yaml")
	if err := os.WriteFile(cfgPath, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Listen != ":8080" {
		t.Fatalf("expected default listen :8080, got %q", cfg.Listen)
	}
	if cfg.DataDir != "./data" {
		t.Fatalf("expected default data_dir ./data, got %q", cfg.DataDir)
	}
	if got, want := cfg.Monitoring.Dir, filepath.Join("./data", "monitoring"); got != want {
		t.Fatalf("expected monitoring dir %q, got %q", want, got)
	}
	if cfg.Monitoring.MaxEvents != 50 {
		t.Fatalf("expected default max_events 50, got %d", cfg.Monitoring.MaxEvents)
	}
	if got, want := len(cfg.Watchlist), 5; got != want {
		t.Fatalf("expected default watchlist of %d symbols, got %d", want, got)
	}
	if cfg.Watchlist[0].Ticker != "AAPL" || cfg.Watchlist[0].Name != "Apple" {
		t.Fatalf("unexpected first watchlist entry: %+v", cfg.Watchlist[0])
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BackoffFactor != 2.0 {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Schedule.Morning != "0 8 * * *" || cfg.Schedule.Evening != "0 20 * * *" {
		t.Fatalf("unexpected schedule defaults: %+v", cfg.Schedule)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig on missing file: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("expected defaults for missing file, got listen %q", cfg.Listen)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "marketbat.yaml")
	body := `
listen: ":9999"
log_level: debug
watchlist:
  - ticker: AMD
    name: AMD
schedule:
  morning: "15 7 * * 1-5"
retry:
  max_attempts: 5
  backoff_factor: 1.5
monitoring:
  max_events: 10
`
	if err := os.WriteFile(cfgPath, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Listen != ":9999" {
		t.Fatalf("expected listen :9999, got %q", cfg.Listen)
	}
	if len(cfg.Watchlist) != 1 || cfg.Watchlist[0].Ticker != "AMD" {
		t.Fatalf("unexpected watchlist: %+v", cfg.Watchlist)
	}
	if cfg.Schedule.Morning != "15 7 * * 1-5" {
		t.Fatalf("unexpected morning schedule: %q", cfg.Schedule.Morning)
	}
	if cfg.Schedule.Evening != "0 20 * * *" {
		t.Fatalf("expected evening default to fill in, got %q", cfg.Schedule.Evening)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.BackoffFactor != 1.5 {
		t.Fatalf("unexpected retry config: %+v", cfg.Retry)
	}
	if cfg.Monitoring.MaxEvents != 10 {
		t.Fatalf("expected max_events 10, got %d", cfg.Monitoring.MaxEvents)
	}
}

func TestParseTimeout(t *testing.T) {
	t.Parallel()

	if got := ParseTimeout("", 10*time.Second); got != 10*time.Second {
		t.Fatalf("expected fallback for empty value, got %v", got)
	}
	if got := ParseTimeout("bogus", 10*time.Second); got != 10*time.Second {
		t.Fatalf("expected fallback for invalid value, got %v", got)
	}
	if got := ParseTimeout("3s", 10*time.Second); got != 3*time.Second {
		t.Fatalf("expected 3s, got %v", got)
	}
}
