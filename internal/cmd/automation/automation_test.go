package automation

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("automation", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	if cfg.Port != 8092 {
		t.Fatalf("Port = %d, want 8092", cfg.Port)
	}
	if cfg.DBPath != "data/obligations.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("PollInterval = %v, want 1m", cfg.PollInterval)
	}
}

func TestParseConfigFlagOverrides(t *testing.T) {
	fs := flag.NewFlagSet("automation", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-port", "9000",
		"-db-path", "/tmp/obligations.db",
		"-poll-interval", "30s",
	})
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	if cfg.Port != 9000 || cfg.DBPath != "/tmp/obligations.db" || cfg.PollInterval != 30*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseConfigEnvOverrides(t *testing.T) {
	t.Setenv("DUEBOOK_AUTOMATION_PORT", "9100")
	t.Setenv("DUEBOOK_AUTOMATION_POLL_INTERVAL", "5s")

	fs := flag.NewFlagSet("automation", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig returned error: %v", err)
	}
	if cfg.Port != 9100 || cfg.PollInterval != 5*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
