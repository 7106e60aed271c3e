package config

import (
	"testing"
	"time"
)

func TestLoadJudgeDefaults(t *testing.T) {
	cfg, err := LoadJudge()
	if err != nil {
		t.Fatalf("LoadJudge() error = %v", err)
	}
	if cfg.URL != "" {
		t.Fatalf("URL = %q, want empty", cfg.URL)
	}
	if cfg.Timeout != 30*time.Second || cfg.RetryMax != 2 {
		t.Fatalf("unexpected judge config: %+v", cfg)
	}
}

func TestLoadJudgeOverrides(t *testing.T) {
	t.Setenv("JUDGE_URL", "http://judge.local/v1/complete")
	t.Setenv("JUDGE_RETRY_BASE", "250ms")

	cfg, err := LoadJudge()
	if err != nil {
		t.Fatalf("LoadJudge() error = %v", err)
	}
	if cfg.URL != "http://judge.local/v1/complete" {
		t.Fatalf("URL = %q", cfg.URL)
	}
	if cfg.RetryBase != 250*time.Millisecond {
		t.Fatalf("RetryBase = %v, want 250ms", cfg.RetryBase)
	}
}
