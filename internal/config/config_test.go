package config

import (
	"testing"
	"time"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http.addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Sender.BaseURL != "https://web.whatsapp.com" {
		t.Fatalf("sender.base_url = %q", cfg.Sender.BaseURL)
	}
	if cfg.Sender.MessageDelay != 5*time.Second {
		t.Fatalf("sender.message_delay = %v", cfg.Sender.MessageDelay)
	}
	if cfg.Redis.Enabled {
		t.Fatal("redis should default to disabled")
	}

	if len(cfg.Strategies) != 3 {
		t.Fatalf("got %d strategies, want 3", len(cfg.Strategies))
	}
	order := []string{"click", "keystroke", "script"}
	for i, s := range cfg.Strategies {
		if s.Name != order[i] {
			t.Fatalf("strategy[%d] = %q, want %q", i, s.Name, order[i])
		}
		if !s.Enabled {
			t.Fatalf("strategy %q should default to enabled", s.Name)
		}
		if s.Breaker.FailThreshold != 3 {
			t.Fatalf("strategy %q breaker threshold = %d", s.Name, s.Breaker.FailThreshold)
		}
	}
}

func TestLoadMissingUserFileFallsBack(t *testing.T) {
	cfg, err := Load("/nonexistent/wasend.yaml")
	if err != nil {
		t.Fatalf("Load with missing file should keep defaults: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http.addr = %q", cfg.HTTP.Addr)
	}
}
