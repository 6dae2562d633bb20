package engine

import (
	"testing"
	"time"
)

func TestParseEnv_Defaults(t *testing.T) {
	cfg, err := ParseEnv()
	if err != nil {
		t.Fatalf("ParseEnv failed: %v", err)
	}
	want := NewConfig()
	if cfg.TickRate != want.TickRate || cfg.CleanupInterval != want.CleanupInterval || cfg.DefaultRoom != want.DefaultRoom {
		t.Errorf("defaults = %+v, want %+v", cfg, want)
	}
	if cfg.MaxMessageSize != want.MaxMessageSize {
		t.Errorf("MaxMessageSize = %d, want %d", cfg.MaxMessageSize, want.MaxMessageSize)
	}
	if len(cfg.Environment) != 1 || cfg.Environment[0] != "world" {
		t.Errorf("Environment = %v", cfg.Environment)
	}
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("ROOMSYNC_TICK_RATE", "20")
	t.Setenv("ROOMSYNC_CLEANUP_INTERVAL", "1500ms")
	t.Setenv("ROOMSYNC_ENVIRONMENT", "arena,crate")

	cfg, err := ParseEnv()
	if err != nil {
		t.Fatalf("ParseEnv failed: %v", err)
	}
	if cfg.TickRate != 20 || cfg.TickPeriod() != 50*time.Millisecond {
		t.Errorf("tick = %d (%v)", cfg.TickRate, cfg.TickPeriod())
	}
	if cfg.CleanupInterval != 1500*time.Millisecond {
		t.Errorf("CleanupInterval = %v", cfg.CleanupInterval)
	}
	if len(cfg.Environment) != 2 || cfg.Environment[1] != "crate" {
		t.Errorf("Environment = %v", cfg.Environment)
	}
}

func TestParseEnv_BadValue(t *testing.T) {
	t.Setenv("ROOMSYNC_TICK_RATE", "fast")
	if _, err := ParseEnv(); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero tick", func(c *Config) { c.TickRate = 0 }, true},
		{"negative cleanup", func(c *Config) { c.CleanupInterval = -time.Second }, true},
		{"no default room", func(c *Config) { c.DefaultRoom = "" }, true},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"zero burst", func(c *Config) { c.RequestBurst = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
