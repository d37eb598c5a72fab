package database

import (
	"strings"
	"testing"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %d, want 25", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns != 5 {
		t.Errorf("MaxIdleConns = %d, want 5", cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "1h" {
		t.Errorf("ConnMaxLifetime = %q, want %q", cfg.ConnMaxLifetime, "1h")
	}
	if cfg.ConnMaxIdleTime != "5m" {
		t.Errorf("ConnMaxIdleTime = %q, want %q", cfg.ConnMaxIdleTime, "5m")
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.SlowQueryThreshold != "200ms" {
		t.Errorf("SlowQueryThreshold = %q, want %q", cfg.SlowQueryThreshold, "200ms")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
}

func TestConfig_ApplyDefaults_KeepsValues(t *testing.T) {
	cfg := Config{MaxOpenConns: 3, MaxIdleConns: 2, LogLevel: "silent"}
	cfg.ApplyDefaults()

	if cfg.MaxOpenConns != 3 || cfg.MaxIdleConns != 2 || cfg.LogLevel != "silent" {
		t.Errorf("ApplyDefaults overwrote explicit values: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := Config{Enabled: true, DSN: ":memory:"}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"disabled skips checks", func(c *Config) { c.Enabled = false; c.DSN = "" }, ""},
		{"missing dsn", func(c *Config) { c.DSN = "" }, "dsn is required"},
		{"idle above open", func(c *Config) { c.MaxIdleConns = 30 }, "max_idle_conns (30)"},
		{"bad lifetime", func(c *Config) { c.ConnMaxLifetime = "forever" }, "invalid conn_max_lifetime"},
		{"bad idle time", func(c *Config) { c.ConnMaxIdleTime = "soon" }, "invalid conn_max_idle_time"},
		{"bad slow threshold", func(c *Config) { c.SlowQueryThreshold = "x" }, "invalid slow_query_threshold"},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }, "max_retries must be > 0"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "log_level must be one of"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() error = %q, want containing %q", err.Error(), tc.wantErr)
			}
		})
	}
}
