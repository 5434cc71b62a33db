package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_URI", "redis://cache:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisURI != "cache:6379" {
		t.Errorf("RedisURI = %q, want redis:// prefix stripped", cfg.RedisURI)
	}
	if cfg.WS.PongWait != 60*time.Second {
		t.Errorf("WS.PongWait = %v, want 60s", cfg.WS.PongWait)
	}
	if cfg.ReportBucket != "reports" {
		t.Errorf("ReportBucket = %q, want reports", cfg.ReportBucket)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate defaults: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WS_SEND_BUFFER", "8")
	t.Setenv("AGENT_KEY", "agent-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Addr())
	}
	if cfg.WS.SendBuffer != 8 {
		t.Errorf("WS.SendBuffer = %d, want 8", cfg.WS.SendBuffer)
	}
	if cfg.AgentKey != "agent-secret" {
		t.Errorf("AgentKey = %q", cfg.AgentKey)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppEnv:        "development",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "intervue",
			RedisURI:      "localhost:6379",
			JWTSecret:     defaultJWTSecret,
			WS:            WSConfig{SendBuffer: 16, PongWait: time.Second, WriteWait: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing mongo", mutate: func(c *Config) { c.MongoURI = "" }, wantErr: true},
		{name: "missing redis", mutate: func(c *Config) { c.RedisURI = "" }, wantErr: true},
		{name: "default secret in production", mutate: func(c *Config) { c.AppEnv = "production" }, wantErr: true},
		{name: "custom secret in production", mutate: func(c *Config) {
			c.AppEnv = "production"
			c.JWTSecret = "rotated"
		}},
		{name: "zero send buffer", mutate: func(c *Config) { c.WS.SendBuffer = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
