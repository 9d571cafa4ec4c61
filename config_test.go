package credgate

import (
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func TestDefaultConfigNeedsOnlySecret(t *testing.T) {
	cfg := validTestConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with secret should validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.Token.Secret = nil }},
		{"zero ttl", func(c *Config) { c.Token.TTL = 0 }},
		{"negative leeway", func(c *Config) { c.Token.Leeway = -time.Second }},
		{"low memory", func(c *Config) { c.Password.Memory = 1024 }},
		{"zero time", func(c *Config) { c.Password.Time = 0 }},
		{"zero parallelism", func(c *Config) { c.Password.Parallelism = 0 }},
		{"short salt", func(c *Config) { c.Password.SaltLength = 8 }},
		{"short key", func(c *Config) { c.Password.KeyLength = 8 }},
		{"zero min length", func(c *Config) { c.Password.MinLength = 0 }},
		{"max below min", func(c *Config) { c.Password.MaxLength = 4 }},
		{"zero history depth", func(c *Config) { c.Password.HistoryDepth = 0 }},
		{"empty prefix", func(c *Config) { c.Store.RedisPrefix = "" }},
		{"reset without ttl", func(c *Config) { c.Reset.Enabled = true; c.Reset.TTL = 0 }},
		{"audit without buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateProductionMode(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.Token.Secret = []byte("0123456789abcdef") }},
		{"long ttl", func(c *Config) { c.Token.TTL = 48 * time.Hour }},
		{"weak memory", func(c *Config) { c.Password.Memory = 32 * 1024 }},
		{"weak time", func(c *Config) { c.Password.Time = 1 }},
		{"short key", func(c *Config) { c.Password.KeyLength = 16 }},
		{"long reset ttl", func(c *Config) { c.Reset.TTL = 2 * time.Hour }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			cfg.Security.ProductionMode = true
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected production-mode rejection")
			}
		})
	}

	cfg := validTestConfig()
	cfg.Security.ProductionMode = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("hardened defaults should validate: %v", err)
	}
}

func TestCloneConfigDetachesSecret(t *testing.T) {
	cfg := validTestConfig()
	clone := cloneConfig(cfg)

	cfg.Token.Secret[0] = 'X'
	if clone.Token.Secret[0] == 'X' {
		t.Error("clone shares the secret buffer with the original")
	}
}
