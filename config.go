package credgate

import (
	"errors"
	"time"
)

// Config carries every engine setting. Build it from [DefaultConfig], adjust
// what you need, and hand it to the builder; the engine keeps a validated
// private clone, so later mutation of the caller's copy has no effect.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Store    StoreConfig
	Reset    ResetConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Security SecurityConfig
}

// TokenConfig controls session-token signing and verification.
type TokenConfig struct {
	// Secret is the HS256 signing key shared by issue and verify.
	Secret []byte
	// TTL is the fixed token lifetime. Tokens carry no refresh mechanism;
	// expiry is the only thing that ends a session.
	TTL time.Duration
	// Leeway is the clock-skew tolerance applied when verifying exp/iat.
	Leeway time.Duration
}

// PasswordConfig holds the Argon2id work factors plus the plaintext policy
// bounds and the reuse-history depth.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// MinLength and MaxLength bound accepted plaintext passwords in bytes.
	MinLength int
	MaxLength int

	// HistoryDepth is the number of hashes kept per credential, current
	// included. A change matching any of them is rejected.
	HistoryDepth int
}

// StoreConfig controls the Redis credential store.
type StoreConfig struct {
	RedisPrefix string
}

// ResetConfig controls the password-reset flow.
type ResetConfig struct {
	Enabled bool
	// TTL bounds how long an issued reset token stays redeemable.
	TTL time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the calling operation
	// when the buffer is full. Drops are counted.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// SecurityConfig holds cross-cutting hardening switches.
type SecurityConfig struct {
	// ProductionMode tightens validation: longer signing keys, stronger
	// hash parameters, capped token lifetime. It also switches the cookie
	// helper to Secure + SameSite=None.
	ProductionMode bool
}

// DefaultConfig returns the settings a development deployment starts from.
// Production deployments must set Token.Secret and should enable
// Security.ProductionMode.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:    24 * time.Hour,
			Leeway: 30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:       65536,
			Time:         3,
			Parallelism:  2,
			SaltLength:   16,
			KeyLength:    32,
			MinLength:    8,
			MaxLength:    1024,
			HistoryDepth: 3,
		},
		Store: StoreConfig{
			RedisPrefix: "cg",
		},
		Reset: ResetConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Security: SecurityConfig{
			ProductionMode: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks the configuration for internal consistency. The builder
// calls it; it is exported so callers can pre-flight a config they assemble
// from their own sources.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.Secret) == 0 {
		return errors.New("Token Secret is required")
	}
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be > 0")
	}
	if c.Token.Leeway < 0 {
		return errors.New("Token Leeway must be >= 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be >= 1")
	}
	if c.Password.MaxLength < c.Password.MinLength {
		return errors.New("Password MaxLength must be >= MinLength")
	}
	if c.Password.HistoryDepth < 1 {
		return errors.New("Password HistoryDepth must be >= 1")
	}

	// Store
	if c.Store.RedisPrefix == "" {
		return errors.New("Store RedisPrefix is required")
	}

	// Reset
	if c.Reset.Enabled && c.Reset.TTL <= 0 {
		return errors.New("Reset TTL must be > 0 when reset is enabled")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Security.ProductionMode {
		if len(c.Token.Secret) < 32 {
			return errors.New("ProductionMode requires Token Secret length >= 256 bits")
		}
		if c.Token.TTL > 24*time.Hour {
			return errors.New("ProductionMode requires Token TTL <= 24h")
		}
		if c.Password.Memory < 64*1024 {
			return errors.New("ProductionMode requires Password Memory >= 65536 KB")
		}
		if c.Password.Time < 2 {
			return errors.New("ProductionMode requires Password Time >= 2")
		}
		if c.Password.KeyLength < 32 {
			return errors.New("ProductionMode requires Password KeyLength >= 32")
		}
		if c.Reset.Enabled && c.Reset.TTL > time.Hour {
			return errors.New("ProductionMode requires Reset TTL <= 1h")
		}
	}

	return nil
}
