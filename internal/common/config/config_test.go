package config

import (
	"errors"
	"testing"
	"time"

	commonerrors "github.com/AlibekovAA/chat-accounts/internal/common/errors"
)

const testSecret = "test-secret-key-must-be-at-least-32-bytes-long"

func TestLoadAccountConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadAccountConfig()
	if !errors.Is(err, commonerrors.ErrMissingRequiredEnv) {
		t.Fatalf("expected missing env error, got %v", err)
	}
}

func TestLoadAccountConfig_ShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := LoadAccountConfig()
	if !errors.Is(err, commonerrors.ErrInvalidJWTSecret) {
		t.Fatalf("expected invalid secret error, got %v", err)
	}
}

func TestLoadAccountConfig_PostgresRequiresDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACCOUNT_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := LoadAccountConfig()
	if !errors.Is(err, commonerrors.ErrMissingRequiredEnv) {
		t.Fatalf("expected missing DATABASE_URL error, got %v", err)
	}
}

func TestLoadAccountConfig_UnknownStore(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACCOUNT_STORE", "redis")

	_, err := LoadAccountConfig()
	if !errors.Is(err, commonerrors.ErrInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestLoadAccountConfig_MemoryDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACCOUNT_STORE", "memory")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("LOGIN_MAX_FAILURES", "")

	cfg, err := LoadAccountConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AccessTokenTTL != time.Hour {
		t.Errorf("expected default TTL of 1h, got %v", cfg.AccessTokenTTL)
	}
	if cfg.Lockout.MaxFailures != 5 {
		t.Errorf("expected default max failures 5, got %d", cfg.Lockout.MaxFailures)
	}
	if cfg.HTTPPort != "8081" {
		t.Errorf("expected default port 8081, got %s", cfg.HTTPPort)
	}
}

func TestLoadAccountConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACCOUNT_STORE", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/accounts.db")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("ARGON2_THREADS", "2")

	cfg, err := LoadAccountConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Store != StoreSQLite {
		t.Errorf("expected store to be normalized to sqlite, got %s", cfg.Store)
	}
	if cfg.SQLitePath != "/tmp/accounts.db" {
		t.Errorf("unexpected sqlite path %s", cfg.SQLitePath)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected 15m TTL, got %v", cfg.AccessTokenTTL)
	}
	if cfg.Argon2.Threads != 2 {
		t.Errorf("expected 2 argon2 threads, got %d", cfg.Argon2.Threads)
	}
}

func TestLoadAccountConfig_RejectsZeroTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACCOUNT_STORE", "memory")
	t.Setenv("ACCESS_TOKEN_TTL", "0s")

	_, err := LoadAccountConfig()
	if !errors.Is(err, commonerrors.ErrInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestLoadAccountConfig_RejectsOutOfRangeArgon2(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative time", "ARGON2_TIME", "-1"},
		{"zero time", "ARGON2_TIME", "0"},
		{"time above uint32", "ARGON2_TIME", "4294967296"},
		{"negative memory", "ARGON2_MEMORY_KIB", "-1"},
		{"memory above uint32", "ARGON2_MEMORY_KIB", "4294967296"},
		{"memory below 8 KiB per thread", "ARGON2_MEMORY_KIB", "31"},
		{"zero threads", "ARGON2_THREADS", "0"},
		{"threads above uint8", "ARGON2_THREADS", "257"},
		{"non-numeric threads", "ARGON2_THREADS", "four"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			t.Setenv("ACCOUNT_STORE", "memory")
			t.Setenv("ARGON2_TIME", "")
			t.Setenv("ARGON2_MEMORY_KIB", "")
			t.Setenv("ARGON2_THREADS", "")
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadAccountConfig()
			if !errors.Is(err, commonerrors.ErrInvalidConfig) {
				t.Fatalf("expected invalid config error, got %v (argon2 %+v)", err, cfg.Argon2)
			}
		})
	}
}

func TestLoadAccountConfig_Argon2Bounds(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACCOUNT_STORE", "memory")
	t.Setenv("ARGON2_TIME", "4294967295")
	t.Setenv("ARGON2_MEMORY_KIB", "2040")
	t.Setenv("ARGON2_THREADS", "255")

	cfg, err := LoadAccountConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Argon2.Time != 4294967295 || cfg.Argon2.MemoryKiB != 2040 || cfg.Argon2.Threads != 255 {
		t.Errorf("expected values to be kept exactly, got %+v", cfg.Argon2)
	}
}

func TestLoadAccountConfig_RejectsOverflowingBreakerThreshold(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ACCOUNT_STORE", "memory")
	t.Setenv("CIRCUIT_BREAKER_THRESHOLD", "2147483648")

	_, err := LoadAccountConfig()
	if !errors.Is(err, commonerrors.ErrInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}
