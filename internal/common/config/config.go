package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
	commonerrors "github.com/AlibekovAA/chat-accounts/internal/common/errors"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Argon2Config struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	KeyLen    uint32
}

type LockoutConfig struct {
	MaxFailures int
	Window      time.Duration
	Duration    time.Duration
	// MaxEntries caps the usernames tracked at once; 0 uses the default.
	MaxEntries  int
}

type AccountConfig struct {
	HTTPPort                string
	Store                   string
	DatabaseURL             string
	SQLitePath              string
	JWTSecret               string
	AccessTokenTTL          time.Duration
	RequestTimeout          time.Duration
	Argon2                  Argon2Config
	Lockout                 LockoutConfig
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

// LoadAccountConfig reads the process environment once at startup. Any
// error here is a fatal configuration fault.
func LoadAccountConfig() (AccountConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return AccountConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return AccountConfig{}, err
	}

	store := strings.ToLower(getEnv("ACCOUNT_STORE", StorePostgres))
	var databaseURL string
	switch store {
	case StorePostgres:
		databaseURL, err = mustEnv("DATABASE_URL")
		if err != nil {
			return AccountConfig{}, err
		}
	case StoreSQLite, StoreMemory:
	default:
		return AccountConfig{}, commonerrors.ErrInvalidConfig.WithMessage(
			fmt.Sprintf("ACCOUNT_STORE must be one of %s, %s, %s: got %q", StorePostgres, StoreSQLite, StoreMemory, store),
		)
	}

	argon2Cfg, err := loadArgon2Config()
	if err != nil {
		return AccountConfig{}, err
	}

	threshold, err := getBoundedIntEnv("CIRCUIT_BREAKER_THRESHOLD", constants.DefaultCircuitBreakerThreshold, 1, math.MaxInt32)
	if err != nil {
		return AccountConfig{}, err
	}

	cfg := AccountConfig{
		HTTPPort:       getEnv("ACCOUNT_HTTP_PORT", constants.DefaultAccountHTTPPort),
		Store:          store,
		DatabaseURL:    databaseURL,
		SQLitePath:     getEnv("SQLITE_PATH", constants.DefaultSQLitePath),
		JWTSecret:      jwtSecret,
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RequestTimeout: getDurationEnv("ACCOUNT_REQUEST_TIMEOUT", constants.DefaultAccountRequestTimeout),
		Argon2:         argon2Cfg,
		Lockout: LockoutConfig{
			MaxFailures: getIntEnv("LOGIN_MAX_FAILURES", constants.DefaultLoginMaxFailures),
			Window:      getDurationEnv("LOGIN_LOCKOUT_WINDOW", constants.DefaultLoginLockoutWindow),
			Duration:    getDurationEnv("LOGIN_LOCKOUT_DURATION", constants.DefaultLoginLockoutDuration),
			MaxEntries:  getIntEnv("LOGIN_LIMITER_MAX_ENTRIES", constants.DefaultLoginLimiterMaxEntries),
		},
		CircuitBreakerThreshold: int32(threshold),
		CircuitBreakerTimeout:   getDurationEnv("CIRCUIT_BREAKER_TIMEOUT", constants.DefaultCircuitBreakerTimeout),
		CircuitBreakerReset:     getDurationEnv("CIRCUIT_BREAKER_RESET", constants.DefaultCircuitBreakerReset),
	}

	if err := cfg.validate(); err != nil {
		return AccountConfig{}, err
	}

	return cfg, nil
}

// loadArgon2Config range-checks the raw values before narrowing them, so an
// out-of-range setting is rejected instead of wrapping around.
func loadArgon2Config() (Argon2Config, error) {
	threads, err := getBoundedIntEnv("ARGON2_THREADS", constants.DefaultArgon2Threads, 1, math.MaxUint8)
	if err != nil {
		return Argon2Config{}, err
	}
	timeCost, err := getBoundedIntEnv("ARGON2_TIME", constants.DefaultArgon2Time, 1, math.MaxUint32)
	if err != nil {
		return Argon2Config{}, err
	}
	memory, err := getBoundedIntEnv("ARGON2_MEMORY_KIB", constants.DefaultArgon2Memory, 8*threads, math.MaxUint32)
	if err != nil {
		return Argon2Config{}, err
	}

	return Argon2Config{
		Time:      uint32(timeCost),
		MemoryKiB: uint32(memory),
		Threads:   uint8(threads),
		KeyLen:    constants.DefaultArgon2KeyLen,
	}, nil
}

func (c AccountConfig) validate() error {
	switch {
	case c.AccessTokenTTL <= 0:
		return commonerrors.ErrInvalidConfig.WithMessage("ACCESS_TOKEN_TTL must be positive")
	case c.Lockout.MaxFailures < 0:
		return commonerrors.ErrInvalidConfig.WithMessage("LOGIN_MAX_FAILURES must not be negative")
	}
	return nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

// getBoundedIntEnv returns fallback when key is unset and an
// ErrInvalidConfig when the value is not an integer in [lo, hi].
func getBoundedIntEnv(key string, fallback, lo, hi int64) (int64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil || i < lo || i > hi {
		return 0, commonerrors.ErrInvalidConfig.WithMessage(
			fmt.Sprintf("%s must be an integer between %d and %d: got %q", key, lo, hi, v),
		)
	}
	return i, nil
}
