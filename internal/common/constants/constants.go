package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 32
	PasswordMinLength  = 8
	PasswordMaxLength  = 128
	JWTSecretMinLength = 32

	DefaultMaxRequestSize = 1 << 16

	Argon2SaltSize       = 16
	DefaultArgon2Time    = 1
	DefaultArgon2Memory  = 64 * 1024
	DefaultArgon2Threads = 4
	DefaultArgon2KeyLen  = 32

	DefaultAccessTokenTTL = 1 * time.Hour

	DefaultLoginMaxFailures       = 5
	DefaultLoginLockoutWindow     = 15 * time.Minute
	DefaultLoginLockoutDuration   = 15 * time.Minute
	LoginLimiterSweepInterval     = 1 * time.Minute
	DefaultLoginLimiterMaxEntries = 100000

	RevokedTokenCleanupInterval = 1 * time.Hour

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = 1 * time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 10 * time.Second

	SQLiteBusyTimeoutMillis = 5000

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ServerMaxHeaderBytes    = 8 << 10

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	RouteHealth        = "/health"
	RouteMetrics       = "/metrics"
	RouteAccountSignup = "/api/account/signup"
	RouteAccountLogin  = "/api/account/login"
	RouteAccountLogout = "/api/account/logout"
	RouteAccountMe     = "/api/account/me"

	DefaultAccountHTTPPort       = "8081"
	DefaultAccountRequestTimeout = 5 * time.Second
	DefaultSQLitePath            = "accounts.db"

	DefaultCircuitBreakerThreshold = 20
	DefaultCircuitBreakerTimeout   = 10 * time.Second
	DefaultCircuitBreakerReset     = 10 * time.Second

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
