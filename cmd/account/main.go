package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/chat-accounts/internal/account/cleanup"
	accounthttp "github.com/AlibekovAA/chat-accounts/internal/account/http"
	accountrepo "github.com/AlibekovAA/chat-accounts/internal/account/repository"
	"github.com/AlibekovAA/chat-accounts/internal/account/service"
	"github.com/AlibekovAA/chat-accounts/internal/common/clock"
	"github.com/AlibekovAA/chat-accounts/internal/common/config"
	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/chat-accounts/internal/common/crypto"
	"github.com/AlibekovAA/chat-accounts/internal/common/db"
	commonhttp "github.com/AlibekovAA/chat-accounts/internal/common/http"
	"github.com/AlibekovAA/chat-accounts/internal/common/logger"
	"github.com/AlibekovAA/chat-accounts/internal/common/resilience"
	srv "github.com/AlibekovAA/chat-accounts/internal/common/server"
)

type stores struct {
	users   accountrepo.UserRepository
	revoked accountrepo.RevokedTokenRepository
	checks  map[string]commonhttp.HealthCheck
	close   func()
}

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "account", os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	cfg, err := config.LoadAccountConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store, err)
	}
	defer st.close()

	realClock := clock.NewRealClock()
	idGenerator := commoncrypto.NewUUIDGenerator()
	hasher := commoncrypto.NewArgon2Hasher(commoncrypto.Argon2Params{
		Time:      cfg.Argon2.Time,
		MemoryKiB: cfg.Argon2.MemoryKiB,
		Threads:   cfg.Argon2.Threads,
		KeyLen:    cfg.Argon2.KeyLen,
		SaltLen:   constants.Argon2SaltSize,
	})

	tokens, err := service.NewTokenIssuer(cfg.JWTSecret, idGenerator, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("failed to create token issuer: %v", err)
	}

	limiter := service.NewLoginLimiter(cfg.Lockout, realClock)
	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  cfg.CircuitBreakerThreshold,
		Timeout:    cfg.CircuitBreakerTimeout,
		ResetAfter: cfg.CircuitBreakerReset,
		Name:       "account_store",
		Clock:      realClock,
		Logger:     log,
	})

	accountService, err := service.NewAccountService(service.AccountServiceDeps{
		Users:         st.users,
		RevokedTokens: st.revoked,
		Hasher:        hasher,
		Tokens:        tokens,
		IDGenerator:   idGenerator,
		Clock:         realClock,
		Limiter:       limiter,
		Breaker:       breaker,
		Log:           log,
	})
	if err != nil {
		log.Fatalf("failed to create account service: %v", err)
	}

	limiter.StartSweeper(ctx)
	go cleanup.StartRevokedTokenCleanup(ctx, st.revoked, realClock, constants.RevokedTokenCleanupInterval, log)

	handler := accounthttp.NewHandler(accountService, cfg.RequestTimeout, log, st.checks)

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle(constants.RouteMetrics, promhttp.Handler())

	serverConfig := srv.NewServerConfig(cfg.HTTPPort, cfg.RequestTimeout)
	server := srv.NewServer(serverConfig, commonhttp.BuildBaseHandler(log, mux))

	srv.StartWithGracefulShutdown(server, log, "account",
		func(ctx context.Context) error {
			log.Infof("account service: stopping background workers")
			cancel()
			return nil
		},
	)
}

func openStores(ctx context.Context, cfg config.AccountConfig, log *logger.Logger) (stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		if err := accountrepo.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
		return stores{
			users:   accountrepo.NewPgUserRepository(pool, log),
			revoked: accountrepo.NewPgRevokedTokenRepository(pool),
			checks: map[string]commonhttp.HealthCheck{
				"postgres": func(ctx context.Context) error { return pool.Ping(ctx) },
			},
			close: pool.Close,
		}, nil

	case config.StoreSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath, accountrepo.SQLiteSchema...)
		if err != nil {
			return stores{}, err
		}
		log.Infof("using sqlite store at %s", cfg.SQLitePath)
		return stores{
			users:   accountrepo.NewSQLiteUserRepository(conn),
			revoked: accountrepo.NewSQLiteRevokedTokenRepository(conn),
			checks: map[string]commonhttp.HealthCheck{
				"sqlite": conn.PingContext,
			},
			close: func() { _ = conn.Close() },
		}, nil

	default:
		log.Warnf("using in-memory store: accounts are lost on restart")
		return stores{
			users:   accountrepo.NewMemoryUserRepository(),
			revoked: accountrepo.NewMemoryRevokedTokenRepository(),
			close:   func() {},
		}, nil
	}
}
