package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/adapter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/rest"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/api/server"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/budget"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/byok"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/config"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/emitter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/governance"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/idempotency"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/inference"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/ledger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/providers/jetstream"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/ratelimit"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/reconcile"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/registry"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/token"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadGatewayConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "gateway",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Freeside inference gateway")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Connect to Redis; every admission decision depends on it
	redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx); err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	}
	logger.InfoCtx(ctx, "Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// Connect to NATS JetStream
	natsPublisher, err := jetstream.NewPublisher(jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer natsPublisher.Close()
	logger.InfoCtx(ctx, "Connected to NATS JetStream")

	eventEmitter := emitter.NewEmitter(natsPublisher, jsonAdapter, clock)

	// Load the data-driven lookup tables
	poolRegistry, err := registry.LoadPools(cfg.Registry.PoolPreferencePath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load pool registry", zap.Error(err), zap.String("path", cfg.Registry.PoolPreferencePath))
	}
	tierRegistry, err := registry.LoadTiers(cfg.Registry.TierAccessPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load tier registry", zap.Error(err), zap.String("path", cfg.Registry.TierAccessPath))
	}
	hostRegistry, err := registry.LoadHosts(cfg.Registry.ProviderHostsPath)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to load host registry", zap.Error(err), zap.String("path", cfg.Registry.ProviderHostsPath))
	}

	// Token trust boundary
	if cfg.Token.SigningKid == "" || cfg.Token.SigningKeyPEM == "" {
		logger.FatalCtx(ctx, "token.signing_kid and token.signing_key_pem are required")
	}
	signingKey, err := token.ParseECPrivateKey(cfg.Token.SigningKeyPEM)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to parse signing key", zap.Error(err))
	}
	issuer := token.NewIssuer(cfg.Token, clock, cfg.Token.SigningKid, signingKey)
	keyring := token.NewKeyring(dataStore, clock, cfg.Token.KeyCacheTTL, cfg.Token.NegativeCacheTTL, cfg.Token.MaxLifetime)
	verifier := token.NewVerifier(cfg.Token, keyring, tierRegistry, redisClient, clock, cfg.Redis.KeyPrefix)

	// Core services
	guard := idempotency.NewGuard(dataStore)
	limiter := ratelimit.NewLimiter(cfg.RateLimit, redisClient, cfg.Redis.KeyPrefix)
	budgetEngine := budget.NewEngine(dataStore, redisClient, eventEmitter, clock, cfg.Redis.KeyPrefix)
	keyRouter := byok.NewRouter(dataStore, redisClient, poolRegistry, hostRegistry, cfg.Redis.KeyPrefix, cfg.BYOK.DailyQuota)
	ledgerService := ledger.NewService(dataStore, eventEmitter, clock)
	governanceService := governance.NewService(dataStore, eventEmitter, clock, governance.Config{
		Quorum:            cfg.Governance.QuorumWeight,
		Cooldown:          cfg.Governance.Cooldown,
		ProposalTTL:       cfg.Governance.ProposalLifetime,
		BaseVoteWeight:    cfg.Governance.BaseVoteWeight,
		ReputationDivisor: cfg.Governance.ReputationDivisor,
		ReputationCap:     cfg.Governance.ReputationCap,
		DelegationCap:     cfg.Governance.DelegationCap,
	})
	inferenceClient := inference.NewClient(cfg.Inference.RequestTimeout, hostRegistry, jsonAdapter)

	// Never started here: the reconciler binary owns the periodic schedule,
	// this instance only serves the on-demand admin trigger.
	sweeper := reconcile.NewSweeper(&reconcile.Config{
		WorkerPoolSize:      cfg.Reconcile.WorkerPoolSize,
		StaleReservationAge: cfg.Reconcile.StaleReservationAge,
		StaleIdempotencyAge: cfg.Reconcile.StaleIdempotencyAge,
		ClawbackSLA:         cfg.Reconcile.ClawbackSLA,
	}, dataStore, budgetEngine, guard, eventEmitter, clock)

	handler := rest.NewHandler(
		guard,
		budgetEngine,
		keyRouter,
		inferenceClient,
		ledgerService,
		governanceService,
		sweeper,
		dataStore,
		issuer,
		poolRegistry,
		tierRegistry,
	)

	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		AdminAPIKeys: cfg.Server.AdminAPIKeys,
	}, handler, verifier, limiter)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.FatalCtx(shutdownCtx, "Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Gateway stopped")
}
