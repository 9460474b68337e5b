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
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/budget"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/config"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/emitter"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/idempotency"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/providers/jetstream"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/reconcile"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
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
			"service": "reconciler",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting reconciler")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)

	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Connect to Redis; aborting a stale reservation must release its hold
	// from the shared budget counters
	redisClient := adapter.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx); err != nil {
		logger.FatalCtx(ctx, "Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.Redis.Addr))
	}

	// Connect to NATS JetStream for anomaly events
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

	eventEmitter := emitter.NewEmitter(natsPublisher, jsonAdapter, clock)
	guard := idempotency.NewGuard(dataStore)
	budgetEngine := budget.NewEngine(dataStore, redisClient, eventEmitter, clock, cfg.Redis.KeyPrefix)

	sweeper := reconcile.NewSweeper(&reconcile.Config{
		Interval:            cfg.Reconcile.Interval,
		WorkerPoolSize:      cfg.Reconcile.WorkerPoolSize,
		StaleReservationAge: cfg.Reconcile.StaleReservationAge,
		StaleIdempotencyAge: cfg.Reconcile.StaleIdempotencyAge,
		ClawbackSLA:         cfg.Reconcile.ClawbackSLA,
	}, dataStore, budgetEngine, guard, eventEmitter, clock)

	logger.InfoCtx(ctx, "Initialized reconciliation sweeper",
		zap.Duration("interval", cfg.Reconcile.Interval),
		zap.Duration("clawback_sla", cfg.Reconcile.ClawbackSLA),
		zap.Int("worker_pool_size", cfg.Reconcile.WorkerPoolSize),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := sweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := sweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Reconciler stopped")
}
