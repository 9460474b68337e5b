package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/config"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/logger"
	"github.com/0xHoneyJar/loa-freeside-sub004/internal/store/schema"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadMigrateConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx := context.Background()

	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "migrate",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}

	logger.InfoCtx(ctx, "Running schema migration", zap.String("dbname", cfg.Database.DBName))

	if err := db.AutoMigrate(schema.Models()...); err != nil {
		logger.FatalCtx(ctx, "Migration failed", zap.Error(err))
	}

	logger.InfoCtx(ctx, "Migration complete")
}
