package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig holds the shared-state store configuration. The budget
// counters, rate windows, jti replay set and BYOK quota counters all live
// here; no process caches any of these locally.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// AdminAPIKeys authenticate the admin and mint surfaces. These belong
	// to the platform operator, not to tenants.
	AdminAPIKeys []string `mapstructure:"admin_api_keys"`
}

// TokenConfig holds signed-token trust boundary configuration
type TokenConfig struct {
	Issuer           string        `mapstructure:"issuer"`
	Audience         string        `mapstructure:"audience"`
	MaxLifetime      time.Duration `mapstructure:"max_lifetime"`
	ClockSkew        time.Duration `mapstructure:"clock_skew"`
	KeyCacheTTL      time.Duration `mapstructure:"key_cache_ttl"`
	NegativeCacheTTL time.Duration `mapstructure:"negative_cache_ttl"`
	// SigningKid and SigningKeyPEM configure the mint surface. Verification
	// keys always come from the signing-key table, never from here.
	SigningKid    string `mapstructure:"signing_kid"`
	SigningKeyPEM string `mapstructure:"signing_key_pem"`
}

// RateLimitConfig holds per-dimension admission control ceilings.
// All windows are sliding, enforced against the shared store.
type RateLimitConfig struct {
	PerIPPerMinute      int `mapstructure:"per_ip_per_minute"`
	PerTenantPerMinute  int `mapstructure:"per_tenant_per_minute"`
	PerUserPerMinute    int `mapstructure:"per_user_per_minute"`
	PerChannelPerMinute int `mapstructure:"per_channel_per_minute"`
	BurstPerSecond      int `mapstructure:"burst_per_second"`
	// LocalRPS bounds the in-process best-effort pre-filter
	LocalRPS   float64 `mapstructure:"local_rps"`
	LocalBurst int     `mapstructure:"local_burst"`
}

// BudgetConfig holds budget reservation engine configuration
type BudgetConfig struct {
	// CeilingMultiplier bounds worst-case runaway cost as a multiple of
	// the estimate
	CeilingMultiplier int64 `mapstructure:"ceiling_multiplier"`
}

// BYOKConfig holds bring-your-own-key router configuration
type BYOKConfig struct {
	DailyQuota int64 `mapstructure:"daily_quota"`
}

// GovernanceConfig holds agent governance configuration
type GovernanceConfig struct {
	QuorumWeight      int64         `mapstructure:"quorum_weight"`
	Cooldown          time.Duration `mapstructure:"cooldown"`
	ProposalLifetime  time.Duration `mapstructure:"proposal_lifetime"`
	BaseVoteWeight    int64         `mapstructure:"base_vote_weight"`
	ReputationDivisor int64         `mapstructure:"reputation_divisor"`
	ReputationCap     int64         `mapstructure:"reputation_cap"`
	DelegationCap     int64         `mapstructure:"delegation_cap"`
}

// ReconcileConfig holds reconciliation sweeper configuration
type ReconcileConfig struct {
	Interval            time.Duration `mapstructure:"interval"`
	ClawbackSLA         time.Duration `mapstructure:"clawback_sla"`
	WorkerPoolSize      int           `mapstructure:"worker_pool_size"`
	StaleReservationAge time.Duration `mapstructure:"stale_reservation_age"`
	StaleIdempotencyAge time.Duration `mapstructure:"stale_idempotency_age"`
}

// RegistryConfig holds paths to the data-driven lookup tables
type RegistryConfig struct {
	PoolPreferencePath string `mapstructure:"pool_preference_path"`
	TierAccessPath     string `mapstructure:"tier_access_path"`
	ProviderHostsPath  string `mapstructure:"provider_hosts_path"`
}

// InferenceConfig holds upstream inference service configuration
type InferenceConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// PlatformKeys maps provider name to the platform-held API key used
	// when a tenant has no BYOK credential
	PlatformKeys map[string]string `mapstructure:"platform_keys"`
}

// GatewayConfig holds configuration for the gateway binary
type GatewayConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Token      TokenConfig      `mapstructure:"token"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Budget     BudgetConfig     `mapstructure:"budget"`
	BYOK       BYOKConfig       `mapstructure:"byok"`
	Governance GovernanceConfig `mapstructure:"governance"`
	Registry   RegistryConfig   `mapstructure:"registry"`
	Inference  InferenceConfig  `mapstructure:"inference"`
	// Reconcile configures the on-demand sweep behind the admin trigger; the
	// reconciler binary owns the periodic schedule.
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

// ReconcilerConfig holds configuration for the reconciler binary
type ReconcilerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	// Redis is needed because force-aborting a stale reservation releases
	// its hold from the shared budget counters.
	Redis     RedisConfig     `mapstructure:"redis"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

// MigrateConfig holds configuration for the migrate binary
type MigrateConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
}

// LoadGatewayConfig loads configuration for the gateway
func LoadGatewayConfig(configFile string, envPath string) (*GatewayConfig, error) {
	v := configureViper("gateway", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 300)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.key_prefix", "freeside")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "GATEWAY_EVENTS")
	v.SetDefault("token.issuer", "freeside-gateway")
	v.SetDefault("token.audience", "inference")
	v.SetDefault("token.max_lifetime", "120s")
	v.SetDefault("token.clock_skew", "30s")
	v.SetDefault("token.key_cache_ttl", "60s")
	v.SetDefault("token.negative_cache_ttl", "30s")
	v.SetDefault("rate_limit.per_ip_per_minute", 120)
	v.SetDefault("rate_limit.per_tenant_per_minute", 600)
	v.SetDefault("rate_limit.per_user_per_minute", 60)
	v.SetDefault("rate_limit.per_channel_per_minute", 120)
	v.SetDefault("rate_limit.burst_per_second", 10)
	v.SetDefault("rate_limit.local_rps", 200)
	v.SetDefault("rate_limit.local_burst", 400)
	v.SetDefault("budget.ceiling_multiplier", 3)
	v.SetDefault("byok.daily_quota", 10000)
	v.SetDefault("governance.quorum_weight", 100)
	v.SetDefault("governance.cooldown", "24h")
	v.SetDefault("governance.proposal_lifetime", "168h")
	v.SetDefault("governance.base_vote_weight", 10)
	v.SetDefault("governance.reputation_divisor", 250)
	v.SetDefault("governance.reputation_cap", 20)
	v.SetDefault("governance.delegation_cap", 50)
	v.SetDefault("inference.request_timeout", "300s")
	v.SetDefault("reconcile.clawback_sla", "72h")
	v.SetDefault("reconcile.worker_pool_size", 4)
	v.SetDefault("reconcile.stale_reservation_age", "15m")
	v.SetDefault("reconcile.stale_idempotency_age", "15m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config GatewayConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Token.MaxLifetime > 2*time.Minute {
		return nil, errors.New("token.max_lifetime must not exceed 120s")
	}

	return &config, nil
}

// LoadReconcilerConfig loads configuration for the reconciler
func LoadReconcilerConfig(configFile string, envPath string) (*ReconcilerConfig, error) {
	v := configureViper("reconciler", configFile, envPath)

	// Set defaults
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("redis.key_prefix", "freeside")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "GATEWAY_EVENTS")
	v.SetDefault("reconcile.interval", "1h")
	v.SetDefault("reconcile.clawback_sla", "72h")
	v.SetDefault("reconcile.worker_pool_size", 4)
	v.SetDefault("reconcile.stale_reservation_age", "15m")
	v.SetDefault("reconcile.stale_idempotency_age", "15m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg ReconcilerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &cfg, nil
}

// LoadMigrateConfig loads configuration for the migrate binary
func LoadMigrateConfig(configFile string, envPath string) (*MigrateConfig, error) {
	v := configureViper("migrate", configFile, envPath)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg MigrateConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/gateway/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FREESIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	commonKeys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.key_prefix",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.admin_api_keys",
		// Token
		"token.issuer",
		"token.audience",
		"token.max_lifetime",
		"token.clock_skew",
		"token.key_cache_ttl",
		"token.negative_cache_ttl",
		"token.signing_kid",
		"token.signing_key_pem",
		// Rate limit
		"rate_limit.per_ip_per_minute",
		"rate_limit.per_tenant_per_minute",
		"rate_limit.per_user_per_minute",
		"rate_limit.per_channel_per_minute",
		"rate_limit.burst_per_second",
		"rate_limit.local_rps",
		"rate_limit.local_burst",
		// Budget
		"budget.ceiling_multiplier",
		// BYOK
		"byok.daily_quota",
		// Governance
		"governance.quorum_weight",
		"governance.cooldown",
		"governance.proposal_lifetime",
		"governance.base_vote_weight",
		"governance.reputation_divisor",
		"governance.reputation_cap",
		"governance.delegation_cap",
		// Reconcile
		"reconcile.interval",
		"reconcile.clawback_sla",
		"reconcile.worker_pool_size",
		"reconcile.stale_reservation_age",
		"reconcile.stale_idempotency_age",
		// Registry
		"registry.pool_preference_path",
		"registry.tier_access_path",
		"registry.provider_hosts_path",
		// Inference
		"inference.request_timeout",
	}

	for _, key := range commonKeys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
