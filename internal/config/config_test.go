package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/config"
)

func TestLoadGatewayConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadGatewayConfig("", t.TempDir())
	require.NoError(t, err)

	// Every redis key formatter appends its own separator, so the prefix
	// itself must not end with one
	assert.Equal(t, "freeside", cfg.Redis.KeyPrefix)
	assert.False(t, strings.HasSuffix(cfg.Redis.KeyPrefix, ":"))

	assert.Equal(t, 120*time.Second, cfg.Token.MaxLifetime)
	assert.Equal(t, 30*time.Second, cfg.Token.ClockSkew)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadGatewayConfig_RejectsOversizedLifetime(t *testing.T) {
	t.Setenv("FREESIDE_TOKEN_MAX_LIFETIME", "10m")

	_, err := config.LoadGatewayConfig("", t.TempDir())
	require.Error(t, err)
}

func TestLoadReconcilerConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadReconcilerConfig("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "freeside", cfg.Redis.KeyPrefix)
	assert.False(t, strings.HasSuffix(cfg.Redis.KeyPrefix, ":"))
}
