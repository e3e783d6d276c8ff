package env

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvCfgDefaults(t *testing.T) {
	cfg, err := GetEnvCfg()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "BRL", cfg.Currency)
	assert.True(t, decimal.NewFromInt(1000).Equal(cfg.DefaultOverdraftLimit))
	assert.True(t, decimal.RequireFromString("0.005").Equal(cfg.DefaultInterestRate))
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.JournalEnabled())
	assert.False(t, cfg.BrokerEnabled())
	assert.False(t, cfg.RedisEnabled())
}

func TestGetEnvCfgOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_DEFAULT_INTEREST_RATE", "0.0125")
	t.Setenv("APP_MQ_HOST", "rabbit")
	t.Setenv("APP_WRITE_TIMEOUT", "1m")

	cfg, err := GetEnvCfg()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, decimal.RequireFromString("0.0125").Equal(cfg.DefaultInterestRate))
	assert.True(t, cfg.BrokerEnabled())
	assert.Equal(t, time.Minute, cfg.WriteTimeout)
}

func TestGetEnvCfgInvalidDecimal(t *testing.T) {
	t.Setenv("APP_DEFAULT_OVERDRAFT_LIMIT", "lots")

	_, err := GetEnvCfg()

	assert.Error(t, err)
}
