package config_test

import (
	"testing"
	"time"

	"healthtracker/internal/config"
	"healthtracker/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := config.FromViper(config.New())
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, repositories.DriverPostgres, cfg.Storage.Driver)
	assert.Contains(t, cfg.Storage.DSN, "dbname=healthtracker")
	assert.Equal(t, logger.Warn, cfg.Storage.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, "track_events", cfg.RabbitMQQueue)
}

func TestFromViper_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := config.FromViper(config.New())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, repositories.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "healthtracker.db", cfg.Storage.DSN)
	assert.Equal(t, logger.Silent, cfg.Storage.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestFromViper_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.FromViper(config.New())
	assert.ErrorIs(t, err, config.ErrMissingSecret)
}

func TestFromViper_UnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", "cassandra")

	_, err := config.FromViper(config.New())
	assert.Error(t, err)
}
