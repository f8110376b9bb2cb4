package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"healthtracker/internal/repositories"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm/logger"
)

// Config holds the server settings.
type Config struct {
	Port      string
	JWTSecret string
	JWTTTL    time.Duration

	Storage repositories.Options

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RabbitMQURL   string
	RabbitMQQueue string
}

// ErrMissingSecret is returned when JWT_SECRET is not configured.
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Load reads configuration from the environment, after loading .env when present.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	return FromViper(New())
}

// New returns a viper instance with the defaults applied and environment lookup enabled.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "5000")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("STORAGE_DRIVER", repositories.DriverPostgres)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "healthtracker")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "track_events")
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from v and validates it.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:      v.GetString("PORT"),
		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),
		Storage: repositories.Options{
			Driver:        strings.ToLower(v.GetString("STORAGE_DRIVER")),
			DSN:           v.GetString("DATABASE_DSN"),
			LogLevel:      parseLogLevel(v.GetString("DB_LOG_LEVEL")),
			MongoURI:      v.GetString("MONGO_URI"),
			MongoDatabase: v.GetString("MONGO_DATABASE"),
		},
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		RabbitMQQueue: v.GetString("RABBITMQ_QUEUE"),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %q", v.GetString("JWT_TTL"))
	}

	switch cfg.Storage.Driver {
	case repositories.DriverPostgres:
		if cfg.Storage.DSN == "" {
			cfg.Storage.DSN = "host=localhost user=postgres password=postgres dbname=healthtracker port=5432 sslmode=disable"
		}
	case repositories.DriverSQLite:
		if cfg.Storage.DSN == "" {
			cfg.Storage.DSN = "healthtracker.db"
		}
	case repositories.DriverMongo, repositories.DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	if cfg.Storage.Driver == repositories.DriverMemory {
		log.Println("Warning: memory storage driver selected, data is lost on restart")
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func parseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
