package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
	"github.com/vladislavdragonenkov/ordertracker/internal/messaging/kafka"
)

// StorageDriver выбирает реализацию хранилища заказов.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
	StorageDriverSQLite   StorageDriver = "sqlite"
	StorageDriverRedis    StorageDriver = "redis"
)

// Config описывает настройки запуска сервиса.
type Config struct {
	HTTPAddr    string `env:"ORDER_TRACKER_HTTP_ADDR"`
	GRPCAddr    string `env:"ORDER_TRACKER_GRPC_ADDR"`
	MetricsAddr string `env:"ORDER_TRACKER_METRICS_ADDR"`
	LogLevel    string `env:"ORDER_TRACKER_LOG_LEVEL"`

	StorageDriver       StorageDriver `env:"ORDER_TRACKER_STORAGE_DRIVER"`
	PostgresDSN         string        `env:"ORDER_TRACKER_POSTGRES_DSN"`
	PostgresAutoMigrate bool          `env:"ORDER_TRACKER_POSTGRES_AUTO_MIGRATE"`
	SQLitePath          string        `env:"ORDER_TRACKER_SQLITE_PATH"`
	RedisAddr           string        `env:"ORDER_TRACKER_REDIS_ADDR"`
	RedisPrefix         string        `env:"ORDER_TRACKER_REDIS_PREFIX"`

	KafkaBrokers []string `env:"ORDER_TRACKER_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"ORDER_TRACKER_KAFKA_TOPIC"`
}

// DefaultConfig возвращает настройки для локального запуска: in-memory хранилище, без Kafka.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		LogLevel:            "info",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		SQLitePath:          "order-tracker.db",
		RedisAddr:           "localhost:6379",
		RedisPrefix:         "ordertracker",
		KafkaTopic:          kafka.TopicOrderEvents,
	}
}

// LoadConfig читает .env-файл (если он есть), затем переменные окружения поверх DefaultConfig.
// Уже выставленные переменные окружения .env не перезаписывает.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = compactBrokers(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.HTTPAddr) == "":
		return &domain.ConfigurationError{Reason: "http address is required"}
	case strings.TrimSpace(c.GRPCAddr) == "":
		return &domain.ConfigurationError{Reason: "grpc address is required"}
	case strings.TrimSpace(c.MetricsAddr) == "":
		return &domain.ConfigurationError{Reason: "metrics address is required"}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return &domain.ConfigurationError{Reason: fmt.Sprintf("invalid log level %q", c.LogLevel)}
	}

	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return &domain.ConfigurationError{Reason: "postgres dsn is required for postgres storage driver"}
		}
	case StorageDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return &domain.ConfigurationError{Reason: "sqlite path is required for sqlite storage driver"}
		}
	case StorageDriverRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return &domain.ConfigurationError{Reason: "redis address is required for redis storage driver"}
		}
	default:
		return &domain.ConfigurationError{Reason: fmt.Sprintf("unsupported storage driver %q", c.StorageDriver)}
	}

	return nil
}

// KafkaEnabled сообщает, нужно ли публиковать события.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func compactBrokers(brokers []string) []string {
	out := make([]string, 0, len(brokers))
	for _, broker := range brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			out = append(out, broker)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
