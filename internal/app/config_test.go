package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ordertracker/internal/domain"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.True(t, cfg.PostgresAutoMigrate)
	assert.Equal(t, "ordertracker.order.events", cfg.KafkaTopic)
	assert.False(t, cfg.KafkaEnabled())
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty http addr", func(c *Config) { c.HTTPAddr = "" }, true},
		{"empty grpc addr", func(c *Config) { c.GRPCAddr = " " }, true},
		{"empty metrics addr", func(c *Config) { c.MetricsAddr = "" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"unknown driver", func(c *Config) { c.StorageDriver = "cassandra" }, true},
		{"postgres without dsn", func(c *Config) { c.StorageDriver = StorageDriverPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.StorageDriver = StorageDriverPostgres
			c.PostgresDSN = "postgres://localhost/orders"
		}, false},
		{"sqlite without path", func(c *Config) {
			c.StorageDriver = StorageDriverSQLite
			c.SQLitePath = ""
		}, true},
		{"sqlite default path", func(c *Config) { c.StorageDriver = StorageDriverSQLite }, false},
		{"redis without addr", func(c *Config) {
			c.StorageDriver = StorageDriverRedis
			c.RedisAddr = ""
		}, true},
		{"redis default addr", func(c *Config) { c.StorageDriver = StorageDriverRedis }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("ORDER_TRACKER_HTTP_ADDR", ":18080")
	t.Setenv("ORDER_TRACKER_STORAGE_DRIVER", "sqlite")
	t.Setenv("ORDER_TRACKER_SQLITE_PATH", "/tmp/orders.db")
	t.Setenv("ORDER_TRACKER_POSTGRES_AUTO_MIGRATE", "false")
	t.Setenv("ORDER_TRACKER_KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":18080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr, "unset variables keep defaults")
	assert.Equal(t, StorageDriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/orders.db", cfg.SQLitePath)
	assert.False(t, cfg.PostgresAutoMigrate)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"ORDER_TRACKER_GRPC_ADDR=:15051\nORDER_TRACKER_LOG_LEVEL=debug\n",
	), 0o600))

	// Переменная из окружения важнее значения из файла.
	t.Setenv("ORDER_TRACKER_LOG_LEVEL", "warn")
	// godotenv выставляет переменные процесса; регистрируем их для очистки после теста.
	t.Setenv("ORDER_TRACKER_GRPC_ADDR", "")
	require.NoError(t, os.Unsetenv("ORDER_TRACKER_GRPC_ADDR"))

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	assert.Equal(t, ":15051", cfg.GRPCAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig_MissingEnvFileIsIgnored(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Run("bad bool", func(t *testing.T) {
		t.Setenv("ORDER_TRACKER_POSTGRES_AUTO_MIGRATE", "maybe")
		_, err := LoadConfig("")
		require.Error(t, err)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("ORDER_TRACKER_STORAGE_DRIVER", "postgres")
		t.Setenv("ORDER_TRACKER_POSTGRES_DSN", "")
		_, err := LoadConfig("")
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}
