package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	HTTPPort int

	MigrationsPath string

	KafkaBrokerURL         string
	KafkaLedgerEventsTopic string

	OutboxPollInterval time.Duration
	OutboxPollTimeout  time.Duration

	// CLILogPath is where the interactive front end writes its log.
	CLILogPath string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.DBConfig.Host = getEnvOrDefault("BANK_DB_HOST", "localhost")
	cfg.DBConfig.Port = getEnvAsInt("BANK_DB_PORT", 5432)
	cfg.DBConfig.User = getEnvOrDefault("BANK_DB_USER", "bank")
	cfg.DBConfig.Password = getEnvOrDefault("BANK_DB_PASSWORD", "bank")
	cfg.DBConfig.Name = getEnvOrDefault("BANK_DB_NAME", "bank")
	cfg.DBConfig.SSLMode = getEnvOrDefault("BANK_DB_SSLMODE", "disable")

	cfg.HTTPPort = getEnvAsInt("BANK_HTTP_PORT", 8080)

	cfg.MigrationsPath = getEnvOrDefault("BANK_MIGRATIONS_PATH", "migrations")

	cfg.KafkaBrokerURL = getEnvOrDefault("KAFKA_BROKER_URL", "")
	cfg.KafkaLedgerEventsTopic = getEnvOrDefault("KAFKA_LEDGER_EVENTS_TOPIC", "ledger_events")

	cfg.OutboxPollInterval = getEnvAsDuration("OUTBOX_POLL_INTERVAL", 1*time.Second)
	cfg.OutboxPollTimeout = getEnvAsDuration("OUTBOX_POLL_TIMEOUT", 500*time.Millisecond)

	cfg.CLILogPath = getEnvOrDefault("BANK_CLI_LOG", "bank.log")

	return cfg, nil
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBConfig.User, c.DBConfig.Password, c.DBConfig.Host, c.DBConfig.Port, c.DBConfig.Name, c.DBConfig.SSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	if c.KafkaBrokerURL == "" {
		return nil
	}
	return strings.Split(c.KafkaBrokerURL, ",")
}

// KafkaEnabled reports whether event publishing is configured. Without a
// broker the ledger still runs; outbox rows simply stay pending.
func (c *Config) KafkaEnabled() bool {
	return c.KafkaBrokerURL != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnvOrDefault(key, strconv.Itoa(defaultValue))
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnvOrDefault(key, defaultValue.String())
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
