package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Pricing PricingConfig
	OTLP    OTLPConfig
}

type ServerConfig struct {
	Port string
	Host string
}

// StorageConfig selects the persistence backend. SQLite is the local
// default; Postgres parameters are only consulted when Backend is
// "postgres".
type StorageConfig struct {
	Backend    string
	SQLitePath string
	Host       string
	Port       string
	User       string
	Password   string
	Database   string
}

// PricingConfig points at the external pricing service. Timeout bounds
// every outbound conversion call.
type PricingConfig struct {
	BaseURL string
	Timeout time.Duration
}

type OTLPConfig struct {
	Endpoint      string
	ServiceName   string
	Environment   string
	ExportEnabled bool
}

// PostgresDSN assembles the connection string for the networked backend.
func (c *StorageConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

// LoadConfig loads configuration from environment variables. A .env file
// in the working directory is read first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "5000"),
		},
		Storage: StorageConfig{
			Backend:    getEnv("STORAGE_BACKEND", BackendSQLite),
			SQLitePath: getEnv("SQLITE_PATH", "products.db"),
			Host:       getEnv("DB_HOST", "db"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("POSTGRES_USER", "admin"),
			Password:   getEnv("POSTGRES_PASSWORD", "admin_password"),
			Database:   getEnv("POSTGRES_DB", "products_db"),
		},
		Pricing: PricingConfig{
			BaseURL: getEnv("PRICING_SERVICE_URL", "http://localhost:5001"),
			Timeout: time.Duration(getEnvInt("PRICING_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		OTLP: OTLPConfig{
			Endpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:   getEnv("OTEL_SERVICE_NAME", "products-api"),
			Environment:   getEnv("OTEL_ENVIRONMENT", "development"),
			ExportEnabled: getEnvBool("OTEL_EXPORT_ENABLED", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
