package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	DefaultOrgID int64
	Bootstrap    BootstrapConfig

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	// SpotlightTTLSeconds controls how long a scanned item stays highlighted.
	SpotlightTTLSeconds int
}

// BootstrapConfig controls startup seeding for local and self-hosted installs.
type BootstrapConfig struct {
	EnsureDefaultOrg bool
	SeedDemoCatalog  bool
}

var Module = fx.Module("config",
	fx.Provide(Load),
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:      getenv("APP_SERVICE", "stocktake"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		DefaultOrgID: getenvInt64("DEFAULT_ORG", 0),
		Bootstrap: BootstrapConfig{
			EnsureDefaultOrg: getenvBool("BOOTSTRAP_ENSURE_DEFAULT_ORG", true),
			SeedDemoCatalog:  getenvBool("BOOTSTRAP_SEED_DEMO_CATALOG", false),
		},
		OTLPEndpoint:        getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:              getenv("DATABASE_TYPE", "postgres"),
		DBHost:              getenv("DATABASE_HOST", "localhost"),
		DBPort:              getenv("DATABASE_PORT", "5432"),
		DBName:              getenv("DATABASE_NAME", "stocktake"),
		DBUser:              getenv("DATABASE_USER", "postgres"),
		DBPassword:          getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:           getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:       int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:       int(getenvInt64("DATABASE_MAX_OPEN_CONN", 25)),
		DBConnMaxLifetime:   int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 3600)),
		DBConnMaxIdleTime:   int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 600)),
		SpotlightTTLSeconds: int(getenvInt64("SPOTLIGHT_TTL_SECONDS", 3)),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
