package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	// Server
	Port        string
	AppEnv      string
	CORSOrigins string

	// Session
	JWTSecret  string
	SessionTTL time.Duration

	// Listing store
	StoreDriver  string
	StoreTimeout time.Duration

	MongoURI        string
	MongoDB         string
	MongoCollection string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Error tracking
	SentryDSN string
}

// Load reads the environment, after loading .env when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	return &Config{
		Port:        getEnv("PORT", "5000"),
		AppEnv:      getEnv("APP_ENV", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: parseDuration(getEnv("SESSION_TTL", "1h"), time.Hour),

		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		StoreTimeout: parseDuration(getEnv("STORE_TIMEOUT", "10s"), 10*time.Second),

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "bites-plus"),
		MongoCollection: getEnv("MONGO_COLLECTION", "foodCollection"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "bites_plus"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}
}

// Production reports whether cookies must be cross-site and secure.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
