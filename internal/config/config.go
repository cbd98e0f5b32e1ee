package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	ServerPort string
	GinMode    string

	JWTSecret string
	JWTExpiry time.Duration

	// HardDeleteSecret is the operator secret managers present to
	// permanently delete records. Empty disables manager deletes.
	HardDeleteSecret string

	// RedisAddr enables rate limiting of the auth routes when set.
	RedisAddr         string
	RateLimitRequests int
	RateLimitWindow   time.Duration

	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

// Load reads .env if present, then the environment. The returned note is
// non-empty when no .env file was found.
func Load() (*Config, string) {
	var note string
	if err := godotenv.Load(); err != nil {
		note = "no .env file found, using system environment variables"
	}

	return &Config{
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "taskhub"),
		DBPassword:        getEnv("DB_PASSWORD", "taskhub"),
		DBName:            getEnv("DB_NAME", "taskhub"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "release"),
		JWTSecret:         getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 168)) * time.Hour,
		HardDeleteSecret:  getEnv("HARD_DELETE_SECRET", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}, note
}

// DSN is the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
