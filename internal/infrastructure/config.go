package infrastructure

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Judge     JudgeConfig
	Ladder    LadderConfig
	Telemetry TelemetryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds the leaderboard cache connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	BoardTTL time.Duration
}

// JWTConfig holds verification settings for externally issued tokens.
// This service never mints tokens; it only validates ones signed by the
// account service with the shared secret.
type JWTConfig struct {
	SecretKey string
	Issuer    string
}

// JudgeConfig holds the external judge client configuration
type JudgeConfig struct {
	CodeforcesBaseURL string
	RequestTimeout    time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
}

// LadderConfig holds the progress read-path limits.
//
// ProgressPageSize caps every progress listing so one request never
// returns an unbounded result set. SyncLookahead bounds how far into a
// ladder the live completed query matches judge data, capping the cost
// of each external call.
type LadderConfig struct {
	ProgressPageSize int
	SyncLookahead    int
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string
}

// LoadConfig loads configuration from the environment with sensible
// defaults. A .env file in the working directory is merged in first,
// never overriding variables already set.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 10)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "cp_ladders"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			BoardTTL: time.Duration(getEnvInt("LEADERBOARD_CACHE_TTL", 30)) * time.Second,
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", "change-me-in-production"),
			Issuer:    getEnv("JWT_ISSUER", "cp-ladders"),
		},
		Judge: JudgeConfig{
			CodeforcesBaseURL: getEnv("CODEFORCES_API_URL", "https://codeforces.com/api"),
			RequestTimeout:    time.Duration(getEnvInt("JUDGE_REQUEST_TIMEOUT", 15)) * time.Second,
			MaxRetries:        getEnvInt("JUDGE_MAX_RETRIES", 1),
			RetryBackoff:      time.Duration(getEnvInt("JUDGE_RETRY_BACKOFF_MS", 500)) * time.Millisecond,
		},
		Ladder: LadderConfig{
			ProgressPageSize: getEnvInt("PROGRESS_PAGE_SIZE", 10),
			SyncLookahead:    getEnvInt("SYNC_LOOKAHEAD", 50),
		},
		Telemetry: TelemetryConfig{
			Enabled:        getEnvBool("TELEMETRY_ENABLED", true),
			ServiceName:    getEnv("SERVICE_NAME", "cp-ladders-api"),
			ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://otel-collector:4318"),
		},
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}
