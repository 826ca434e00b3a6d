package configs

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Realtime RealtimeConfig
	Trading  TradingConfig
	Telegram TelegramConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds token configuration
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
}

// RealtimeConfig holds websocket and ingest configuration
type RealtimeConfig struct {
	// SendBufferSize bounds the outbound queue per session; a slow
	// consumer that exceeds it has its session closed server-side
	SendBufferSize int
	IngestWorkers  int
	FeedURL        string
}

// TradingConfig holds trading configuration
type TradingConfig struct {
	DefaultInitialCapital float64
}

// TelegramConfig holds optional trade notification configuration
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			Env:      getEnv("GO_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 60),
		},
		Realtime: RealtimeConfig{
			SendBufferSize: getEnvInt("WS_SEND_BUFFER_SIZE", 256),
			IngestWorkers:  getEnvInt("INGEST_WORKERS", 4),
			FeedURL:        getEnv("FEED_URL", ""),
		},
		Trading: TradingConfig{
			DefaultInitialCapital: getEnvFloat("DEFAULT_INITIAL_CAPITAL", 100000.0),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
