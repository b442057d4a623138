package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/jwebster45206/console-university/pkg/dialogue"
)

type Config struct {
	Port         string
	Environment  string
	LogLevel     slog.Level
	StaticDir    string
	GameDataPath string // empty uses the built-in game data
	RedisURL     string // empty keeps sessions in memory
	SessionTTL   time.Duration
	JimPolicy    dialogue.JimPolicy
}

// Load reads configuration from the environment. Values from a .env file in
// the working directory are applied first; real environment variables win.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL: must be positive")
	}

	policy, err := dialogue.ParseJimPolicy(strings.ToLower(getEnv("JIM_POLICY", string(dialogue.PolicyFull))))
	if err != nil {
		return nil, fmt.Errorf("invalid JIM_POLICY: %w", err)
	}

	return &Config{
		Port:         getEnv("PORT", "10000"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		StaticDir:    getEnv("STATIC_DIR", "./web"),
		GameDataPath: os.Getenv("GAME_DATA_PATH"),
		RedisURL:     os.Getenv("REDIS_URL"),
		SessionTTL:   ttl,
		JimPolicy:    policy,
	}, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
