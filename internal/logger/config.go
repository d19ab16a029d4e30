package logger

import (
	"io"
	"os"
	"strconv"
)

// EnvConfig is the logger setup read from LOG_* environment variables.
// Rotation settings only matter when a file output is active, which is every
// environment except local.
type EnvConfig struct {
	Level       string
	Format      string // json or text
	Output      io.Writer
	ServiceName string
	Environment string // local, dev, prod

	LogFile     string
	LogFileOnly bool

	// lumberjack rotation
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// LoadFromEnv reads the logger configuration from the environment, applying
// defaults for anything unset.
func LoadFromEnv() *EnvConfig {
	return &EnvConfig{
		Level:       envOr("LOG_LEVEL", "info"),
		Format:      envOr("LOG_FORMAT", "json"),
		ServiceName: envOr("SERVICE_NAME", "screenrank"),
		Environment: envOr("APP_ENV", "local"),

		LogFile:     envOr("LOG_FILE", "/var/log/screenrank/app.log"),
		LogFileOnly: envBool("LOG_FILE_ONLY", false),

		MaxSize:    envInt("LOG_MAX_SIZE", 100),
		MaxBackups: envInt("LOG_MAX_BACKUPS", 7),
		MaxAge:     envInt("LOG_MAX_AGE", 30),
		Compress:   envBool("LOG_COMPRESS", true),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
