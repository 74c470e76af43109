package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"

	"github.com/snapcharge/backend/logger"
)

var loadOnce sync.Once

// LoadEnv loads variables from .env once. Missing file is fine in
// production where everything comes from the real environment.
func LoadEnv() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			logger.WarnLogger.Warnf("No .env file loaded: %v", err)
			return
		}
		logger.InfoLogger.Info("Environment loaded from .env")
	})
}

// GetEnv returns the value of key or fallback when unset.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt returns the integer value of key or fallback when unset or invalid.
func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.WarnLogger.Warnf("Invalid integer for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
