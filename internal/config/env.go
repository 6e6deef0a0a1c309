package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads KEY=VALUE pairs from .env and .env.local when present.
// Variables already set in the process environment are not overwritten, and
// .env takes precedence over .env.local.
func loadEnvFiles() {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load environment file", slog.String("file", path), slog.Any("error", err))
			continue
		}
		slog.Debug("Loaded environment file", slog.String("file", path))
	}
}
