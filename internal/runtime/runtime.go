// Package runtime wires the production pieces: logging, environment
// overrides, and the HTTP client for the Codewars API.
package runtime

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// DefaultBaseURL is the public Codewars REST API root.
const DefaultBaseURL = "https://www.codewars.com/api/v1"

// DefaultLogger returns the shared stderr text logger.
func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// LoadEnv reads a .env file if one exists. Missing files are fine;
// flags stay the primary configuration surface.
func LoadEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env overrides")
	}
}

// BaseURL resolves the API root, preferring KATATRACK_BASE_URL.
func BaseURL(flagValue string) string {
	if env := os.Getenv("KATATRACK_BASE_URL"); env != "" {
		return env
	}
	if flagValue != "" {
		return flagValue
	}
	return DefaultBaseURL
}
