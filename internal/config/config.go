// Package config loads runtime settings from the environment and an
// optional .env file, and persists the API key when the user asks to.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stickermaker/internal/adapters/removebg"
	"stickermaker/internal/core/domain"
	"stickermaker/internal/imageops"
)

const (
	DefaultEnvFile = ".env"
	APIKeyVar      = "REMOVEBG_API_KEY"
)

// Config holds all application configuration.
type Config struct {
	RemoveBG removebg.Config
	Sticker  StickerConfig
}

// StickerConfig holds sticker encoding settings.
type StickerConfig struct {
	MaxSide int // Default: 512.
	Quality int // Default: 90.
}

// Load reads envFile (a missing file is not an error) and then the
// process environment. Variables already set in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	return &Config{
		RemoveBG: removebg.Config{
			APIKey:      strings.TrimSpace(getEnv(APIKeyVar, "")),
			Endpoint:    getEnv("REMOVEBG_ENDPOINT", removebg.DefaultEndpoint),
			Timeout:     getEnvAsDuration("REMOVEBG_TIMEOUT", 2*time.Minute),
			MaxAttempts: getEnvAsInt("REMOVEBG_MAX_ATTEMPTS", 3),
		},
		Sticker: StickerConfig{
			MaxSide: getEnvAsInt("STICKER_MAX_SIDE", imageops.StickerMaxSide),
			Quality: getEnvAsInt("STICKER_QUALITY", imageops.StickerQuality),
		},
	}, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Sticker.MaxSide <= 0 {
		return fmt.Errorf("STICKER_MAX_SIDE must be positive, got %d", c.Sticker.MaxSide)
	}
	if c.Sticker.Quality < 0 || c.Sticker.Quality > 100 {
		return fmt.Errorf("STICKER_QUALITY must be 0-100, got %d", c.Sticker.Quality)
	}
	if c.RemoveBG.MaxAttempts <= 0 {
		return fmt.Errorf("REMOVEBG_MAX_ATTEMPTS must be positive, got %d", c.RemoveBG.MaxAttempts)
	}
	return nil
}

// RequireAPIKey returns domain.ErrMissingAPIKey when mode needs remove.bg
// and no key is configured.
func (c *Config) RequireAPIKey(mode domain.Mode) error {
	if mode.RemoveBackground() && c.RemoveBG.APIKey == "" {
		return domain.ErrMissingAPIKey
	}
	return nil
}

// SaveAPIKey writes key into envFile, keeping every other entry, and
// sets it for the current process.
func SaveAPIKey(envFile, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key is empty")
	}
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	env, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", envFile, err)
		}
		env = map[string]string{}
	}
	env[APIKeyVar] = key

	if err := godotenv.Write(env, envFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", envFile, err)
	}
	return os.Setenv(APIKeyVar, key)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
