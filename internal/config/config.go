package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the chat backend.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	RequestTimeout   time.Duration
	MetricsNamespace string

	// DataDir holds intent.json, memory.json and knowledge.json.
	DataDir string

	BrainMode     string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	DatabaseURL string

	MemoryCap        int
	MemoryContextWin int
	// Minimum user message length (exclusive) before an exchange is
	// worth remembering. Not configurable; shorter messages carry no
	// context worth replaying into future prompts.
	MemoryMinUserLen int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "chatterbox"),
		DataDir:          envOrDefault("APP_DATA_DIR", "."),
		BrainMode:        envOrDefault("BRAIN_MODE", "auto"),
		OpenAIAPIKey:     envTrimmed("OPENAI_API_KEY"),
		OpenAIModel:      envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    envTrimmed("OPENAI_BASE_URL"),
		DatabaseURL:      envTrimmed("DATABASE_URL"),
		MemoryCap:        200,
		MemoryContextWin: 5,
		MemoryMinUserLen: 6,
		ShutdownTimeout:  15 * time.Second,
		RequestTimeout:   60 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.RequestTimeout, err = durationFromEnv("APP_REQUEST_TIMEOUT", cfg.RequestTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryCap, err = intFromEnv("MEMORY_CAP", cfg.MemoryCap)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryContextWin, err = intFromEnv("MEMORY_CONTEXT_WINDOW", cfg.MemoryContextWin)
	if err != nil {
		return Config{}, err
	}

	if cfg.MemoryCap <= 0 {
		return Config{}, fmt.Errorf("MEMORY_CAP must be positive")
	}
	if cfg.MemoryContextWin <= 0 {
		return Config{}, fmt.Errorf("MEMORY_CONTEXT_WINDOW must be positive")
	}
	if cfg.RequestTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_REQUEST_TIMEOUT must be at least 1s")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.BrainMode)) {
	case "auto", "openai", "offline", "mock":
	default:
		return Config{}, fmt.Errorf("invalid BRAIN_MODE: %q (expected auto|openai|offline|mock)", cfg.BrainMode)
	}

	return cfg, nil
}

// IntentPath returns the location of the static intent table.
func (c Config) IntentPath() string {
	return filepath.Join(c.DataDir, "intent.json")
}

// MemoryPath returns the location of the exchange log file.
func (c Config) MemoryPath() string {
	return filepath.Join(c.DataDir, "memory.json")
}

// KnowledgePath returns the location of the learned-fact log file.
func (c Config) KnowledgePath() string {
	return filepath.Join(c.DataDir, "knowledge.json")
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := envTrimmed(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
