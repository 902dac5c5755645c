package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port    string
	Env     string
	DataDir string

	// Ollama backend
	OllamaGenerateURL string
	OllamaTagsURL     string
	GenerateTimeout   time.Duration
	TagsTimeout       time.Duration
	DefaultModel      string

	// The source name routed to the local backend instead of the bridge
	LocalSource string

	// Graph limits
	MaxGraphFileBytes int64
	MaxGlobalNodes    int
	MaxGlobalEdges    int
	MaxSessionNodes   int
	MaxSessionEdges   int

	// Rebuild-from-history window
	RebuildMaxChats int
	RebuildMaxChars int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "5050"),
		Env:               getEnv("ENV", "development"),
		DataDir:           getEnv("DATA_DIR", "data"),
		OllamaGenerateURL: getEnv("OLLAMA_GENERATE_URL", "http://127.0.0.1:11434/api/generate"),
		OllamaTagsURL:     getEnv("OLLAMA_TAGS_URL", "http://127.0.0.1:11434/api/tags"),
		GenerateTimeout:   time.Duration(getEnvInt("OLLAMA_TIMEOUT_SEC", 120)) * time.Second,
		TagsTimeout:       time.Duration(getEnvInt("OLLAMA_TAGS_TIMEOUT_SEC", 5)) * time.Second,
		DefaultModel:      getEnv("DEFAULT_MODEL", "llama3.1:8b"),
		LocalSource:       getEnv("LOCAL_SOURCE", "Local (Ollama)"),
		MaxGraphFileBytes: int64(getEnvInt("MAX_GRAPH_FILE_BYTES", 8*1024*1024)),
		MaxGlobalNodes:    getEnvInt("MAX_GLOBAL_NODES", 120),
		MaxGlobalEdges:    getEnvInt("MAX_GLOBAL_EDGES", 240),
		MaxSessionNodes:   getEnvInt("MAX_SESSION_NODES", 80),
		MaxSessionEdges:   getEnvInt("MAX_SESSION_EDGES", 160),
		RebuildMaxChats:   getEnvInt("GRAPH_REBUILD_MAX_CHATS", 60),
		RebuildMaxChars:   getEnvInt("GRAPH_REBUILD_MAX_CHARS", 200000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.OllamaGenerateURL == "" {
		return fmt.Errorf("OLLAMA_GENERATE_URL is required")
	}
	if c.DefaultModel == "" {
		return fmt.Errorf("DEFAULT_MODEL is required")
	}
	if c.LocalSource == "" {
		return fmt.Errorf("LOCAL_SOURCE is required")
	}
	if c.MaxGlobalNodes < 0 || c.MaxGlobalEdges < 0 {
		return fmt.Errorf("graph caps must not be negative")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
