// Package config provides application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Backend string

const (
	BackendGeminiAPI Backend = "gemini"
	BackendVertex    Backend = "vertex"
)

type Config struct {
	Port     string
	LogLevel string

	// LLM backend selection. Gemini API needs an API key, Vertex needs a
	// GCP project and location.
	Backend      Backend
	GeminiAPIKey string
	GCPProjectID string
	GCPLocation  string

	ChatModel string
	TTSModel  string

	Voice       string // synthesis voice for partner lines
	STTLanguage string // transcription language tag

	AllowedOrigin string // CORS / websocket origin, "*" in dev

	// UseMockLLM swaps every external collaborator for scripted mocks,
	// useful for front-end development without credentials.
	UseMockLLM bool
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

// Load reads the .env file if present, then all env vars, and validates
// the combination.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var backend Backend
	switch getEnv("SOGAE_BACKEND", "gemini") {
	case "vertex":
		backend = BackendVertex
	default:
		backend = BackendGeminiAPI
	}

	cfg := &Config{
		Port:     getEnv("SOGAE_PORT", "8080"),
		LogLevel: getEnv("SOGAE_LOG_LEVEL", "info"),

		Backend:      backend,
		GeminiAPIKey: getEnv("SOGAE_GEMINI_API_KEY", ""),
		GCPProjectID: getEnv("SOGAE_GCP_PROJECT", ""),
		GCPLocation:  getEnv("SOGAE_GCP_LOCATION", "us-central1"),

		ChatModel: getEnv("SOGAE_CHAT_MODEL", "gemini-2.5-flash"),
		TTSModel:  getEnv("SOGAE_TTS_MODEL", "gemini-2.5-flash-preview-tts"),

		Voice:       getEnv("SOGAE_VOICE", "Kore"),
		STTLanguage: getEnv("SOGAE_STT_LANGUAGE", "ko-KR"),

		AllowedOrigin: getEnv("SOGAE_ALLOWED_ORIGIN", "*"),

		UseMockLLM: getBoolEnv("SOGAE_USE_MOCK_LLM", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("SOGAE_PORT cannot be empty")
	}
	if c.UseMockLLM {
		return nil
	}
	switch c.Backend {
	case BackendGeminiAPI:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("SOGAE_GEMINI_API_KEY must be set for the gemini backend")
		}
	case BackendVertex:
		if c.GCPProjectID == "" {
			return fmt.Errorf("SOGAE_GCP_PROJECT must be set for the vertex backend")
		}
	}
	return nil
}
