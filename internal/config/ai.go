package config

import (
	"os"
	"strconv"
	"time"
)

// Transport values for GEMINI_TRANSPORT
const (
	TransportHTTP = "http"
	TransportSDK  = "sdk"
)

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// Guidance is for per-question guidance while the user types (needs to be fast)
	Guidance string `json:"guidance"`

	// Review is for the whole-form review (quality over speed)
	Review string `json:"review"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
	Transport string       `json:"transport"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
		Models: GeminiModels{
			Guidance: getEnv("GEMINI_MODEL_GUIDANCE", "gemini-2.0-flash"),
			Review:   getEnv("GEMINI_MODEL_REVIEW", "gemini-2.0-flash"),
		},
		TimeoutMS: getEnvInt("GEMINI_TIMEOUT_MS", 20000),
		Transport: getEnv("GEMINI_TRANSPORT", TransportHTTP),
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// Timeout returns TimeoutMS as a duration
func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultVal
}
