package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration read from the environment
type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	StaticDir string

	MongoURI string
	MongoDB  string
	RedisURI string

	JWTSecret string

	// GuidanceDebounce is how long answer edits must settle before guidance is requested
	GuidanceDebounce time.Duration

	CORS     CORSConfig
	Checkout CheckoutConfig
	AI       *AIConfig
}

// CORSConfig mirrors the CORS_ALLOWED_* variables
type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// CheckoutConfig holds the payment provider settings; an empty SecretKey disables checkout
type CheckoutConfig struct {
	SecretKey  string `json:"-"`
	PriceID    string
	SuccessURL string
	CancelURL  string
}

// Enabled reports whether a payment secret is configured
func (c CheckoutConfig) Enabled() bool {
	return c.SecretKey != ""
}

// Load reads .env (when present) and then the process environment
func Load() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8080"),
		AppEnv:    getEnv("APP_ENV", "production"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		StaticDir: os.Getenv("STATIC_DIR"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "formassist"),
		RedisURI: getEnv("REDIS_URI", "localhost:6379"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),

		GuidanceDebounce: getDurationMS("GUIDANCE_DEBOUNCE", 1200),

		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, PATCH, DELETE, OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization, Accept-Language"),
		},
		Checkout: CheckoutConfig{
			SecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
			PriceID:    os.Getenv("STRIPE_PRICE_ID"),
			SuccessURL: getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:8080/?checkout=success"),
			CancelURL:  getEnv("CHECKOUT_CANCEL_URL", "http://localhost:8080/?checkout=cancel"),
		},
		AI: DefaultAIConfig(),
	}
}

// IsDevelopment reports whether APP_ENV selects development logging
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development") || strings.EqualFold(c.AppEnv, "dev")
}

// RedisAddr strips a redis:// scheme from RedisURI
func (c *Config) RedisAddr() string {
	return strings.TrimPrefix(c.RedisURI, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDurationMS accepts either a Go duration ("1.5s") or plain milliseconds
func getDurationMS(key string, defaultMS int) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return time.Duration(defaultMS) * time.Millisecond
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return time.Duration(defaultMS) * time.Millisecond
}
