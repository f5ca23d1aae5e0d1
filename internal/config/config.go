// Package config loads process configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// Auth modes.
const (
	AuthLocal    = "local"
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

// AI providers.
const (
	AINone   = "none"
	AIGemini = "gemini"
	AIOpenAI = "openai"
)

// Config holds all configuration for the insights backend.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	StoreBackend string
	SQLitePath   string
	ProjectID    string

	AuthMode  string
	JWTSecret string

	AI AIConfig

	AnomalyLookbackDays   int
	LargeTransactionFloor float64
	CurrencySymbol        string

	DefaultMonthlyIncome   float64
	DefaultMonthlyExpenses float64
	DefaultCurrentSavings  float64

	AllowedOrigins []string
}

// AIConfig selects and tunes the language-model provider.
type AIConfig struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	Timeout       time.Duration
	RatePerMinute float64
	CacheTTL      time.Duration
}

// IsLocal reports whether the process runs in local development mode.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8111")
	v.SetDefault("ENV", "local")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("STORE_BACKEND", StoreMemory)
	v.SetDefault("SQLITE_PATH", "./finpersona.db")
	v.SetDefault("GOOGLE_CLOUD_PROJECT", "")

	v.SetDefault("AUTH_MODE", AuthLocal)
	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("AI_PROVIDER", AINone)
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("AI_TIMEOUT", "15s")
	v.SetDefault("AI_RATE_PER_MINUTE", 30)
	v.SetDefault("AI_CACHE_TTL", "10m")

	v.SetDefault("ANOMALY_LOOKBACK_DAYS", 90)
	v.SetDefault("LARGE_TRANSACTION_FLOOR", 1000)
	v.SetDefault("CURRENCY_SYMBOL", "₹")

	v.SetDefault("DEFAULT_MONTHLY_INCOME", 50000)
	v.SetDefault("DEFAULT_MONTHLY_EXPENSES", 35000)
	v.SetDefault("DEFAULT_CURRENT_SAVINGS", 200000)

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:1234,http://127.0.0.1:1234")
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:     v.GetString("PORT"),
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		StoreBackend: strings.ToLower(v.GetString("STORE_BACKEND")),
		SQLitePath:   v.GetString("SQLITE_PATH"),
		ProjectID:    v.GetString("GOOGLE_CLOUD_PROJECT"),

		AuthMode:  strings.ToLower(v.GetString("AUTH_MODE")),
		JWTSecret: v.GetString("JWT_SECRET"),

		AI: AIConfig{
			Provider:      strings.ToLower(v.GetString("AI_PROVIDER")),
			GeminiAPIKey:  v.GetString("GEMINI_API_KEY"),
			GeminiModel:   v.GetString("GEMINI_MODEL"),
			OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
			OpenAIBaseURL: v.GetString("OPENAI_BASE_URL"),
			OpenAIModel:   v.GetString("OPENAI_MODEL"),
			Timeout:       v.GetDuration("AI_TIMEOUT"),
			RatePerMinute: v.GetFloat64("AI_RATE_PER_MINUTE"),
			CacheTTL:      v.GetDuration("AI_CACHE_TTL"),
		},

		AnomalyLookbackDays:   v.GetInt("ANOMALY_LOOKBACK_DAYS"),
		LargeTransactionFloor: v.GetFloat64("LARGE_TRANSACTION_FLOOR"),
		CurrencySymbol:        v.GetString("CURRENCY_SYMBOL"),

		DefaultMonthlyIncome:   v.GetFloat64("DEFAULT_MONTHLY_INCOME"),
		DefaultMonthlyExpenses: v.GetFloat64("DEFAULT_MONTHLY_EXPENSES"),
		DefaultCurrentSavings:  v.GetFloat64("DEFAULT_CURRENT_SAVINGS"),

		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and the secrets each mode requires.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreFirestore:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.AuthMode {
	case AuthLocal, AuthFirebase:
	case AuthJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	switch c.AI.Provider {
	case AINone:
	case AIGemini:
		if c.AI.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required when AI_PROVIDER=gemini")
		}
	case AIOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider)
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive, got %s", c.AI.Timeout)
	}
	if c.AnomalyLookbackDays < 1 {
		return fmt.Errorf("ANOMALY_LOOKBACK_DAYS must be at least 1, got %d", c.AnomalyLookbackDays)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
