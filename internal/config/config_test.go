package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8111", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, AuthLocal, cfg.AuthMode)
	assert.Equal(t, AINone, cfg.AI.Provider)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.AI.CacheTTL)
	assert.Equal(t, 90, cfg.AnomalyLookbackDays)
	assert.Equal(t, 1000.0, cfg.LargeTransactionFloor)
	assert.Equal(t, "₹", cfg.CurrencySymbol)
	assert.Equal(t, 50000.0, cfg.DefaultMonthlyIncome)
	assert.Equal(t, 35000.0, cfg.DefaultMonthlyExpenses)
	assert.Equal(t, 200000.0, cfg.DefaultCurrentSavings)
	assert.Equal(t, []string{"http://localhost:1234", "http://127.0.0.1:1234"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsLocal())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AI_TIMEOUT", "3s")
	t.Setenv("ANOMALY_LOOKBACK_DAYS", "30")
	t.Setenv("CURRENCY_SYMBOL", "$")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.False(t, cfg.IsLocal())
	assert.Equal(t, StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, AuthJWT, cfg.AuthMode)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, AIOpenAI, cfg.AI.Provider)
	assert.Equal(t, "sk-test", cfg.AI.OpenAIAPIKey)
	assert.Equal(t, 3*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 30, cfg.AnomalyLookbackDays)
	assert.Equal(t, "$", cfg.CurrencySymbol)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown store", map[string]string{"STORE_BACKEND": "postgres"}, "unknown STORE_BACKEND"},
		{"unknown auth", map[string]string{"AUTH_MODE": "basic"}, "unknown AUTH_MODE"},
		{"jwt without secret", map[string]string{"AUTH_MODE": "jwt"}, "JWT_SECRET is required"},
		{"unknown provider", map[string]string{"AI_PROVIDER": "claude"}, "unknown AI_PROVIDER"},
		{"gemini without key", map[string]string{"AI_PROVIDER": "gemini"}, "GEMINI_API_KEY is required"},
		{"openai without key", map[string]string{"AI_PROVIDER": "openai"}, "OPENAI_API_KEY is required"},
		{"zero timeout", map[string]string{"AI_TIMEOUT": "0s"}, "AI_TIMEOUT must be positive"},
		{"zero lookback", map[string]string{"ANOMALY_LOOKBACK_DAYS": "0"}, "ANOMALY_LOOKBACK_DAYS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
