package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 120*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 90*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.LLM.RetryBackoff)
	assert.Equal(t, int64(1<<20), cfg.Extract.MaxUploadSize)
	assert.Equal(t, 2000, cfg.Extract.TagTextLimit)
	assert.False(t, cfg.Extract.RepairJSON)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TagTTL)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("MAX_UPLOAD_SIZE", "5MiB")
	t.Setenv("EXTRACT_REPAIR_JSON", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOCATION_CACHE_TTL", "10m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LLM_MAX_RETRIES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, int64(5<<20), cfg.Extract.MaxUploadSize)
	assert.True(t, cfg.Extract.RepairJSON)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Redis.LocationTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing openai key", map[string]string{}, "OPENAI_API_KEY is required"},
		{"missing anthropic key", map[string]string{"LLM_PROVIDER": "anthropic"}, "ANTHROPIC_API_KEY is required"},
		{"unknown provider", map[string]string{"LLM_PROVIDER": "gemini"}, "unsupported LLM_PROVIDER"},
		{"bad size", map[string]string{"OPENAI_API_KEY": "k", "MAX_UPLOAD_SIZE": "lots"}, "invalid MAX_UPLOAD_SIZE"},
		{"bad log format", map[string]string{"OPENAI_API_KEY": "k", "LOG_FORMAT": "xml"}, "unsupported LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			t.Setenv("ANTHROPIC_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
