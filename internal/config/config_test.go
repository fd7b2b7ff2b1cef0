package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-prompt-studio/internal/prompt"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "API_KEY", "GEMINI_BACKEND", "TELEGRAM_BOT_TOKEN",
		"HTTP_TIMEOUT_SECONDS", "MAX_CONCURRENT", "FORM_DEFAULTS_FILE",
		"GENERATE_RATE_PER_MINUTE", "SESSION_TTL_MINUTES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingCredential(t *testing.T) {
	clearEnv(t)

	_, err := Load()

	var startupErr *StartupError
	require.ErrorAs(t, err, &startupErr)
	assert.Equal(t, "GEMINI_API_KEY", startupErr.Missing)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", " secret ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.Equal(t, BackendREST, cfg.GeminiBackend)
	assert.Equal(t, 180*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 4, cfg.MaxConcurrent)
	assert.Equal(t, DefaultFormDefaults(), cfg.FormDefaults)
	assert.Error(t, cfg.RequireTelegram())
}

func TestLoad_APIKeyAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.GeminiAPIKey)
}

func TestLoad_ClampsAndBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_BACKEND", "SDK")
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "-5")
	t.Setenv("GENERATE_RATE_PER_MINUTE", "nope")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSDK, cfg.GeminiBackend)
	assert.Equal(t, 1, cfg.MaxConcurrent)
	assert.Equal(t, 180*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10, cfg.GenerateRatePerMinute)
	assert.NoError(t, cfg.RequireTelegram())
}

func TestLoad_UnknownBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("GEMINI_BACKEND", "grpc")

	_, err := Load()
	var startupErr *StartupError
	assert.ErrorAs(t, err, &startupErr)
}

func TestLoadFormDefaults(t *testing.T) {
	t.Run("file overrides built-ins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "form.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scene_count: \"8\"\naspect_ratio: portrait\nniche: True crime\n"), 0o600))

		got, err := LoadFormDefaults(path)
		require.NoError(t, err)

		assert.Equal(t, "8", got.SceneCount)
		assert.Equal(t, prompt.AspectPortrait, got.AspectRatio)
		assert.Equal(t, "True crime", got.Niche)
		assert.Equal(t, "cinematic, realistic, 4K, dramatic light", got.StyleKeywords)
	})

	t.Run("invalid ratio", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "form.yaml")
		require.NoError(t, os.WriteFile(path, []byte("aspect_ratio: \"21:9\"\n"), 0o600))

		_, err := LoadFormDefaults(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFormDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
