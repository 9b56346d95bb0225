package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "semi-automatic", cfg.Mode)
	assert.Equal(t, 10, cfg.DailyApplicationLimit)
	assert.Equal(t, "data/applied_jobs.csv", cfg.LedgerPath)
	assert.Equal(t, "browser_profile", cfg.ProfileDir)
	assert.Equal(t, 50, cfg.Behavior.TypingDelayMS.Min)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
mode: automatic
daily_application_limit: 3
profile:
  role: Backend Developer
  level: junior
  locations: ["Brazil"]
  include_keywords: ["golang", "backend"]
  exclude_keywords: ["senior"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "automatic", cfg.Mode)
	assert.Equal(t, 3, cfg.DailyApplicationLimit)
	assert.Equal(t, []string{"golang", "backend"}, cfg.Profile.IncludeKeywords)
	assert.Equal(t, []string{"senior"}, cfg.Profile.ExcludeKeywords)
}

func TestLoad_InvalidMode(t *testing.T) {
	path := writeConfig(t, "mode: yolo\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	path := writeConfig(t, "telegram_token: token-from-yaml\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "token-from-env", cfg.TelegramToken)
	assert.Equal(t, int64(42), cfg.TelegramChatID)
}
