package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	raw := `{
		"default_provider": "openai",
		"providers": [{"name": "openai", "api_key": "sk-test", "model": "gpt-4o"}],
		"bot": {"username": "helper-bot", "user_id": 42}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFilename), []byte(raw), 0644))

	mgr := NewManager(dir)
	cfg, err := mgr.Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, filepath.Join(dir, DefaultDatabaseFilename), cfg.DatabasePath)
	assert.Equal(t, DefaultReplyHistoryLimit, cfg.Bot.ReplyHistoryLimit)
	assert.Equal(t, DefaultHistoryTokenBudget, cfg.Bot.HistoryTokenBudget)
	assert.Equal(t, 1, cfg.Bot.MaxToolRounds)

	assert.Equal(t, "openai", cfg.DefaultProvider)
	assert.Equal(t, "helper-bot", cfg.Bot.Username)
}

func TestManager_LoadExplicitValuesWin(t *testing.T) {
	dir := t.TempDir()
	raw := `{
		"host": "0.0.0.0",
		"port": 9999,
		"database_path": "/data/forum.db",
		"default_provider": "anthropic",
		"providers": [],
		"bot": {"username": "b", "user_id": 1, "reply_history_limit": 25, "max_tool_rounds": 3}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFilename), []byte(raw), 0644))

	cfg, err := NewManager(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "/data/forum.db", cfg.DatabasePath)
	assert.Equal(t, 25, cfg.Bot.ReplyHistoryLimit)
	assert.Equal(t, 3, cfg.Bot.MaxToolRounds)
}

func TestManager_LoadMissingFile(t *testing.T) {
	mgr := NewManager(t.TempDir())

	_, err := mgr.Load()
	assert.Error(t, err)
	assert.False(t, mgr.Exists())
}

func TestManager_GetFallsBackToDefaults(t *testing.T) {
	mgr := NewManager(t.TempDir())

	cfg := mgr.Get()
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestManager_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	cfg := &Config{
		Host:            "127.0.0.1",
		Port:            7000,
		DefaultProvider: "gemini",
		Providers: []Provider{
			{Name: "gemini", APIKey: "g-key", Model: "gemini-2.0-flash", Temperature: 0.4},
		},
		Bot: Bot{Username: "helper-bot", UserID: 42, TriggerKeywords: "support"},
	}
	require.NoError(t, mgr.Save(cfg))
	assert.True(t, mgr.Exists())

	loaded, err := NewManager(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, loaded.Port)
	assert.Equal(t, "gemini", loaded.DefaultProvider)

	p, ok := loaded.ProviderByName("gemini")
	require.True(t, ok)
	assert.Equal(t, "g-key", p.APIKey)
	assert.Equal(t, 0.4, p.Temperature)
}

func TestProviderByName(t *testing.T) {
	cfg := &Config{Providers: []Provider{{Name: "openai"}, {Name: "grok"}}}

	_, ok := cfg.ProviderByName("grok")
	assert.True(t, ok)

	_, ok = cfg.ProviderByName("mistral")
	assert.False(t, ok)
}
