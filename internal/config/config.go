package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
)

const (
	DefaultPort           = 6970
	DefaultConfigFilename = "config.json"
	DefaultHost           = "127.0.0.1"

	DefaultReplyHistoryLimit  = 10
	DefaultHistoryTokenBudget = 4000
	DefaultDatabaseFilename   = "forum.db"
)

// Provider holds the stored settings for one LLM vendor.
type Provider struct {
	Name        string  `json:"name"`
	APIBase     string  `json:"api_base_url,omitempty"`
	APIKey      string  `json:"api_key"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Bot holds the forum-side behavior settings.
type Bot struct {
	Username           string  `json:"username"`
	UserID             int64   `json:"user_id"`
	TriggerKeywords    string  `json:"trigger_keywords,omitempty"`
	AllowedForums      []int64 `json:"allowed_forums,omitempty"`
	ReplyHistoryLimit  int     `json:"reply_history_limit,omitempty"`
	HistoryTokenBudget int     `json:"history_token_budget,omitempty"`
	SystemPrompt       string  `json:"system_prompt,omitempty"`
	RemoteSearchURL    string  `json:"remote_search_url,omitempty"`
	MaxToolRounds      int     `json:"max_tool_rounds,omitempty"`
}

type Config struct {
	Host            string     `json:"host,omitempty"`
	Port            int        `json:"port,omitempty"`
	APIKey          string     `json:"api_key,omitempty"`
	DatabasePath    string     `json:"database_path,omitempty"`
	DefaultProvider string     `json:"default_provider"`
	Providers       []Provider `json:"providers"`
	Bot             Bot        `json:"bot"`
}

// ProviderByName returns the stored settings for a provider, if any.
func (c *Config) ProviderByName(name string) (Provider, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

type Manager struct {
	configPath  string
	configValue atomic.Value
}

func NewManager(baseDir string) *Manager {
	return &Manager{
		configPath: filepath.Join(baseDir, DefaultConfigFilename),
	}
}

func (m *Manager) Load() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg, filepath.Dir(m.configPath))

	m.configValue.Store(&cfg)
	return &cfg, nil
}

func (m *Manager) Get() *Config {
	if v := m.configValue.Load(); v != nil {
		return v.(*Config)
	}

	cfg, err := m.Load()
	if err != nil {
		// Return a config with defaults if loading fails
		cfg = &Config{}
		applyDefaults(cfg, filepath.Dir(m.configPath))
		return cfg
	}
	return cfg
}

func (m *Manager) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	m.configValue.Store(cfg)
	return nil
}

func (m *Manager) GetPath() string {
	return m.configPath
}

func (m *Manager) Exists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

func applyDefaults(cfg *Config, baseDir string) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(baseDir, DefaultDatabaseFilename)
	}
	if cfg.Bot.ReplyHistoryLimit == 0 {
		cfg.Bot.ReplyHistoryLimit = DefaultReplyHistoryLimit
	}
	if cfg.Bot.HistoryTokenBudget == 0 {
		cfg.Bot.HistoryTokenBudget = DefaultHistoryTokenBudget
	}
	if cfg.Bot.MaxToolRounds == 0 {
		cfg.Bot.MaxToolRounds = 1
	}
}
