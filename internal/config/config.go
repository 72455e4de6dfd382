package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Source struct {
		BaseURL       string   `yaml:"base_url"`
		AlternateURLs []string `yaml:"alternate_urls"`
		UserAgent     string   `yaml:"user_agent"`
	} `yaml:"source"`
	Harvest struct {
		Years           int      `yaml:"years"`
		PageLimit       int      `yaml:"page_limit"`
		PolitenessDelay Duration `yaml:"politeness_delay"`
		Timeout         Duration `yaml:"timeout"`
	} `yaml:"harvest"`
	Fallback struct {
		Timeout Duration `yaml:"timeout"`
	} `yaml:"fallback"`
	Output struct {
		Directory string `yaml:"directory"`
	} `yaml:"output"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	StateFile string `yaml:"state_file"`
	Schedule  struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults cover every field.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("NEPSE_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("NEPSE_USER_AGENT"); v != "" {
		cfg.Source.UserAgent = v
	}
	if v := os.Getenv("NEPSE_YEARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Harvest.Years = n
		}
	}
	if v := os.Getenv("NEPSE_OUTPUT_DIR"); v != "" {
		cfg.Output.Directory = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_HARVEST"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Source.BaseURL == "" {
		cfg.Source.BaseURL = "https://merolagani.com/Indices.aspx"
	}
	if len(cfg.Source.AlternateURLs) == 0 {
		cfg.Source.AlternateURLs = []string{
			"https://www.sharesansar.com/today-share-price",
			"https://nepsealpha.com/trading/1",
		}
	}
	if cfg.Source.UserAgent == "" {
		cfg.Source.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if cfg.Harvest.Years <= 0 {
		cfg.Harvest.Years = 2
	}
	if cfg.Harvest.PageLimit <= 0 {
		cfg.Harvest.PageLimit = 30
	}
	if cfg.Harvest.PolitenessDelay.IsZero() {
		cfg.Harvest.PolitenessDelay = DurationFrom(1500 * time.Millisecond)
	}
	if cfg.Harvest.Timeout.IsZero() {
		cfg.Harvest.Timeout = DurationFrom(30 * time.Second)
	}
	if cfg.Fallback.Timeout.IsZero() {
		cfg.Fallback.Timeout = DurationFrom(20 * time.Second)
	}
	if cfg.StateFile == "" {
		cfg.StateFile = "data/harvest_state.json"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and sane.
func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if c.Harvest.Years <= 0 {
		return fmt.Errorf("harvest.years must be positive")
	}
	if c.Harvest.PageLimit <= 0 {
		return fmt.Errorf("harvest.page_limit must be positive")
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}
