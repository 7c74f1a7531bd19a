package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Commit policies for the breakout dedup key.
const (
	CommitFireOnce      = "fire_once"
	CommitAfterDispatch = "after_dispatch"
)

// Config holds all application configuration.
type Config struct {
	Symbols []string `yaml:"symbols"`
	ORB     struct {
		Minutes             int      `yaml:"minutes"`
		ExecutionTimeframes []string `yaml:"execution_timeframes"`
	} `yaml:"orb"`
	Market struct {
		Timezone       string `yaml:"timezone"`
		Open           string `yaml:"open"`
		Close          string `yaml:"close"`
		PremarketStart string `yaml:"premarket_start"`
		AfterhoursEnd  string `yaml:"afterhours_end"`
	} `yaml:"market"`
	Schedule struct {
		TickIntervalSeconds      int    `yaml:"tick_interval_seconds"`
		IdleIntervalSeconds      int    `yaml:"idle_interval_seconds"`
		StatusSnapshotMinutes    int    `yaml:"status_snapshot_minutes"`
		PremarketReminderMinutes int    `yaml:"premarket_reminder_minutes"`
		RecapCron                string `yaml:"recap_cron"`
	} `yaml:"schedule"`
	Alerts struct {
		PremarketReminder bool   `yaml:"premarket_reminder"`
		MarketOpenNotice  bool   `yaml:"market_open_notice"`
		SignalCommit      string `yaml:"signal_commit"`
	} `yaml:"alerts"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Discord struct {
		WebhookURL string `yaml:"webhook_url"`
		RoleID     string `yaml:"role_id"`
	} `yaml:"discord"`
	Email struct {
		SMTPServer string `yaml:"smtp_server"`
		SMTPPort   int    `yaml:"smtp_port"`
		From       string `yaml:"from"`
		Password   string `yaml:"password"`
		To         string `yaml:"to"`
	} `yaml:"email"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// Booleans default true; an explicit `false` in the file still wins.
	cfg.Alerts.PremarketReminder = true
	cfg.Alerts.MarketOpenNotice = true

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
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitList(v)
	}
	if v := os.Getenv("ORB_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ORB.Minutes = n
		}
	}
	if v := os.Getenv("EXECUTION_TIMEFRAMES"); v != "" {
		cfg.ORB.ExecutionTimeframes = splitList(v)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Discord.WebhookURL = v
	}
	if v := os.Getenv("DISCORD_ROLE_ID"); v != "" {
		cfg.Discord.RoleID = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		cfg.Email.SMTPServer = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Email.SMTPPort = n
		}
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.Email.From = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.Password = v
	}
	if v := os.Getenv("SMTP_TO"); v != "" {
		cfg.Email.To = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"SPY", "QQQ"}
	}
	if cfg.ORB.Minutes == 0 {
		cfg.ORB.Minutes = 15
	}
	if len(cfg.ORB.ExecutionTimeframes) == 0 {
		cfg.ORB.ExecutionTimeframes = []string{"1m", "2m", "5m"}
	}
	if cfg.Market.Timezone == "" {
		cfg.Market.Timezone = "America/New_York"
	}
	if cfg.Market.Open == "" {
		cfg.Market.Open = "09:30"
	}
	if cfg.Market.Close == "" {
		cfg.Market.Close = "16:00"
	}
	if cfg.Market.PremarketStart == "" {
		cfg.Market.PremarketStart = "04:00"
	}
	if cfg.Market.AfterhoursEnd == "" {
		cfg.Market.AfterhoursEnd = "20:00"
	}
	if cfg.Schedule.TickIntervalSeconds == 0 {
		cfg.Schedule.TickIntervalSeconds = 10
	}
	if cfg.Schedule.IdleIntervalSeconds == 0 {
		cfg.Schedule.IdleIntervalSeconds = 300
	}
	if cfg.Schedule.StatusSnapshotMinutes == 0 {
		cfg.Schedule.StatusSnapshotMinutes = 5
	}
	if cfg.Schedule.PremarketReminderMinutes == 0 {
		cfg.Schedule.PremarketReminderMinutes = 30
	}
	if cfg.Schedule.RecapCron == "" {
		cfg.Schedule.RecapCron = "0 10 16 * * 1-5"
	}
	if cfg.Alerts.SignalCommit == "" {
		cfg.Alerts.SignalCommit = CommitFireOnce
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/orb_watch.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	if c.ORB.Minutes <= 0 {
		return fmt.Errorf("orb.minutes must be positive")
	}
	if len(c.ORB.ExecutionTimeframes) == 0 {
		return fmt.Errorf("orb.execution_timeframes must not be empty")
	}
	if c.Schedule.TickIntervalSeconds <= 0 {
		return fmt.Errorf("schedule.tick_interval_seconds must be positive")
	}
	if c.Schedule.StatusSnapshotMinutes <= 0 {
		return fmt.Errorf("schedule.status_snapshot_minutes must be positive")
	}
	if c.Alerts.SignalCommit != CommitFireOnce && c.Alerts.SignalCommit != CommitAfterDispatch {
		return fmt.Errorf("alerts.signal_commit must be %q or %q", CommitFireOnce, CommitAfterDispatch)
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone: %w", err)
	}
	for _, field := range []struct{ name, value string }{
		{"market.open", c.Market.Open},
		{"market.close", c.Market.Close},
		{"market.premarket_start", c.Market.PremarketStart},
		{"market.afterhours_end", c.Market.AfterhoursEnd},
	} {
		if _, err := time.Parse("15:04", field.value); err != nil {
			return fmt.Errorf("%s: expected HH:MM, got %q", field.name, field.value)
		}
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
