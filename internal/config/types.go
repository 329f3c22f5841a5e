package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	News     NewsConfig     `json:"news"`
	Storage  StorageConfig  `json:"storage"`
	Web      WebConfig      `json:"web"`
	Digest   DigestConfig   `json:"digest"`
}

type TelegramConfig struct {
	// Token may be left empty in the file and supplied via TELEGRAM_BOT_TOKEN.
	Token string `json:"token"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type NewsConfig struct {
	// APIKey may be left empty in the file and supplied via NEWS_API_KEY.
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	// Timeout is a Go duration string; the fixed per-call upstream timeout.
	Timeout string `json:"timeout"`
}

type StorageConfig struct {
	Path string `json:"path"`
	// BusyTimeout is a Go duration string (sqlite busy_timeout pragma).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

type WebConfig struct {
	Addr string `json:"addr"`
	// SessionSecret may be supplied via SESSION_SECRET.
	SessionSecret string `json:"session_secret"`
}

// DigestConfig controls the scheduled broadcast.
//
// All durations are Go duration strings (e.g. "500ms", "1s").
type DigestConfig struct {
	// At is the daily send time as "HH:MM" in Timezone.
	At       string `json:"at"`
	Timezone string `json:"timezone,omitempty"`

	ArticlesPerCategory int    `json:"articles_per_category"`
	ArticleDelay        string `json:"article_delay"`
	RecipientPause      string `json:"recipient_pause"`
}

// DurationField parses a Go duration string from config, falling back to def
// when the field is empty. The field name is only used for error context.
func DurationField(name, s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", name, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %q", name, s)
	}
	return d, nil
}
