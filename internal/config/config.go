package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ykvlv/pr-reminder-bot/internal/domain"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"PR_BOT_TOKEN" required:"true"`
	GroupID  int64  `envconfig:"GROUP_ID" required:"true"`
	TopicID  int    `envconfig:"TOPIC_ID" required:"true"`
	Timezone string `envconfig:"TIMEZONE" default:"Asia/Kolkata"`
	// Local HH:MM of the daily check.
	CheckAt string `envconfig:"CHECK_AT" default:"00:00"`
	// Empty means "@<bot username>".
	MentionTrigger string `envconfig:"MENTION_TRIGGER"`
	GitHubVerify   bool   `envconfig:"GITHUB_VERIFY" default:"false"`
	GitHubToken    string `envconfig:"GITHUB_TOKEN"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	LogFile        string `envconfig:"LOG_FILE"`
	HTTPAddr       string `envconfig:"HTTP_ADDR" default:":8080"`

	// Derived by Load.
	Location      *time.Location `ignored:"true"`
	CheckAtMinute int            `ignored:"true"`
}

// Load reads environment variables into Config and validates them.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BotToken == "" {
		return errors.New("PR_BOT_TOKEN must be set")
	}
	if c.GroupID == 0 {
		return errors.New("GROUP_ID must be non-zero")
	}
	if c.TopicID == 0 {
		return errors.New("TOPIC_ID must be non-zero")
	}
	loc, err := domain.ValidateTZ(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	c.Location = loc
	m, err := domain.ParseClock(c.CheckAt)
	if err != nil {
		return fmt.Errorf("CHECK_AT: %w", err)
	}
	c.CheckAtMinute = m
	return nil
}
