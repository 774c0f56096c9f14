package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jwalitptl/content-notifier/internal/email"
	"github.com/jwalitptl/content-notifier/internal/model"
	"github.com/jwalitptl/content-notifier/internal/repository/postgres"
	pkgerrors "github.com/jwalitptl/content-notifier/pkg/errors"
)

// Documented defaults for missing task parameters.
const (
	DefaultThreshold     = 2
	DefaultThresholdUnit = model.UnitYears
	DefaultSecondDelay   = 2
	DefaultSecondUnit    = model.UnitMonths
	DefaultLimitPerRun   = 20
	DefaultWhoPolicy     = model.NotifyCreated
	DefaultLanguage      = model.LanguageUser
	DefaultUserCacheTTL  = 15 * time.Minute
	DefaultTaskLogFile   = "notifier-task.log"
)

type SiteConfig struct {
	Name         string `mapstructure:"name"`
	BaseURL      string `mapstructure:"base_url"`
	AdminBaseURL string `mapstructure:"admin_base_url"`
	Language     string `mapstructure:"language"`
}

type TaskConfig struct {
	Schedule string `mapstructure:"schedule"`

	Threshold     int    `mapstructure:"threshold"`
	ThresholdUnit string `mapstructure:"threshold_unit"`

	SecondNotification bool   `mapstructure:"second_notification"`
	SecondDelay        int    `mapstructure:"second_delay"`
	SecondDelayUnit    string `mapstructure:"second_delay_unit"`

	Categories        []int64 `mapstructure:"categories"`
	CategoriesExclude bool    `mapstructure:"categories_exclude"`

	LimitPerRun int `mapstructure:"limit_per_run"`

	// Emails is a comma-separated list of explicit recipient addresses.
	Emails      string   `mapstructure:"emails"`
	AdminEmails []string `mapstructure:"admin_emails"`

	WhoPolicy string `mapstructure:"who_policy"`

	// LanguageOverride is "user", a concrete language tag, or "site" for the
	// site default; missing means "user".
	LanguageOverride string `mapstructure:"language_override"`

	LogFile      string        `mapstructure:"log_file"`
	UserCacheTTL time.Duration `mapstructure:"user_cache_ttl"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Database postgres.Config  `mapstructure:"database"`
	SMTP     email.SMTPConfig `mapstructure:"smtp"`
	Site     SiteConfig       `mapstructure:"site"`
	Task     TaskConfig       `mapstructure:"task"`
	Metrics  MetricsConfig    `mapstructure:"metrics"`
	Log      LogConfig        `mapstructure:"log"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Normalize fills documented defaults and validates enumerated fields,
// producing the fully-populated run configuration the core works with.
// Missing parameters become defaults; invalid values are errors.
func (t TaskConfig) Normalize() (model.RunConfig, error) {
	cfg := model.RunConfig{
		Threshold:         t.Threshold,
		ThresholdUnit:     model.AgeUnit(t.ThresholdUnit),
		SecondEnabled:     t.SecondNotification,
		SecondDelay:       t.SecondDelay,
		SecondDelayUnit:   model.AgeUnit(t.SecondDelayUnit),
		Categories:        t.Categories,
		CategoriesInclude: !t.CategoriesExclude,
		LimitPerRun:       t.LimitPerRun,
		ExplicitEmails:    splitEmails(t.Emails),
		AdminEmails:       t.AdminEmails,
		WhoPolicy:         model.WhoPolicy(t.WhoPolicy),
		LanguageOverride:  t.LanguageOverride,
	}

	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.ThresholdUnit == "" {
		cfg.ThresholdUnit = DefaultThresholdUnit
	}
	if cfg.SecondDelay <= 0 {
		cfg.SecondDelay = DefaultSecondDelay
	}
	if cfg.SecondDelayUnit == "" {
		cfg.SecondDelayUnit = DefaultSecondUnit
	}
	if cfg.LimitPerRun <= 0 {
		cfg.LimitPerRun = DefaultLimitPerRun
	}
	if cfg.WhoPolicy == "" {
		cfg.WhoPolicy = DefaultWhoPolicy
	}
	switch cfg.LanguageOverride {
	case "":
		cfg.LanguageOverride = DefaultLanguage
	case "site":
		cfg.LanguageOverride = ""
	}

	if !cfg.ThresholdUnit.Valid() {
		return model.RunConfig{}, pkgerrors.BadRequest(fmt.Sprintf("invalid threshold unit %q", t.ThresholdUnit), nil)
	}
	if !cfg.SecondDelayUnit.Valid() {
		return model.RunConfig{}, pkgerrors.BadRequest(fmt.Sprintf("invalid second delay unit %q", t.SecondDelayUnit), nil)
	}
	switch cfg.WhoPolicy {
	case model.NotifyCreated, model.NotifyModified, model.NotifyNone:
	default:
		return model.RunConfig{}, pkgerrors.BadRequest(fmt.Sprintf("invalid who policy %q", t.WhoPolicy), nil)
	}

	return cfg, nil
}

// TaskLogFile returns the configured task log path or its default.
func (t TaskConfig) TaskLogFile() string {
	if t.LogFile == "" {
		return DefaultTaskLogFile
	}
	return t.LogFile
}

// CacheTTL returns the user directory cache lifetime or its default.
func (t TaskConfig) CacheTTL() time.Duration {
	if t.UserCacheTTL <= 0 {
		return DefaultUserCacheTTL
	}
	return t.UserCacheTTL
}

func splitEmails(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	var emails []string
	for _, entry := range strings.Split(list, ",") {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}
