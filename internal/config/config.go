// Package config provides YAML-based configuration loading for Textline.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Textline configuration, loaded from textline.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Identity IdentityConfig `yaml:"identity"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Limits   LimitsConfig   `yaml:"limits"`
	Database DatabaseConfig `yaml:"database"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds webhook server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
	// PublicURL is the externally visible base URL of this service, needed to
	// validate Twilio request signatures. Validation is skipped when
	// TwilioAuthToken is empty.
	PublicURL       string `yaml:"public_url"`
	TwilioAuthToken string `yaml:"twilio_auth_token"`
}

// AdminConfig holds operator API settings. TokenHash is the hex SHA-256 of
// the bearer token (generate with `tl token`); the plaintext token is never
// stored.
type AdminConfig struct {
	TokenHash string `yaml:"token_hash"`
}

// IdentityConfig holds the phone-hashing salt.
type IdentityConfig struct {
	Salt string `yaml:"salt"`
}

// OpenAIConfig holds completion/moderation service settings.
type OpenAIConfig struct {
	APIKey           string  `yaml:"api_key"`
	BaseURL          string  `yaml:"base_url"`
	Model            string  `yaml:"model"`
	MaxTokens        int     `yaml:"max_tokens"`
	Temperature      float64 `yaml:"temperature"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
	TimeoutSec       int     `yaml:"timeout_sec"`
}

// LimitsConfig holds admission and formatting limits.
type LimitsConfig struct {
	RatePerMinute         int     `yaml:"rate_per_minute"`
	CacheCapacity         int     `yaml:"cache_capacity"`
	SMSMaxLength          int     `yaml:"sms_max_length"`
	ComplianceProbability float64 `yaml:"compliance_probability"`
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite or mysql
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AlertsConfig holds operator alert destinations. All are optional.
type AlertsConfig struct {
	SlackWebhookURL  string `yaml:"slack_webhook_url"`
	DiscordToken     string `yaml:"discord_token"`
	DiscordChannelID string `yaml:"discord_channel_id"`
}

// MetricsConfig holds interaction-log digest and retention settings.
type MetricsConfig struct {
	DigestCron    string `yaml:"digest_cron"` // 5-field cron, empty disables
	RetentionDays int    `yaml:"retention_days"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 150
	}
	if c.OpenAI.Temperature == 0 {
		c.OpenAI.Temperature = 0.7
	}
	if c.OpenAI.FrequencyPenalty == 0 {
		c.OpenAI.FrequencyPenalty = 0.2
	}
	if c.OpenAI.TimeoutSec == 0 {
		c.OpenAI.TimeoutSec = 15
	}
	if c.Limits.RatePerMinute == 0 {
		c.Limits.RatePerMinute = 10
	}
	if c.Limits.CacheCapacity == 0 {
		c.Limits.CacheCapacity = 1000
	}
	if c.Limits.SMSMaxLength == 0 {
		c.Limits.SMSMaxLength = 150
	}
	if c.Limits.ComplianceProbability == 0 {
		c.Limits.ComplianceProbability = 0.1
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "textline.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
	}
	if c.Metrics.RetentionDays == 0 {
		c.Metrics.RetentionDays = 30
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Identity.Salt == "" {
		errs = append(errs, "identity.salt is required")
	}
	if c.Admin.TokenHash == "" {
		errs = append(errs, "admin.token_hash is required (generate with `tl token`)")
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "mysql" {
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite or mysql", c.Database.Driver))
	}
	if c.Database.Driver == "mysql" && c.Database.Name == "" {
		errs = append(errs, "database.name is required for mysql")
	}
	if c.Limits.ComplianceProbability < 0 || c.Limits.ComplianceProbability > 1 {
		errs = append(errs, "limits.compliance_probability must be within [0,1]")
	}
	if (c.Alerts.DiscordToken == "") != (c.Alerts.DiscordChannelID == "") {
		errs = append(errs, "alerts.discord_token and alerts.discord_channel_id must be set together")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
