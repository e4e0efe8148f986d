package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Placeholder keys shipped in example env files. A provider configured with
// one of these is treated as not configured at all.
var placeholderKeys = map[string]struct{}{
	"your_groq_api_key_here":          {},
	"gsk_placeholder_key_for_testing": {},
	"your_openai_api_key_here":        {},
}

// Config holds the application configuration.
type Config struct {
	Server         ServerConfig   `mapstructure:"server"`
	Primary        ProviderConfig `mapstructure:"primary"`
	Secondary      ProviderConfig `mapstructure:"secondary"`
	AllowedOrigins []string       `mapstructure:"allowed_origins"`
	Debug          bool           `mapstructure:"debug"`
	HistoryDBPath  string         `mapstructure:"history_db_path"`
}

// ProviderConfig holds one completion-provider tier.
type ProviderConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Configured reports whether this tier has a usable API key. Absence of a
// key silently disables the tier rather than failing startup.
func (p ProviderConfig) Configured() bool {
	if p.APIKey == "" {
		return false
	}
	_, placeholder := placeholderKeys[p.APIKey]
	return !placeholder
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Load reads configuration from config.yaml (optional, path overridable via
// CONFIG_PATH) with environment variables taking precedence.
func Load() (*Config, error) {
	v := viper.New()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5001")
	v.SetDefault("primary.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("primary.model", "meta-llama/llama-4-maverick-17b-128e-instruct")
	v.SetDefault("primary.timeout_seconds", 30)
	v.SetDefault("secondary.model", "gpt-4o-mini")
	v.SetDefault("secondary.timeout_seconds", 30)
	v.SetDefault("allowed_origins", []string{"http://localhost:8001"})
	v.SetDefault("debug", true)

	// Environment variables the service has always honored.
	for key, env := range map[string]string{
		"primary.api_key":   "GROQ_API_KEY",
		"secondary.api_key": "OPENAI_API_KEY",
		"server.port":       "PORT",
		"debug":             "DEBUG",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrap(err, "bind env")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}

	return &cfg, nil
}
