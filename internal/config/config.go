// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Query      QueryConfig      `yaml:"query" mapstructure:"query"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SalesforceConfig holds OAuth refresh-token credentials plus the
// username/password fallback.
type SalesforceConfig struct {
	ClientID      string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret  string  `yaml:"client_secret" mapstructure:"client_secret"`
	RefreshToken  string  `yaml:"refresh_token" mapstructure:"refresh_token"`
	InstanceURL   string  `yaml:"instance_url" mapstructure:"instance_url"`
	Domain        string  `yaml:"domain" mapstructure:"domain"`
	Username      string  `yaml:"username" mapstructure:"username"`
	Password      string  `yaml:"password" mapstructure:"password"`
	SecurityToken string  `yaml:"security_token" mapstructure:"security_token"`
	RateRPS       float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// CacheConfig configures the SOQL result cache.
type CacheConfig struct {
	TTLSecs  int `yaml:"ttl_secs" mapstructure:"ttl_secs"`
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
}

// QueryConfig configures query defaults.
type QueryConfig struct {
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
}

// StoreConfig configures the optional query audit log.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds optional insight-enrichment settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the HTTP tool server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FUNDRAISING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("salesforce.domain", "login")
	v.SetDefault("salesforce.rate_rps", 5)
	v.SetDefault("cache.ttl_secs", 60)
	v.SetDefault("cache.capacity", 128)
	v.SetDefault("query.default_limit", 25)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that at least one Salesforce auth flow is fully
// configured before any command talks to the API.
func (c *Config) Validate() error {
	oauth := c.Salesforce.ClientID != "" && c.Salesforce.ClientSecret != "" && c.Salesforce.RefreshToken != ""
	password := c.Salesforce.Username != "" && c.Salesforce.Password != "" && c.Salesforce.SecurityToken != ""
	if !oauth && !password {
		return eris.New("config: salesforce credentials required (oauth client_id/client_secret/refresh_token or username/password/security_token)")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
