package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/llenroc/mvpapi/common/model"
)

// Config holds everything needed to construct an authenticated MVP API
// client: the application identity plus operational knobs.
type Config struct {
	ClientID        string `mapstructure:"client_id"`
	ClientSecret    string `mapstructure:"client_secret"`
	SubscriptionKey string `mapstructure:"subscription_key"`
	IsLegacyApp     bool   `mapstructure:"is_legacy_app"`

	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	LogLevel  string `mapstructure:"log_level"`
}

const (
	defaultUserAgent = "mvpapi-go"
	defaultLogLevel  = "info"
)

// Load reads configuration from, in increasing precedence: built-in defaults,
// an optional YAML file, a .env file in the working directory (if present),
// and MVP_-prefixed environment variables.
func Load(configFile string) (*Config, error) {
	// .env only fills process env vars that are not already set
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	v := viper.New()
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("log_level", defaultLogLevel)

	v.SetEnvPrefix("MVP")
	for _, key := range []string{
		"client_id", "client_secret", "subscription_key", "is_legacy_app",
		"base_url", "user_agent", "log_level",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %q: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields without which no authenticated call can be made.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if c.SubscriptionKey == "" {
		return fmt.Errorf("subscription_key is required")
	}
	if !c.IsLegacyApp && c.ClientSecret == "" {
		return fmt.Errorf("client_secret is required for non-legacy apps")
	}
	return nil
}

// Identity returns the immutable application identity for client construction.
func (c *Config) Identity() model.ClientIdentity {
	return model.ClientIdentity{
		ClientID:        c.ClientID,
		ClientSecret:    c.ClientSecret,
		SubscriptionKey: c.SubscriptionKey,
		IsLegacyApp:     c.IsLegacyApp,
	}
}

// Logger builds a zerolog logger at the configured level, writing to stderr.
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
