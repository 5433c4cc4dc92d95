package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values come from defaults, an optional config file, environment variables
// and command-line flags, in increasing order of precedence.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Coupon   CouponConfig   `mapstructure:"coupon"`
	Database DatabaseConfig `mapstructure:"database"`
	LogLevel string         `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"` // Valid API keys for admin endpoints
}

type PricingConfig struct {
	TaxRate        decimal.Decimal `mapstructure:"tax_rate"`
	FallbackPrice  string          `mapstructure:"fallback_price"` // empty keeps unknown items an error
	Locale         string          `mapstructure:"locale"`
	CurrencySymbol string          `mapstructure:"currency_symbol"`
}

type CouponConfig struct {
	Files       []string      `mapstructure:"files"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"` // empty selects the in-memory repositories
	MaxConns       int32  `mapstructure:"max_conns"`
	ConnectRetries int    `mapstructure:"connect_retries"`
	Seed           bool   `mapstructure:"seed"` // insert the default stores and menu when missing
}

// envBindings maps config keys to the environment variables that override them
var envBindings = map[string]string{
	"server.port":              "PORT",
	"server.host":              "HOST",
	"server.read_timeout":      "READ_TIMEOUT",
	"server.write_timeout":     "WRITE_TIMEOUT",
	"server.shutdown_timeout":  "SHUTDOWN_TIMEOUT",
	"server.allowed_origins":   "ALLOWED_ORIGINS",
	"auth.api_keys":            "API_KEYS",
	"pricing.tax_rate":         "TAX_RATE",
	"pricing.fallback_price":   "FALLBACK_PRICE",
	"pricing.locale":           "LOCALE",
	"pricing.currency_symbol":  "CURRENCY_SYMBOL",
	"coupon.files":             "COUPON_FILES",
	"coupon.load_timeout":      "COUPON_LOAD_TIMEOUT",
	"database.url":             "DATABASE_URL",
	"database.max_conns":       "DATABASE_MAX_CONNS",
	"database.connect_retries": "DATABASE_CONNECT_RETRIES",
	"database.seed":            "DATABASE_SEED",
	"log_level":                "LOG_LEVEL",
}

// SetDefaults registers default values and environment bindings on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("auth.api_keys", []string{"apitest"})
	v.SetDefault("pricing.tax_rate", "0.05")
	v.SetDefault("pricing.fallback_price", "")
	v.SetDefault("pricing.locale", "en-IN")
	v.SetDefault("pricing.currency_symbol", "₹")
	v.SetDefault("coupon.files", []string{})
	v.SetDefault("coupon.load_timeout", "2m")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("database.seed", true)
	v.SetDefault("log_level", "info")

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// Load reads configuration from v, plus cfgFile when it is not empty
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	decodeHook := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			stringToDecimalHook(),
		)
	})
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}
	for _, key := range c.Auth.APIKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("API keys must not be blank")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.Pricing.TaxRate.IsNegative() || c.Pricing.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid tax rate: %s (must be between 0 and 1)", c.Pricing.TaxRate)
	}

	if _, err := c.Pricing.Fallback(); err != nil {
		return err
	}

	return nil
}

// Fallback returns the configured fallback price, or nil when unknown items
// must be rejected
func (p PricingConfig) Fallback() (*decimal.Decimal, error) {
	if strings.TrimSpace(p.FallbackPrice) == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(strings.TrimSpace(p.FallbackPrice))
	if err != nil {
		return nil, fmt.Errorf("invalid fallback price %q: %w", p.FallbackPrice, err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("invalid fallback price %q: must not be negative", p.FallbackPrice)
	}
	return &price, nil
}

func stringToDecimalHook() mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf(decimal.Decimal{})
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != target {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return decimal.NewFromString(strings.TrimSpace(v))
		case float64:
			return decimal.NewFromFloat(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		}
		return data, nil
	}
}
