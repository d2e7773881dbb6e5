package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all tool configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// APIConfig configures the upstream service client.
type APIConfig struct {
	Key                string  `mapstructure:"key"`
	ClientID           string  `mapstructure:"client_id"`
	Secret             string  `mapstructure:"secret"`
	BaseURL            string  `mapstructure:"base_url"`
	QPS                float64 `mapstructure:"qps"`
	Workers            int     `mapstructure:"workers"`
	RetryBudgetSeconds int     `mapstructure:"retry_budget_seconds"`
	LimiterWaitSeconds int     `mapstructure:"limiter_wait_seconds"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("api.base_url", "https://maps.googleapis.com")
	v.SetDefault("api.qps", 10)
	v.SetDefault("api.workers", 10)
	v.SetDefault("api.retry_budget_seconds", 30)
	v.SetDefault("api.limiter_wait_seconds", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: GEOAPI_API_KEY → api.key
	v.SetEnvPrefix("GEOAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.API.BaseURL == "" {
		errs = append(errs, "api.base_url is required")
	}
	if c.API.QPS <= 0 {
		errs = append(errs, fmt.Sprintf("api.qps must be positive, got %v", c.API.QPS))
	}
	if c.API.Workers <= 0 {
		errs = append(errs, fmt.Sprintf("api.workers must be positive, got %d", c.API.Workers))
	}
	if c.API.RetryBudgetSeconds <= 0 {
		errs = append(errs, "api.retry_budget_seconds must be positive")
	}
	if c.API.LimiterWaitSeconds <= 0 {
		errs = append(errs, "api.limiter_wait_seconds must be positive")
	}
	if c.API.Secret != "" && c.API.ClientID == "" {
		errs = append(errs, "api.client_id is required when api.secret is set")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
