package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Signing   SigningConfig   `mapstructure:"signing"`
	Finalizer FinalizerConfig `mapstructure:"finalizer"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Port    int    `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// DocumentTTL bounds how long a cached document projection may live
	// even without an invalidating mutation.
	DocumentTTL time.Duration `mapstructure:"document_ttl"`
}

type SigningConfig struct {
	// Timeout bounds every call into the signing/verification primitive.
	// On timeout the mutating operation must not have applied any state.
	Timeout time.Duration `mapstructure:"timeout"`
	// ReadRetries is the bounded retry count for idempotent reads against
	// the primitive and the store. Mutations are never auto-retried.
	ReadRetries int `mapstructure:"read_retries"`
}

type FinalizerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Schedule is a cron spec, e.g. "@every 1m".
	Schedule string `mapstructure:"schedule"`
	// BatchSize caps how many signed documents one run promotes.
	BatchSize int `mapstructure:"batch_size"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func NewConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Enable environment variable override
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Signing.Timeout <= 0 {
		cfg.Signing.Timeout = 10 * time.Second
	}
	if cfg.Signing.ReadRetries <= 0 {
		cfg.Signing.ReadRetries = 3
	}
	if cfg.Finalizer.Schedule == "" {
		cfg.Finalizer.Schedule = "@every 1m"
	}
	if cfg.Finalizer.BatchSize <= 0 {
		cfg.Finalizer.BatchSize = 100
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)
