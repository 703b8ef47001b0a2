package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv string `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseURL       string        `mapstructure:"DATABASE_URL" validate:"required,url|uri"`
	// The migration runner pins one connection for its advisory lock and
	// runs each migration on another, so the pool needs at least two.
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS" validate:"gte=2,lte=1000"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS" validate:"gte=0,lte=1000"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME" validate:"required"`

	MigrationTable   string        `mapstructure:"MIGRATION_TABLE" validate:"required,max=63"`
	MigrationTimeout time.Duration `mapstructure:"MIGRATION_TIMEOUT" validate:"required"`
	MigrationLockKey int64         `mapstructure:"MIGRATION_LOCK_KEY"`

	MetricsPushgatewayURL string `mapstructure:"METRICS_PUSHGATEWAY_URL" validate:"omitempty,url"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	// Load .env if present (non-fatal)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("MIGRATION_TABLE", "schema_migrations")
	v.SetDefault("MIGRATION_TIMEOUT", "5m")
	v.SetDefault("MIGRATION_LOCK_KEY", 7_310_224_019)
	v.SetDefault("GOMAXPROCS", 0)

	// Optional config file
	_ = v.ReadInConfig()

	keys := []string{
		"APP_ENV",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"DATABASE_URL",
		"DB_MAX_OPEN_CONNS",
		"DB_MAX_IDLE_CONNS",
		"DB_CONN_MAX_LIFETIME",
		"MIGRATION_TABLE",
		"MIGRATION_TIMEOUT",
		"MIGRATION_LOCK_KEY",
		"METRICS_PUSHGATEWAY_URL",
		"GOMAXPROCS",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Durations may arrive as plain strings from the environment.
	for key, dst := range map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME": &c.DBConnMaxLifetime,
		"MIGRATION_TIMEOUT":    &c.MigrationTimeout,
	} {
		if s := v.GetString(key); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}
