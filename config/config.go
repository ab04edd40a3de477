package config

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	Upload     UploadConfig
	Dashboard  DashboardConfig
	Onboarding OnboardingConfig
	Expiry     ExpiryConfig
	RateLimit  RateLimitConfig
}

type AppConfig struct {
	Port          string
	Env           string
	LogLevel      string
	PublicDir     string
	MigrationsDir string
	AutoMigrate   bool
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type DashboardConfig struct {
	CacheTTL time.Duration
}

type OnboardingConfig struct {
	SessionTTL time.Duration
}

type ExpiryConfig struct {
	SweepInterval time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoadConfigFrom reads the optional env file at path and then the process
// environment, which takes precedence. A missing file is not an error.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:          v.GetString("APP_PORT"),
			Env:           v.GetString("APP_ENV"),
			LogLevel:      v.GetString("LOG_LEVEL"),
			PublicDir:     v.GetString("PUBLIC_DIR"),
			MigrationsDir: v.GetString("MIGRATIONS_DIR"),
			AutoMigrate:   v.GetBool("AUTO_MIGRATE"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Upload: UploadConfig{
			Dir:      v.GetString("UPLOAD_DIR"),
			MaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
		Dashboard: DashboardConfig{
			CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), time.Minute),
		},
		Onboarding: OnboardingConfig{
			SessionTTL: parseDuration(v.GetString("ONBOARDING_SESSION_TTL"), 30*time.Minute),
		},
		Expiry: ExpiryConfig{
			SweepInterval: parseDuration(v.GetString("EXPIRY_SWEEP_INTERVAL"), time.Hour),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PUBLIC_DIR", "public")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("AUTO_MIGRATE", true)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "healthsure")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)

	v.SetDefault("RATE_LIMIT_RPS", 0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
}

// parseDuration falls back to def on empty or malformed input. "0" is a valid
// value and disables the feature that reads it.
func parseDuration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
