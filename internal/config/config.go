package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string `mapstructure:"PORT"`
	Environment     string `mapstructure:"ENVIRONMENT"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	FrontendURL     string `mapstructure:"FRONTEND_URL"`
	SupabaseURL     string `mapstructure:"SUPABASE_URL"`
	SupabaseAnonKey string `mapstructure:"SUPABASE_URL_ANON_KEY"`

	// The service key lets admin endpoints manage profiles past row level security.
	SupabaseServiceKey string `mapstructure:"SUPABASE_SERVICE_ROLE_KEY"`
	MongoDBURI         string `mapstructure:"MONGODB_URI"`
	MongoDBPassword    string `mapstructure:"MONGODB_PASSWORD"`
	MongoDBDatabase    string `mapstructure:"MONGODB_DATABASE"`

	// Admin tokens are signed locally; user tokens come from Supabase.
	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	JWTExpires time.Duration `mapstructure:"JWT_EXPIRES"`
	JWTIssuer  string        `mapstructure:"JWT_ISSUER"`

	// An empty RedisAddr keeps per-id locks inside this process.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int           `mapstructure:"REDIS_LOCK_DB"`
	LockTTL       time.Duration `mapstructure:"LOCK_TTL"`
	LockWait      time.Duration `mapstructure:"LOCK_WAIT"`

	// An empty schedule disables the background rating reconcile.
	RatingReconcileCron string `mapstructure:"RATING_RECONCILE_CRON"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
}

var defaults = map[string]interface{}{
	"PORT":                      "8080",
	"ENVIRONMENT":               "development",
	"LOG_LEVEL":                 "info",
	"FRONTEND_URL":              "http://localhost:3000",
	"SUPABASE_URL":              "",
	"SUPABASE_URL_ANON_KEY":     "",
	"SUPABASE_SERVICE_ROLE_KEY": "",
	"MONGODB_URI":               "",
	"MONGODB_PASSWORD":          "",
	"MONGODB_DATABASE":          "glamour",
	"JWT_SECRET":                "",
	"JWT_EXPIRES":               "168h",
	"JWT_ISSUER":                "glamour-backend",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_LOCK_DB":             3,
	"LOCK_TTL":                  "10s",
	"LOCK_WAIT":                 "5s",
	"RATING_RECONCILE_CRON":     "@every 6h",
	"CLOUDINARY_CLOUD_NAME":     "",
	"CLOUDINARY_API_KEY":        "",
	"CLOUDINARY_API_SECRET":     "",
}

// LoadConfig reads an optional config.yaml from . or ./config and lets
// environment variables override it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	required := []struct{ name, value string }{
		{"SUPABASE_URL", c.SupabaseURL},
		{"SUPABASE_URL_ANON_KEY", c.SupabaseAnonKey},
		{"MONGODB_URI", c.MongoDBURI},
		{"JWT_SECRET", c.JWTSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}
	if strings.Contains(c.MongoDBURI, "<password>") && c.MongoDBPassword == "" {
		return fmt.Errorf("MONGODB_PASSWORD is required when MONGODB_URI has a <password> placeholder")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.JWTExpires <= 0 || c.LockTTL <= 0 || c.LockWait <= 0 {
		return fmt.Errorf("JWT_EXPIRES, LOCK_TTL and LOCK_WAIT must be positive durations")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
