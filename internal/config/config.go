package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database.
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DBPath      string `mapstructure:"DB_PATH"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SeedPath    string `mapstructure:"SEED_PATH"`

	// Redis route cache. An empty address disables caching.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	RouteCacheTTL time.Duration `mapstructure:"ROUTE_CACHE_TTL"`

	// Distance source: haversine, ors or google.
	DistanceProvider string `mapstructure:"DISTANCE_PROVIDER"`
	ORSAPIKey        string `mapstructure:"ORS_API_KEY"`
	GoogleAPIKey     string `mapstructure:"GOOGLE_API_KEY"`

	// Engine limits.
	MaxExactStops      int    `mapstructure:"MAX_EXACT_STOPS"`
	MaxRouteStops      int    `mapstructure:"MAX_ROUTE_STOPS"`
	SlotLookAheadDays  int    `mapstructure:"SLOT_LOOKAHEAD_DAYS"`
	PlannerWorkers     int    `mapstructure:"PLANNER_WORKERS"`
	NightlyPlanCron    string `mapstructure:"NIGHTLY_PLAN_CRON"`
	OptimizeRatePerMin int    `mapstructure:"OPTIMIZE_RATE_PER_MIN"`
}

var defaults = map[string]any{
	"APP_PORT":              "8080",
	"ENV":                   "development",
	"LOG_LEVEL":             "info",
	"DB_DRIVER":             "sqlite",
	"DB_PATH":               "data/app.db",
	"DATABASE_URL":          "",
	"SEED_PATH":             "data/seeds/providers.json",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"ROUTE_CACHE_TTL":       "6h",
	"DISTANCE_PROVIDER":     "haversine",
	"ORS_API_KEY":           "",
	"GOOGLE_API_KEY":        "",
	"MAX_EXACT_STOPS":       10,
	"MAX_ROUTE_STOPS":       200,
	"SLOT_LOOKAHEAD_DAYS":   365,
	"PLANNER_WORKERS":       4,
	"NIGHTLY_PLAN_CRON":     "0 2 * * *",
	"OPTIMIZE_RATE_PER_MIN": 60,
}

// Load reads .env (when present), an optional config.yaml in "." or "./config",
// and the environment. Environment values win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "pgx":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required for DB_DRIVER=pgx")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.DistanceProvider {
	case "haversine":
	case "ors":
		if strings.TrimSpace(c.ORSAPIKey) == "" {
			return errors.New("ORS_API_KEY is required for DISTANCE_PROVIDER=ors")
		}
	case "google":
		if strings.TrimSpace(c.GoogleAPIKey) == "" {
			return errors.New("GOOGLE_API_KEY is required for DISTANCE_PROVIDER=google")
		}
	default:
		return fmt.Errorf("unsupported DISTANCE_PROVIDER %q", c.DistanceProvider)
	}

	if c.PlannerWorkers < 1 {
		return fmt.Errorf("PLANNER_WORKERS must be positive, got %d", c.PlannerWorkers)
	}

	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "pgx" {
		return c.DatabaseURL
	}
	return c.DBPath
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Get returns the environment value for key or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
