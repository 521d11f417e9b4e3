// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml (and config.<APP_ENVIRONMENT>.yaml when
// present), applies environment overrides and defaults, then validates.
// A missing config file is not an error; defaults describe a complete
// standalone server.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return build(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	applyDefaults(v)
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory to the module root. Existing environment variables win.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		switch {
		case strings.Contains(strVal, "${"):
			// Unset variables expand to empty rather than leaking the placeholder.
			v.Set(key, os.ExpandEnv(strVal))
		case strings.HasPrefix(strVal, "$") && len(strVal) > 1:
			if expanded := os.ExpandEnv(strVal); expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// applyDefaults registers defaults for every key. Registering them on viper
// (rather than patching the struct afterwards) also makes each key
// overridable from the environment, e.g. SERVER_PORT or EVENTS_ENABLED.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mergington-activities")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("server.landing_path", "/static/index.html")
	v.SetDefault("server.read_timeout", 10000)
	v.SetDefault("server.write_timeout", 10000)
	v.SetDefault("server.shutdown_timeout", 30000)
	v.SetDefault("server.request_timeout", 5000)

	v.SetDefault("registry.catalog_path", "")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.timeout", 2000)
	v.SetDefault("events.redis.address", "localhost:6379")
	v.SetDefault("events.redis.password", "")
	v.SetDefault("events.redis.db", 0)
	v.SetDefault("events.channel", "activities.participants")
	v.SetDefault("events.recent_key", "activities:events:recent")
	v.SetDefault("events.recent_limit", 100)

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.postgres.host", "localhost")
	v.SetDefault("audit.postgres.port", 5432)
	v.SetDefault("audit.postgres.database", "activities")
	v.SetDefault("audit.postgres.user", "")
	v.SetDefault("audit.postgres.password", "")
	v.SetDefault("audit.postgres.max_connections", 25)
	v.SetDefault("audit.postgres.max_idle", 5)
	v.SetDefault("audit.postgres.sslmode", "disable")

	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.from_email", "")
	v.SetDefault("notifications.aws.region", "us-east-1")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if !strings.HasPrefix(cfg.Server.LandingPath, "/") {
		return fmt.Errorf("server.landing_path must be an absolute path")
	}

	if cfg.Events.Enabled {
		if cfg.Events.Redis.Address == "" {
			return fmt.Errorf("events.redis.address is required when events are enabled")
		}
		if cfg.Events.Channel == "" {
			return fmt.Errorf("events.channel is required when events are enabled")
		}
		if cfg.Events.RecentLimit < 0 {
			return fmt.Errorf("events.recent_limit must not be negative")
		}
	}

	if cfg.Audit.Enabled {
		if cfg.Audit.Postgres.Host == "" {
			return fmt.Errorf("audit.postgres.host is required when audit is enabled")
		}
		if cfg.Audit.Postgres.Database == "" {
			return fmt.Errorf("audit.postgres.database is required when audit is enabled")
		}
		if cfg.Audit.Postgres.User == "" {
			return fmt.Errorf("audit.postgres.user is required when audit is enabled")
		}
	}

	if cfg.Notifications.Enabled {
		if cfg.Notifications.FromEmail == "" {
			return fmt.Errorf("notifications.from_email is required when notifications are enabled")
		}
		if cfg.Notifications.AWS.Region == "" {
			return fmt.Errorf("notifications.aws.region is required when notifications are enabled")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
