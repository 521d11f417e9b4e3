package activities

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	LandingPath    string        `mapstructure:"landing_path"`
	StaticDir      string        `mapstructure:"static_dir"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		LandingPath:    "/static/index.html",
		StaticDir:      "./static",
		RequestTimeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.LandingPath, "/") {
		return fmt.Errorf("landing_path must start with /")
	}
	if c.StaticDir == "" {
		return fmt.Errorf("static_dir is required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}
