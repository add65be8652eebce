package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the catalog console.
//
// Units: RequestTimeout and LinkReloadDelay are time.Duration values.
type Config struct {
	APIBaseURL      string
	AuthURL         string
	AuthAPIKey      string
	RedirectURL     string
	RequestTimeout  time.Duration
	LinkReloadDelay time.Duration
	DataDir         string
	SessionKey      string
	LogLevel        string
	LogFormat       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.AuthURL = ""
	c.AuthAPIKey = ""
	c.RedirectURL = "http://localhost:5173"
	c.RequestTimeout = 10 * time.Second
	c.LinkReloadDelay = 2 * time.Second
	c.DataDir = defaultDataDir()
	c.SessionKey = ""
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (.env included), JSON (if present) and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig with explicit arguments (without the program name).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "catalogctl")
	}
	return ".catalogctl"
}
