package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted by parseEnv.
const (
	EnvAPIURL      = "CATALOG_API_URL"
	EnvAuthURL     = "SUPABASE_URL"
	EnvAuthAPIKey  = "SUPABASE_ANON_KEY"
	EnvRedirectURL = "CATALOG_REDIRECT_URL"
	EnvDataDir     = "CATALOG_DATA_DIR"
	EnvSessionKey  = "CATALOG_SESSION_KEY"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
)

// dotenvFiles are loaded into the process environment before it is read.
// Variables already set in the environment are never overwritten.
var dotenvFiles = []string{".env"}

// parseEnv overlays cfg with non-empty environment variables. Missing .env
// files are ignored; malformed ones are reported.
func parseEnv(cfg *Config) error {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	set(&cfg.APIBaseURL, EnvAPIURL)
	set(&cfg.AuthURL, EnvAuthURL)
	set(&cfg.AuthAPIKey, EnvAuthAPIKey)
	set(&cfg.RedirectURL, EnvRedirectURL)
	set(&cfg.DataDir, EnvDataDir)
	set(&cfg.SessionKey, EnvSessionKey)
	set(&cfg.LogLevel, EnvLogLevel)
	set(&cfg.LogFormat, EnvLogFormat)

	return nil
}
