package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/catalogctl/internal/flagx"
	"github.com/dmitrijs2005/catalogctl/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "2s" or as integer nanoseconds. Absent or empty fields leave
// the corresponding Config value untouched.
type JsonConfig struct {
	APIBaseURL      string          `json:"api_base_url"`
	AuthURL         string          `json:"auth_url"`
	AuthAPIKey      string          `json:"auth_api_key"`
	RedirectURL     string          `json:"redirect_url"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	LinkReloadDelay *timex.Duration `json:"link_reload_delay"`
	DataDir         string          `json:"data_dir"`
	LogLevel        string          `json:"log_level"`
	LogFormat       string          `json:"log_format"`
}

// parseJson overlays cfg with values loaded from the JSON file named by
// -c / -config (or CATALOG_CONFIG). No file means no changes.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	str := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	str(&cfg.APIBaseURL, jc.APIBaseURL)
	str(&cfg.AuthURL, jc.AuthURL)
	str(&cfg.AuthAPIKey, jc.AuthAPIKey)
	str(&cfg.RedirectURL, jc.RedirectURL)
	str(&cfg.DataDir, jc.DataDir)
	str(&cfg.LogLevel, jc.LogLevel)
	str(&cfg.LogFormat, jc.LogFormat)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LinkReloadDelay != nil {
		cfg.LinkReloadDelay = jc.LinkReloadDelay.Duration
	}
}
