// Package config loads runtime configuration for the catalog console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, after loading an optional .env file with
//     godotenv (see parseEnv). Variables already set win over .env.
//  3. Optional JSON file (see parseJson) selected via -c / -config or the
//     CATALOG_CONFIG variable.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   product API base URL
//	-s string   auth provider URL
//	-k string   auth provider API key
//	-r string   password recovery redirect URL
//	-t int      request timeout (seconds)
//	-d string   local data directory
//	-l string   log level
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "2s" or
// integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8000",
//	  "auth_url": "https://project.supabase.co",
//	  "auth_api_key": "anon-key",
//	  "redirect_url": "http://localhost:5173",
//	  "request_timeout": "10s",
//	  "link_reload_delay": "2s",
//	  "data_dir": "/home/me/.config/catalogctl",
//	  "log_level": "info",
//	  "log_format": "json"
//	}
//
// The session passphrase is only read from CATALOG_SESSION_KEY so it never
// lands in a config file or the process argument list.
package config
