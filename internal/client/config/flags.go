package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/catalogctl/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   product API base URL
//	-s string   auth provider URL
//	-k string   auth provider API key
//	-r string   password recovery redirect URL
//	-t int      request timeout (in seconds)
//	-d string   local data directory
//	-l string   log level
//
// Only these flags are considered; everything else in args is left to other
// components.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-k", "-r", "-t", "-d", "-l"})

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "product API base URL")
	fs.StringVar(&cfg.AuthURL, "s", cfg.AuthURL, "auth provider URL")
	fs.StringVar(&cfg.AuthAPIKey, "k", cfg.AuthAPIKey, "auth provider API key")
	fs.StringVar(&cfg.RedirectURL, "r", cfg.RedirectURL, "password recovery redirect URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
