package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://api:1", "-s", "http://auth:2", "-k", "key", "-r", "http://app:3",
				"-t", "7", "-d", "/tmp/data", "-l", "debug"},
			expected: &Config{
				APIBaseURL: "http://api:1", AuthURL: "http://auth:2", AuthAPIKey: "key",
				RedirectURL: "http://app:3", RequestTimeout: 7 * time.Second, DataDir: "/tmp/data",
				LogLevel: "debug",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-link", "http://app/#access_token=x", "-a", "http://api:1"},
			expected: &Config{APIBaseURL: "http://api:1"},
		},
		{
			name:    "incorrect timeout",
			args:    []string{"-t", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
