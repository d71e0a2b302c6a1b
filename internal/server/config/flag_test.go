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
		name     string
		args     []string
		start    Config
		expected Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:8080", "-g", "127.0.0.1:9090", "-d", "db", "-seed", "seed.json",
				"-s", "secret", "-t", "1", "-cost", "4", "-hashers", "8", "-l", "debug",
				"-s3-region", "us-west-1", "-s3-endpoint", "http://endpoint", "-s3-key", "k", "-s3-secret", "p",
			},
			expected: Config{
				EndpointAddrHTTP:            "127.0.0.1:8080",
				EndpointAddrGRPC:            "127.0.0.1:9090",
				DatabaseDSN:                 "db",
				SeedSource:                  "seed.json",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 1 * time.Minute,
				BcryptCost:                  4,
				MaxConcurrentHashes:         8,
				LogLevel:                    "debug",
				S3Region:                    "us-west-1",
				S3BaseEndpoint:              "http://endpoint",
				S3AccessKey:                 "k",
				S3SecretKey:                 "p",
			},
		},
		{
			name:     "unset flags leave values alone",
			args:     []string{"-s", "override"},
			start:    Config{EndpointAddrHTTP: ":1", SecretKey: "orig", AccessTokenValidityDuration: time.Hour},
			expected: Config{EndpointAddrHTTP: ":1", SecretKey: "override", AccessTokenValidityDuration: time.Hour},
		},
		{
			name:     "explicit empty DSN switches back to memory store",
			args:     []string{"-d", ""},
			start:    Config{DatabaseDSN: "postgres://x"},
			expected: Config{},
		},
		{
			name:    "unknown flag",
			args:    []string{"-x"},
			wantErr: true,
		},
		{
			name:    "non-integer minutes",
			args:    []string{"-t", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			cfg := tt.start
			o.apply(&cfg)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestParseFlags_ConfigPath(t *testing.T) {
	o, err := parseFlags([]string{"-c", "/path/short.json"})
	require.NoError(t, err)
	assert.Equal(t, "/path/short.json", o.configPath)

	o, err = parseFlags([]string{"-config", "/path/long.json"})
	require.NoError(t, err)
	assert.Equal(t, "/path/long.json", o.configPath)
}
