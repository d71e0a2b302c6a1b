// Package config handles configuration for the sentinel server: defaults,
// an optional JSON file, environment variables and command-line flags,
// applied in that order.
package config

import (
	"fmt"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSecretKey is the built-in HMAC secret used when nothing else is
// configured. Tokens signed with it can be forged by anyone who has read
// this file; see UsesDefaultSecret.
const DefaultSecretKey = "supersecretjwtkey"

// Config holds runtime settings for the sentinel server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SeedSource: credential seed; empty for the built-in seed, a file path,
//     or s3://bucket/key.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenValidityDuration: access token lifetime.
//   - BcryptCost: cost used for the dummy hash and by the hashpw tool.
//   - MaxConcurrentHashes: upper bound on bcrypt comparisons running at once.
//   - S3*: object storage settings, only used for s3:// seed sources.
type Config struct {
	EndpointAddrHTTP            string
	EndpointAddrGRPC            string
	DatabaseDSN                 string
	SeedSource                  string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	BcryptCost                  int
	MaxConcurrentHashes         int
	LogLevel                    string
	S3Region                    string
	S3BaseEndpoint              string
	S3AccessKey                 string
	S3SecretKey                 string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the default secret is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SeedSource = ""
	c.SecretKey = DefaultSecretKey
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.BcryptCost = 12
	c.MaxConcurrentHashes = runtime.NumCPU()
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file (-c/-config), the environment and finally
// the command-line flags in args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	overrides, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	if overrides.configPath != "" {
		if err := parseJson(cfg, overrides.configPath); err != nil {
			return nil, err
		}
	}

	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	overrides.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsesDefaultSecret reports whether tokens would be signed with the
// built-in secret.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.EndpointAddrHTTP == "":
		return fmt.Errorf("config: http address is empty")
	case c.EndpointAddrGRPC == "":
		return fmt.Errorf("config: grpc address is empty")
	case c.SecretKey == "":
		return fmt.Errorf("config: secret key is empty")
	case c.AccessTokenValidityDuration <= 0:
		return fmt.Errorf("config: access token validity must be positive, got %s", c.AccessTokenValidityDuration)
	case c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("config: bcrypt cost %d out of range [%d..%d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	case c.MaxConcurrentHashes <= 0:
		return fmt.Errorf("config: max concurrent hashes must be positive, got %d", c.MaxConcurrentHashes)
	}
	return nil
}
