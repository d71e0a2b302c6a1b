package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig holds raw environment values. Pointer fields stay nil when the
// variable is unset so that only explicitly provided values override.
// JWT_SECRET and ACCESS_TOKEN_EXPIRE_MINUTES keep the names the service
// has always been deployed with.
type envConfig struct {
	EndpointAddrHTTP    *string `env:"SENTINEL_HTTP_ADDR"`
	EndpointAddrGRPC    *string `env:"SENTINEL_GRPC_ADDR"`
	DatabaseDSN         *string `env:"DATABASE_DSN"`
	SeedSource          *string `env:"SENTINEL_SEED"`
	SecretKey           *string `env:"JWT_SECRET"`
	AccessTokenMinutes  *int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	BcryptCost          *int    `env:"SENTINEL_BCRYPT_COST"`
	MaxConcurrentHashes *int    `env:"SENTINEL_MAX_CONCURRENT_HASHES"`
	LogLevel            *string `env:"SENTINEL_LOG_LEVEL"`
	S3Region            *string `env:"AWS_REGION"`
	S3BaseEndpoint      *string `env:"SENTINEL_S3_ENDPOINT"`
	S3AccessKey         *string `env:"SENTINEL_S3_ACCESS_KEY"`
	S3SecretKey         *string `env:"SENTINEL_S3_SECRET_KEY"`
}

// parseEnv overlays environment variables onto config.
func parseEnv(config *Config) error {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	overrideString(&config.EndpointAddrHTTP, raw.EndpointAddrHTTP)
	overrideString(&config.EndpointAddrGRPC, raw.EndpointAddrGRPC)
	overrideString(&config.DatabaseDSN, raw.DatabaseDSN)
	overrideString(&config.SeedSource, raw.SeedSource)
	overrideString(&config.SecretKey, raw.SecretKey)
	overrideString(&config.LogLevel, raw.LogLevel)
	overrideString(&config.S3Region, raw.S3Region)
	overrideString(&config.S3BaseEndpoint, raw.S3BaseEndpoint)
	overrideString(&config.S3AccessKey, raw.S3AccessKey)
	overrideString(&config.S3SecretKey, raw.S3SecretKey)

	if raw.AccessTokenMinutes != nil {
		config.AccessTokenValidityDuration = time.Duration(*raw.AccessTokenMinutes) * time.Minute
	}
	if raw.BcryptCost != nil {
		config.BcryptCost = *raw.BcryptCost
	}
	if raw.MaxConcurrentHashes != nil {
		config.MaxConcurrentHashes = *raw.MaxConcurrentHashes
	}
	return nil
}

func overrideString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
