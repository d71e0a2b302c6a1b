package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// flagOverrides captures the command-line flags that were explicitly set.
//
// Supported flags:
//
//	-c, -config string  JSON config file
//	-a string           HTTP bind address (e.g., ":8000")
//	-g string           gRPC bind address (e.g., ":50051")
//	-d string           PostgreSQL DSN
//	-seed string        credential seed source (path or s3://bucket/key)
//	-s string           JWT HMAC secret key
//	-t int              access token validity, minutes
//	-cost int           bcrypt cost
//	-hashers int        max concurrent hash computations
//	-l string           log level
//	-s3-region, -s3-endpoint, -s3-key, -s3-secret string
//
// Durations are accepted as integer minutes.
type flagOverrides struct {
	configPath string
	values     Config
	minutes    int
	set        map[string]bool
}

func parseFlags(args []string) (*flagOverrides, error) {
	o := &flagOverrides{set: map[string]bool{}}
	v := &o.values

	fs := flag.NewFlagSet("sentinel", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&o.configPath, "config", "", "path to config file")
	fs.StringVar(&o.configPath, "c", "", "path to config file (short)")
	fs.StringVar(&v.EndpointAddrHTTP, "a", "", "HTTP address and port")
	fs.StringVar(&v.EndpointAddrGRPC, "g", "", "gRPC address and port")
	fs.StringVar(&v.DatabaseDSN, "d", "", "database DSN")
	fs.StringVar(&v.SeedSource, "seed", "", "credential seed source")
	fs.StringVar(&v.SecretKey, "s", "", "secret key")
	fs.IntVar(&o.minutes, "t", 0, "access token validity (in minutes)")
	fs.IntVar(&v.BcryptCost, "cost", 0, "bcrypt cost")
	fs.IntVar(&v.MaxConcurrentHashes, "hashers", 0, "max concurrent hash computations")
	fs.StringVar(&v.LogLevel, "l", "", "log level")
	fs.StringVar(&v.S3Region, "s3-region", "", "S3 region")
	fs.StringVar(&v.S3BaseEndpoint, "s3-endpoint", "", "S3 base endpoint")
	fs.StringVar(&v.S3AccessKey, "s3-key", "", "S3 access key")
	fs.StringVar(&v.S3SecretKey, "s3-secret", "", "S3 secret key")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	return o, nil
}

// apply copies every explicitly set flag onto cfg.
func (o *flagOverrides) apply(cfg *Config) {
	v := o.values
	if o.set["a"] {
		cfg.EndpointAddrHTTP = v.EndpointAddrHTTP
	}
	if o.set["g"] {
		cfg.EndpointAddrGRPC = v.EndpointAddrGRPC
	}
	if o.set["d"] {
		cfg.DatabaseDSN = v.DatabaseDSN
	}
	if o.set["seed"] {
		cfg.SeedSource = v.SeedSource
	}
	if o.set["s"] {
		cfg.SecretKey = v.SecretKey
	}
	if o.set["t"] {
		cfg.AccessTokenValidityDuration = time.Duration(o.minutes) * time.Minute
	}
	if o.set["cost"] {
		cfg.BcryptCost = v.BcryptCost
	}
	if o.set["hashers"] {
		cfg.MaxConcurrentHashes = v.MaxConcurrentHashes
	}
	if o.set["l"] {
		cfg.LogLevel = v.LogLevel
	}
	if o.set["s3-region"] {
		cfg.S3Region = v.S3Region
	}
	if o.set["s3-endpoint"] {
		cfg.S3BaseEndpoint = v.S3BaseEndpoint
	}
	if o.set["s3-key"] {
		cfg.S3AccessKey = v.S3AccessKey
	}
	if o.set["s3-secret"] {
		cfg.S3SecretKey = v.S3SecretKey
	}
}
