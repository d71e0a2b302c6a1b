package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/sentinel/internal/common"
	"github.com/dmitrijs2005/sentinel/internal/server/models"
)

// defaultAdminHash is the bcrypt (cost 12) hash of the built-in admin
// password that the service has always shipped with.
const defaultAdminHash = "$2b$12$zXUWvlnweaIklGCzfVXo9O1PtT8RNUTlFzMNQsTlS8pVY/o0MM1FS"

// SeedRecord is the JSON shape of one seed entry.
//
//	[{"username": "admin", "password_hash": "$2b$12$...", "disabled": false}]
type SeedRecord struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Disabled     bool   `json:"disabled"`
	DisplayName  string `json:"display_name,omitempty"`
	Email        string `json:"email,omitempty"`
}

// S3Options locates the object store for s3:// seed sources. Empty
// AccessKey falls back to the default AWS credential chain; a non-empty
// BaseEndpoint targets an S3-compatible server such as MinIO.
type S3Options struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// DefaultSeed returns the built-in single admin record.
func DefaultSeed() []models.CredentialRecord {
	return []models.CredentialRecord{{
		Username:     "admin",
		PasswordHash: []byte(defaultAdminHash),
	}}
}

// LoadSeed reads seed records from source: "" for the built-in seed,
// "s3://bucket/key" for an object in S3, anything else is a file path.
func LoadSeed(ctx context.Context, source string, opts S3Options) ([]models.CredentialRecord, error) {
	if source == "" {
		return DefaultSeed(), nil
	}

	var (
		rc  io.ReadCloser
		err error
	)
	if strings.HasPrefix(source, "s3://") {
		rc, err = openS3Object(ctx, source, opts)
	} else {
		rc, err = os.Open(source)
	}
	if err != nil {
		return nil, fmt.Errorf("open seed %s: %w", source, err)
	}
	defer rc.Close()

	records, err := ParseSeed(rc)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", source, err)
	}
	return records, nil
}

// ParseSeed decodes a JSON array of SeedRecord. Usernames and hashes must
// be non-empty; uniqueness is enforced by the store.
func ParseSeed(r io.Reader) ([]models.CredentialRecord, error) {
	var raw []SeedRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	records := make([]models.CredentialRecord, 0, len(raw))
	for i, s := range raw {
		if s.Username == "" {
			return nil, fmt.Errorf("%w: record %d has empty username", common.ErrorValidation, i)
		}
		if s.PasswordHash == "" {
			return nil, fmt.Errorf("%w: record %q has empty password_hash", common.ErrorValidation, s.Username)
		}
		records = append(records, models.CredentialRecord{
			Username:     s.Username,
			PasswordHash: []byte(s.PasswordHash),
			Disabled:     s.Disabled,
			DisplayName:  s.DisplayName,
			Email:        s.Email,
		})
	}
	return records, nil
}

// objectGetter is the slice of the S3 client the seed loader needs.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// newObjectGetter is a seam for tests.
var newObjectGetter = func(ctx context.Context, opts S3Options) (objectGetter, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func parseS3URL(source string) (bucket, key string, err error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", "", err
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: want s3://bucket/key, got %q", common.ErrorValidation, source)
	}
	return bucket, key, nil
}

func openS3Object(ctx context.Context, source string, opts S3Options) (io.ReadCloser, error) {
	bucket, key, err := parseS3URL(source)
	if err != nil {
		return nil, err
	}

	client, err := newObjectGetter(ctx, opts)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
