package credentials

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sentinel/internal/common"
)

const seedJSON = `[
  {"username": "admin", "password_hash": "$2a$04$abc", "display_name": "Administrator"},
  {"username": "retired", "password_hash": "$2a$04$def", "disabled": true, "email": "r@example.com"}
]`

type fakeGetter struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func stubObjectGetter(t *testing.T, g objectGetter, gotOpts *S3Options) {
	t.Helper()
	orig := newObjectGetter
	t.Cleanup(func() { newObjectGetter = orig })
	newObjectGetter = func(_ context.Context, opts S3Options) (objectGetter, error) {
		if gotOpts != nil {
			*gotOpts = opts
		}
		return g, nil
	}
}

func TestLoadSeed_Default(t *testing.T) {
	records, err := LoadSeed(context.Background(), "", S3Options{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "admin", records[0].Username)
	assert.True(t, strings.HasPrefix(string(records[0].PasswordHash), "$2b$12$"))
	assert.False(t, records[0].Disabled)
}

func TestLoadSeed_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o600))

	records, err := LoadSeed(context.Background(), path, S3Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "admin", records[0].Username)
	assert.Equal(t, "Administrator", records[0].DisplayName)
	assert.Equal(t, []byte("$2a$04$abc"), records[0].PasswordHash)
	assert.True(t, records[1].Disabled)
	assert.Equal(t, "r@example.com", records[1].Email)
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(context.Background(), filepath.Join(t.TempDir(), "none.json"), S3Options{})
	require.Error(t, err)
}

func TestLoadSeed_S3(t *testing.T) {
	g := &fakeGetter{body: seedJSON}
	var opts S3Options
	stubObjectGetter(t, g, &opts)

	in := S3Options{Region: "eu-central-1", BaseEndpoint: "http://minio:9000", AccessKey: "k", SecretKey: "s"}
	records, err := LoadSeed(context.Background(), "s3://config-bucket/sentinel/seed.json", in)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "config-bucket", g.bucket)
	assert.Equal(t, "sentinel/seed.json", g.key)
	assert.Equal(t, in, opts)
}

func TestLoadSeed_S3Errors(t *testing.T) {
	stubObjectGetter(t, &fakeGetter{err: errors.New("access denied")}, nil)

	_, err := LoadSeed(context.Background(), "s3://bucket/key.json", S3Options{})
	require.ErrorContains(t, err, "access denied")

	_, err = LoadSeed(context.Background(), "s3://bucket-only", S3Options{})
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":   `{`,
		"object":     `{"username": "admin"}`,
		"empty user": `[{"username": "", "password_hash": "h"}]`,
		"empty hash": `[{"username": "admin", "password_hash": ""}]`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed(strings.NewReader(in))
			require.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}
