// Package screenshots persists completion screenshots on local disk or in S3.
package screenshots

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Store saves a PNG under name and returns where it was stored.
type Store interface {
	Save(ctx context.Context, name string, png []byte) (string, error)
}

// cleanName rejects names that would escape the store's root.
func cleanName(name string) (string, error) {
	base := path.Base(filepath.ToSlash(name))
	if base == "." || base == "/" || base == ".." || base != name {
		return "", fmt.Errorf("invalid screenshot name %q", name)
	}
	return base, nil
}

// LocalStore writes screenshots into a directory.
type LocalStore struct {
	dir string
}

// NewLocalStore returns a store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save implements Store and returns the file path.
func (s *LocalStore) Save(_ context.Context, name string, png []byte) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	p := filepath.Join(s.dir, name)
	if err := os.WriteFile(p, png, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return p, nil
}

// S3Config configures an S3Store.
type S3Config struct {
	Bucket          string
	Region          string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store uploads screenshots to an S3 bucket.
type S3Store struct {
	client s3iface.S3API
	bucket string
	region string
	prefix string
}

// NewS3Store creates an S3 client from cfg. Without static keys the default
// AWS credential chain is used.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("S3 bucket and region are required")
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3StoreWithClient(s3.New(sess), cfg), nil
}

// NewS3StoreWithClient returns a store using an existing client.
func NewS3StoreWithClient(client s3iface.S3API, cfg S3Config) *S3Store {
	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}
}

// Save implements Store and returns the object URL.
func (s *S3Store) Save(ctx context.Context, name string, png []byte) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(png),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload screenshot to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
