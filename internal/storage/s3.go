package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chartmuseum/storage"
	"github.com/iseprep/backend/internal/config"
)

// S3Client implements ObjectStorage for S3-compatible services, backed
// by chartmuseum's Amazon storage backend.
type S3Client struct {
	backend storage.Backend
}

// NewS3Client builds a client from the backup target configuration.
func NewS3Client(cfg config.BackupConfig) (*S3Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(cfg.Endpoint, "//"))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	backend := storage.NewAmazonS3BackendWithOptions(
		cfg.Bucket,
		"", // no prefix
		region,
		endpoint,
		"",
		&storage.AmazonS3Options{
			S3ForcePathStyle: awsBool(true),
		},
	)

	return &S3Client{backend: backend}, nil
}

// ListObjects lists all objects for a given prefix.
func (c *S3Client) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	files, err := c.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("s3 list failed: %w", err)
	}
	results := make([]ObjectInfo, 0)
	for _, object := range files {
		results = append(results, ObjectInfo{
			Key:  object.Path,
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

// DownloadObject downloads an object to the provided destination path.
func (c *S3Client) DownloadObject(ctx context.Context, key, destPath string) error {
	object, err := c.backend.GetObject(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := os.WriteFile(destPath, object.Content, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", destPath, err)
	}
	return nil
}

// UploadObject pushes a payload under the given key.
func (c *S3Client) UploadObject(ctx context.Context, key string, data []byte) error {
	if err := c.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}

var _ ObjectStorage = (*S3Client)(nil)

func awsBool(v bool) *bool {
	return &v
}
