package objectclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	cfg "github.com/markdave123-py/storage-indexer/internal/config"
	"github.com/markdave123-py/storage-indexer/internal/core"
)

var _ core.ObjectClient = (*MinioClient)(nil)

var errNoEndpoint = errors.New("storage endpoint not configured")

// MinioClient talks to a MinIO (or other S3-compatible) server.
// client is nil when no endpoint is configured.
type MinioClient struct {
	client *minio.Client
}

func NewMinioClient(cfg *cfg.Config) (*MinioClient, error) {
	if cfg.StorageEndpoint == "" {
		log.Println("MinIO endpoint not set; storage calls will fail until configured")
		return &MinioClient{}, nil
	}

	host, secure, err := splitEndpoint(cfg.StorageEndpoint, cfg.StorageUseSSL)
	if err != nil {
		return nil, err
	}

	mc, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageServiceKey, ""),
		Secure: secure,
		Region: cfg.StorageRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("minio init: %w", err)
	}
	log.Printf("MinIO client configured for %s", host)
	return &MinioClient{client: mc}, nil
}

// splitEndpoint accepts "host:port" or a URL and returns the host and TLS flag.
func splitEndpoint(endpoint string, defaultSecure bool) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), defaultSecure, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid STORAGE_ENDPOINT: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid STORAGE_ENDPOINT %q", endpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

func (c *MinioClient) CreateSignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if c.client == nil {
		return "", errNoEndpoint
	}
	ctxStat, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := c.client.StatObject(ctxStat, bucket, key, minio.StatObjectOptions{}); err != nil {
		return "", fmt.Errorf("minio stat failed: %w", err)
	}
	u, err := c.client.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("minio presign failed: %w", err)
	}
	return u.String(), nil
}

func (c *MinioClient) UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if c.client == nil {
		return errNoEndpoint
	}
	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := c.client.PutObject(ctxUpload, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("minio upload failed: %w", err)
	}
	return nil
}
