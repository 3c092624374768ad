package assets

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objectPrefix namespaces stored assets inside the bucket.
const objectPrefix = "uploads/"

// MinioConfig carries the object-storage settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Minio stores assets as objects in a single bucket.
type Minio struct {
	client *minio.Client
	bucket string
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		secure = (u.Scheme == "https")
		return u.Host, secure, nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// NewMinio connects to the object store and verifies the bucket exists.
func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("assets: minio client: %w", err)
	}

	// Sanity check: bucket must exist.
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("assets: bucket check: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("assets: bucket does not exist: %s", cfg.Bucket)
	}

	return &Minio{client: client, bucket: cfg.Bucket}, nil
}

func (m *Minio) Save(ctx context.Context, r io.Reader, origName, contentType string) (Asset, error) {
	name := newName(origName)

	_, err := m.client.PutObject(ctx, m.bucket, objectPrefix+name, r, -1,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Asset{}, fmt.Errorf("assets: put object: %w", err)
	}

	return Asset{Path: pathPrefix + name, ContentType: contentType}, nil
}

func (m *Minio) Open(ctx context.Context, name string) (io.ReadCloser, int64, string, error) {
	if !validName(name) {
		return nil, 0, "", ErrNotFound
	}

	obj, err := m.client.GetObject(ctx, m.bucket, objectPrefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, "", fmt.Errorf("assets: get object: %w", err)
	}

	// GetObject is lazy; Stat forces the error for a missing object.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, "", ErrNotFound
		}
		return nil, 0, "", fmt.Errorf("assets: stat object: %w", err)
	}

	return obj, info.Size, info.ContentType, nil
}

func (m *Minio) Check(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("assets: bucket check: %w", err)
	}
	if !exists {
		return fmt.Errorf("assets: bucket does not exist: %s", m.bucket)
	}
	return nil
}
