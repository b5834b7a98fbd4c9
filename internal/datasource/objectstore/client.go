// Package objectstore implements a data source over an S3-compatible
// bucket. The bucket is reached through the small Client interface so that
// tests can substitute an in-memory store.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"wrangle/internal/config"
	"wrangle/internal/datasource"
)

// Client abstracts the two object-store calls the source needs.
type Client interface {
	ListPrefix(ctx context.Context, bucket, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// S3Client implements Client with minio-go against MinIO or AWS S3.
type S3Client struct {
	client *minio.Client
}

// NewS3Client creates a client from the s3 source section of a pipeline
// config. The endpoint may be a bare host or a URL; an https scheme turns
// TLS on.
func NewS3Client(cfg config.SourceBucket) (*S3Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("s3: credentials are required")
	}

	endpoint, useSSL := cfg.Endpoint, cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			useSSL = true
		}
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	return &S3Client{client: client}, nil
}

// ListPrefix returns every key under prefix, recursively, in listing order.
func (s *S3Client) ListPrefix(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string
	objectCh := s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objectCh {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// GetObject fetches the whole object. Errors from minio surface lazily on
// the first read, so the object is read here to report them at open time.
func (s *S3Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// classify maps minio-go errors onto access error codes.
func classify(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return datasource.CodeTimeout
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchBucket", "NoSuchKey":
		return datasource.CodeNotFound
	case "AccessDenied":
		return datasource.CodePermissionDenied
	case "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return datasource.CodeAuthInvalid
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such bucket"), strings.Contains(msg, "no such key"),
		strings.Contains(msg, "does not exist"):
		return datasource.CodeNotFound
	case strings.Contains(msg, "access denied"):
		return datasource.CodePermissionDenied
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return datasource.CodeTimeout
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return datasource.CodeUnreachable
	default:
		return datasource.CodeUnknown
	}
}
