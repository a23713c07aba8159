// Package objectstore stores uploaded evidence in S3-compatible object storage.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/crimetracker/crimetracker-api/internal/ports"
)

const (
	maxIdleConns        = 100
	maxIdleConnsPerHost = 100
	idleConnTimeout     = 90 * time.Second
)

// Config configures the evidence bucket.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

func (c Config) validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("storage endpoint is required")
	case c.Bucket == "":
		return errors.New("storage bucket is required")
	case c.AccessKey == "" || c.SecretKey == "":
		return errors.New("storage credentials are required")
	}
	return nil
}

// MinioStore implements ports.EvidenceStore with minio-go.
type MinioStore struct {
	client *minio.Client
	bucket string
	region string
}

// NewMinioStore creates the client. It does not contact the server; call
// EnsureBucket at startup for that.
func NewMinioStore(cfg Config) (*MinioStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
		Transport: &http.Transport{
			MaxIdleConns:        maxIdleConns,
			MaxIdleConnsPerHost: maxIdleConnsPerHost,
			IdleConnTimeout:     idleConnTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket creates the evidence bucket when it does not exist.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put uploads obj.
func (s *MinioStore) Put(ctx context.Context, obj ports.EvidenceObject) error {
	if obj.Key == "" || obj.Body == nil {
		return errors.New("object key and body are required")
	}
	_, err := s.client.PutObject(ctx, s.bucket, obj.Key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", obj.Key, err)
	}
	return nil
}

// URL returns a presigned GET link valid for expiry.
func (s *MinioStore) URL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", key, err)
	}
	return u.String(), nil
}

// Remove deletes the object. Missing objects are not an error.
func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// Health checks that the bucket is reachable.
func (s *MinioStore) Health(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("storage health: %w", err)
	}
	return nil
}

var _ ports.EvidenceStore = (*MinioStore)(nil)
