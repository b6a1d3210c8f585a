package avatar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const DefaultPresignExpiry = time.Hour

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
	Expiry    time.Duration
}

// S3Resolver signs short-lived GET URLs for avatars kept in an S3 bucket.
type S3Resolver struct {
	client *minio.Client
	bucket string
	prefix string
	expiry time.Duration
}

func NewS3Resolver(cfg S3Config) (*S3Resolver, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return &S3Resolver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
		expiry: expiry,
	}, nil
}

// Expiry is how long signed URLs stay valid.
func (s *S3Resolver) Expiry() time.Duration { return s.expiry }

func (s *S3Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || IsAbsolute(ref) {
		return ref, nil
	}
	if s == nil || s.client == nil {
		return "", fmt.Errorf("resolver is nil")
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, s.objectKey(ref), s.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", ref, err)
	}
	return u.String(), nil
}

func (s *S3Resolver) objectKey(ref string) string {
	key := strings.TrimLeft(ref, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}
