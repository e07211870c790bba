package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/spec-kit/event-ticketing/internal/config"
)

// Object key prefixes.
const (
	PrefixAvatars = "avatars"
	PrefixEvents  = "events"
)

// Upload is a presigned PUT the client uses to send an image straight to the bucket.
type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Presigner hands out upload URLs for images.
type Presigner interface {
	PresignUpload(ctx context.Context, prefix string) (Upload, error)
}

// ImageStore presigns uploads against an S3-compatible bucket.
type ImageStore struct {
	bucket  string
	expires time.Duration
	client  *s3.PresignClient
	now     func() time.Time
}

// NewImageStore builds the S3 presign client from static credentials.
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (*ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	expires := time.Duration(cfg.PresignMinutes) * time.Minute
	if expires <= 0 {
		expires = 15 * time.Minute
	}

	return &ImageStore{
		bucket:  cfg.Bucket,
		expires: expires,
		client:  s3.NewPresignClient(client),
		now:     time.Now,
	}, nil
}

// PresignUpload returns a PUT URL for a fresh object key under prefix.
func (s *ImageStore) PresignUpload(ctx context.Context, prefix string) (Upload, error) {
	now := s.now().UTC()
	key := objectKey(prefix, now)

	req, err := s.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		return Upload{}, fmt.Errorf("presign put %s: %w", key, err)
	}

	return Upload{Key: key, URL: req.URL, ExpiresAt: now.Add(s.expires)}, nil
}

func objectKey(prefix string, at time.Time) string {
	return fmt.Sprintf("%s/%d/%d/%d/%s", prefix, at.Year(), at.Month(), at.Day(), uuid.New())
}
