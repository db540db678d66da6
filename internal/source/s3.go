package source

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/docsync/server/internal/config"
	"github.com/docsync/server/internal/models"
)

// s3API is the slice of the S3 client the source needs
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads remote cloud-hosted content. The locator is the object key
// within the configured bucket.
type S3Source struct {
	client s3API
	bucket string
}

// NewS3Source creates an S3Source from configuration
func NewS3Source(ctx context.Context, cfg config.RemoteSource) (*S3Source, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{client: client, bucket: cfg.Bucket}, nil
}

// FetchMetadata heads the object at the locator key
func (s *S3Source) FetchMetadata(ctx context.Context, locator string) (*Metadata, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3://%s/%s", models.ErrSourceUnavailable, s.bucket, locator)
	}

	meta := &Metadata{
		DisplayName: path.Base(locator),
		MimeType:    "application/octet-stream",
	}
	if out.LastModified != nil {
		meta.ModifiedAt = out.LastModified.UTC()
	}
	if out.ContentLength != nil {
		meta.Size = *out.ContentLength
	}
	if out.ContentType != nil && *out.ContentType != "" {
		meta.MimeType = *out.ContentType
	}

	return meta, nil
}

// FetchContent downloads the object at the locator key
func (s *S3Source) FetchContent(ctx context.Context, locator string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(locator),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: s3://%s/%s", models.ErrSourceUnavailable, s.bucket, locator)
	}
	return out.Body, nil
}
