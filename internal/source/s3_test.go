package source

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsync/server/internal/models"
)

// stubS3 serves canned objects keyed by "bucket/key"
type stubS3 struct {
	objects map[string]stubObject
}

type stubObject struct {
	body         string
	contentType  string
	lastModified time.Time
}

func (s *stubS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	obj, ok := s.objects[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, errors.New("NotFound")
	}

	out := &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.body))),
		LastModified:  aws.Time(obj.lastModified),
	}
	if obj.contentType != "" {
		out.ContentType = aws.String(obj.contentType)
	}
	return out, nil
}

func (s *stubS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, ok := s.objects[*params.Bucket+"/"+*params.Key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(obj.body))}, nil
}

func TestS3Source_FetchMetadata(t *testing.T) {
	ctx := context.Background()
	modTime := time.Date(2026, 1, 12, 14, 0, 0, 0, time.UTC)

	stub := &stubS3{objects: map[string]stubObject{
		"content/reports/q1.pdf": {body: "pdf bytes", contentType: "application/pdf", lastModified: modTime},
		"content/raw/blob":       {body: "data", lastModified: modTime},
	}}
	src := &S3Source{client: stub, bucket: "content"}

	t.Run("describes an existing object", func(t *testing.T) {
		meta, err := src.FetchMetadata(ctx, "reports/q1.pdf")
		require.NoError(t, err)

		assert.Equal(t, "q1.pdf", meta.DisplayName)
		assert.Equal(t, int64(9), meta.Size)
		assert.Equal(t, modTime, meta.ModifiedAt)
		assert.Equal(t, "application/pdf", meta.MimeType)
	})

	t.Run("missing content type falls back to octet-stream", func(t *testing.T) {
		meta, err := src.FetchMetadata(ctx, "raw/blob")
		require.NoError(t, err)

		assert.Equal(t, "application/octet-stream", meta.MimeType)
	})

	t.Run("missing object reports source unavailable", func(t *testing.T) {
		_, err := src.FetchMetadata(ctx, "reports/missing.pdf")
		assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	})
}

func TestS3Source_FetchContent(t *testing.T) {
	ctx := context.Background()

	stub := &stubS3{objects: map[string]stubObject{
		"content/reports/q1.pdf": {body: "pdf bytes"},
	}}
	src := &S3Source{client: stub, bucket: "content"}

	t.Run("streams object content", func(t *testing.T) {
		rc, err := src.FetchContent(ctx, "reports/q1.pdf")
		require.NoError(t, err)
		defer rc.Close()

		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "pdf bytes", string(content))
	})

	t.Run("missing object reports source unavailable", func(t *testing.T) {
		_, err := src.FetchContent(ctx, "reports/missing.pdf")
		assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	})
}
