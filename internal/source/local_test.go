package source

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsync/server/internal/models"
)

func newMemSource(t *testing.T) (*LocalSource, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewLocalSource(fs), fs
}

func TestLocalSource_FetchMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("describes an existing file", func(t *testing.T) {
		src, fs := newMemSource(t)
		require.NoError(t, afero.WriteFile(fs, "/docs/report.txt", []byte("hello world"), 0644))
		modTime := time.Date(2026, 1, 10, 8, 30, 0, 0, time.UTC)
		require.NoError(t, fs.Chtimes("/docs/report.txt", modTime, modTime))

		meta, err := src.FetchMetadata(ctx, "/docs/report.txt")
		require.NoError(t, err)

		assert.Equal(t, "report.txt", meta.DisplayName)
		assert.Equal(t, int64(11), meta.Size)
		assert.Equal(t, modTime, meta.ModifiedAt)
		assert.Contains(t, meta.MimeType, "text/plain")
	})

	t.Run("unknown extension falls back to octet-stream", func(t *testing.T) {
		src, fs := newMemSource(t)
		require.NoError(t, afero.WriteFile(fs, "/docs/blob.xyz123", []byte("data"), 0644))

		meta, err := src.FetchMetadata(ctx, "/docs/blob.xyz123")
		require.NoError(t, err)

		assert.Equal(t, "application/octet-stream", meta.MimeType)
	})

	t.Run("missing file reports source unavailable", func(t *testing.T) {
		src, _ := newMemSource(t)

		_, err := src.FetchMetadata(ctx, "/nope.txt")
		assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	})

	t.Run("directory reports source unavailable", func(t *testing.T) {
		src, fs := newMemSource(t)
		require.NoError(t, fs.MkdirAll("/docs", 0755))

		_, err := src.FetchMetadata(ctx, "/docs")
		assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	})
}

func TestLocalSource_FetchContent(t *testing.T) {
	ctx := context.Background()

	t.Run("streams file content", func(t *testing.T) {
		src, fs := newMemSource(t)
		require.NoError(t, afero.WriteFile(fs, "/docs/report.txt", []byte("hello world"), 0644))

		rc, err := src.FetchContent(ctx, "/docs/report.txt")
		require.NoError(t, err)
		defer rc.Close()

		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello world"), content)
	})

	t.Run("missing file reports source unavailable", func(t *testing.T) {
		src, _ := newMemSource(t)

		_, err := src.FetchContent(ctx, "/nope.txt")
		assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	})
}

func TestResolver_For(t *testing.T) {
	src, _ := newMemSource(t)
	resolver := Resolver{models.SourceClassLocal: src}

	assert.Equal(t, src, resolver.For(models.SourceClassLocal))
	assert.Nil(t, resolver.For(models.SourceClassRemote))
}
