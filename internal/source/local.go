package source

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/docsync/server/internal/models"
)

// LocalSource reads content from the server's filesystem. The filesystem is
// injected (afero.Fs) so tests can run against an in-memory tree.
type LocalSource struct {
	fs afero.Fs
}

// NewLocalSource creates a LocalSource backed by the given filesystem
func NewLocalSource(fs afero.Fs) *LocalSource {
	return &LocalSource{fs: fs}
}

// FetchMetadata stats the file at the locator path
func (s *LocalSource) FetchMetadata(ctx context.Context, locator string) (*Metadata, error) {
	info, err := s.fs.Stat(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrSourceUnavailable, locator)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", models.ErrSourceUnavailable, locator)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(locator))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &Metadata{
		DisplayName: filepath.Base(locator),
		ModifiedAt:  info.ModTime().UTC(),
		Size:        info.Size(),
		MimeType:    mimeType,
	}, nil
}

// FetchContent opens the file at the locator path
func (s *LocalSource) FetchContent(ctx context.Context, locator string) (io.ReadCloser, error) {
	f, err := s.fs.Open(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrSourceUnavailable, locator)
	}
	return f, nil
}
