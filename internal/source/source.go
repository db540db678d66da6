package source

import (
	"context"
	"io"
	"time"

	"github.com/docsync/server/internal/models"
)

// Metadata is the explicit, fully-typed description of a source file.
// Adapters fill every field; there is no optional attribute probing.
type Metadata struct {
	DisplayName string
	ModifiedAt  time.Time
	Size        int64
	MimeType    string
}

// Source abstracts one class of external content origin. Both operations
// fail with models.ErrSourceUnavailable (wrapped) when the locator is
// missing or unreadable.
type Source interface {
	FetchMetadata(ctx context.Context, locator string) (*Metadata, error)
	FetchContent(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Resolver maps a link's source class to its adapter
type Resolver map[models.SourceClass]Source

// For returns the adapter for the given class, or nil if unregistered
func (r Resolver) For(class models.SourceClass) Source {
	return r[class]
}
