package destination

import (
	"context"
	"io"
)

// Index is the boundary to the hosted document index. The store offers no
// in-place update: callers replace content by deleting and re-uploading.
type Index interface {
	// Upload indexes new content and returns the destination document id.
	// Indexing is asynchronous at the destination; implementations wait
	// (bounded) for completion.
	Upload(ctx context.Context, storeID string, content io.Reader, filename string, metadata map[string]string) (string, error)

	// Delete removes a document. Idempotent from the caller's perspective:
	// deleting an already-gone document is not an error.
	Delete(ctx context.Context, storeID, documentID string) error
}
