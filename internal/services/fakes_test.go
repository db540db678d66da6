package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/repository"
	"github.com/docsync/server/internal/source"
)

// fakeLinkRepo is an in-memory LinkRepo. Reads return copies so tests can
// tell apart in-memory mutation from a persisted Update.
type fakeLinkRepo struct {
	mu    sync.Mutex
	links map[string]*models.SyncLink
	order []string
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string]*models.SyncLink)}
}

func cloneLink(link *models.SyncLink) *models.SyncLink {
	clone := *link
	clone.VersionHistory = append([]models.VersionEntry(nil), link.VersionHistory...)
	return &clone
}

func (r *fakeLinkRepo) GetByID(ctx context.Context, id string) (*models.SyncLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[id]
	if !ok {
		return nil, nil
	}
	return cloneLink(link), nil
}

func (r *fakeLinkRepo) GetByLocator(ctx context.Context, locator, storeID string) (*models.SyncLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		link := r.links[id]
		if link.SourceLocator == locator && link.StoreID == storeID {
			return cloneLink(link), nil
		}
	}
	return nil, nil
}

func (r *fakeLinkRepo) List(ctx context.Context, filter repository.LinkFilter) ([]*models.SyncLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.SyncLink
	for _, id := range r.order {
		link := r.links[id]
		if filter.StoreID != "" && link.StoreID != filter.StoreID {
			continue
		}
		if filter.SourceClass != "" && link.SourceClass != filter.SourceClass {
			continue
		}
		if filter.AutoOnly && link.SyncMode != models.SyncModeAuto {
			continue
		}
		out = append(out, cloneLink(link))
	}
	return out, nil
}

func (r *fakeLinkRepo) Add(ctx context.Context, link *models.SyncLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[link.ID] = cloneLink(link)
	r.order = append(r.order, link.ID)
	return nil
}

func (r *fakeLinkRepo) Update(ctx context.Context, link *models.SyncLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[link.ID]; !ok {
		return models.ErrLinkNotFound
	}
	r.links[link.ID] = cloneLink(link)
	return nil
}

func (r *fakeLinkRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.links[id]; !ok {
		return false, nil
	}
	delete(r.links, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// fakeDocumentRepo is an in-memory DocumentRepo
type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*models.Document)}
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	clone := *doc
	return &clone, nil
}

func (r *fakeDocumentRepo) GetByHash(ctx context.Context, contentHash, storeID string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.ContentHash == contentHash && doc.StoreID == storeID {
			clone := *doc
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) List(ctx context.Context, storeID string) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for _, doc := range r.docs {
		if storeID != "" && doc.StoreID != storeID {
			continue
		}
		clone := *doc
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeDocumentRepo) Add(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *doc
	r.docs[doc.ID] = &clone
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return false, nil
	}
	delete(r.docs, id)
	return true, nil
}

// fakeSourceFile is one piece of content served by fakeSource
type fakeSourceFile struct {
	content    []byte
	modifiedAt time.Time
	mimeType   string
}

// fakeSource serves canned content keyed by locator
type fakeSource struct {
	mu    sync.Mutex
	files map[string]fakeSourceFile
}

func newFakeSource() *fakeSource {
	return &fakeSource{files: make(map[string]fakeSourceFile)}
}

func (s *fakeSource) put(locator string, content []byte, modifiedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[locator] = fakeSourceFile{content: content, modifiedAt: modifiedAt, mimeType: "text/plain"}
}

func (s *fakeSource) remove(locator string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, locator)
}

func (s *fakeSource) FetchMetadata(ctx context.Context, locator string) (*source.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[locator]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSourceUnavailable, locator)
	}
	return &source.Metadata{
		DisplayName: locator,
		ModifiedAt:  f.modifiedAt,
		Size:        int64(len(f.content)),
		MimeType:    f.mimeType,
	}, nil
}

func (s *fakeSource) FetchContent(ctx context.Context, locator string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[locator]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSourceUnavailable, locator)
	}
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

// fakeIndex records uploads and deletes against the destination store
type fakeIndex struct {
	mu        sync.Mutex
	nextID    int
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{}
}

func (f *fakeIndex) Upload(ctx context.Context, storeID string, content io.Reader, filename string, metadata map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.uploads = append(f.uploads, id)
	return id, nil
}

func (f *fakeIndex) Delete(ctx context.Context, storeID, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, documentID)
	return nil
}

func (f *fakeIndex) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakeIndex) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deletes)
}
