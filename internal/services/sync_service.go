package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/trace"

	"github.com/docsync/server/internal/destination"
	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/observability"
	"github.com/docsync/server/internal/repository"
	"github.com/docsync/server/internal/source"
)

// SyncService drives links through the sync state machine: fetch, detect,
// delete old, upload new, persist. The destination offers no in-place
// update, so every content change is a delete + re-create.
type SyncService struct {
	links    repository.LinkRepo
	sources  source.Resolver
	index    destination.Index
	hash     *HashService
	detector *ChangeDetector
	clock    clockwork.Clock
	hub      *SyncEventHub
	metrics  *observability.SyncMetrics
}

// NewSyncService creates a new SyncService
func NewSyncService(
	links repository.LinkRepo,
	sources source.Resolver,
	index destination.Index,
	hash *HashService,
	detector *ChangeDetector,
	clock clockwork.Clock,
) *SyncService {
	return &SyncService{
		links:    links,
		sources:  sources,
		index:    index,
		hash:     hash,
		detector: detector,
		clock:    clock,
	}
}

// SetEventHub attaches a hub for link status broadcasts
func (s *SyncService) SetEventHub(hub *SyncEventHub) {
	s.hub = hub
}

// SetMetrics attaches sync metrics instruments
func (s *SyncService) SetMetrics(metrics *observability.SyncMetrics) {
	s.metrics = metrics
}

// CreateLink registers a new source-to-destination binding. The source must
// be reachable at creation time; its metadata seeds the link's display name
// and last-observed modification time. The content hash stays empty until
// the first sync.
func (s *SyncService) CreateLink(ctx context.Context, req models.CreateLinkRequest) (*models.SyncLink, error) {
	link, err := models.NewSyncLink(req.SourceClass, req.SourceLocator, "", req.StoreID, req.SyncMode, req.SyncIntervalMinutes)
	if err != nil {
		return nil, err
	}

	src := s.sources.For(link.SourceClass)
	if src == nil {
		return nil, fmt.Errorf("no source adapter registered for class %q", link.SourceClass)
	}

	meta, err := src.FetchMetadata(ctx, link.SourceLocator)
	if err != nil {
		return nil, err
	}

	existing, err := s.links.GetByLocator(ctx, link.SourceLocator, link.StoreID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrDuplicateLink
	}

	link.SourceDisplayName = meta.DisplayName
	link.ContentSize = meta.Size
	modifiedAt := meta.ModifiedAt
	link.ContentModifiedAt = &modifiedAt
	link.MimeType = meta.MimeType

	if err := s.links.Add(ctx, link); err != nil {
		return nil, err
	}

	log.Printf("Sync link created: %s (%s %s -> store %s)", link.ID, link.SourceClass, link.SourceLocator, link.StoreID)
	return link, nil
}

// GetLink retrieves a link by ID
func (s *SyncService) GetLink(ctx context.Context, linkID string) (*models.SyncLink, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, models.ErrLinkNotFound
	}
	return link, nil
}

// ListLinks retrieves links matching the filter
func (s *SyncService) ListLinks(ctx context.Context, filter repository.LinkFilter) ([]*models.SyncLink, error) {
	return s.links.List(ctx, filter)
}

// DeleteLink removes a link, optionally cascading a delete of its current
// destination document. A destination delete failure does not block the
// link's removal; it is reported back to the caller.
func (s *SyncService) DeleteLink(ctx context.Context, linkID string, deleteFromDestination bool) (*models.DeleteLinkResponse, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, models.ErrLinkNotFound
	}

	resp := &models.DeleteLinkResponse{ID: linkID}
	if deleteFromDestination && link.DocumentID != nil {
		if err := s.index.Delete(ctx, link.StoreID, *link.DocumentID); err != nil {
			log.Printf("Could not delete document %s from store %s: %v", *link.DocumentID, link.StoreID, err)
			resp.DestinationDeleteErr = err.Error()
		} else {
			resp.DeletedFromStore = true
		}
	}

	if _, err := s.links.Delete(ctx, linkID); err != nil {
		return nil, err
	}

	log.Printf("Sync link deleted: %s", linkID)
	return resp, nil
}

// Sync drives one link through a full sync attempt. On terminal failure the
// link is left in the error state with the failure message, and the error is
// returned alongside the link's final state.
func (s *SyncService) Sync(ctx context.Context, linkID string, force bool) (*models.SyncLink, error) {
	ctx, span := observability.StartServiceSpan(ctx, "sync", "Sync")
	defer span.End()
	span.SetAttributes(observability.LinkID(linkID))

	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, models.ErrLinkNotFound
	}
	span.SetAttributes(
		observability.StoreID(link.StoreID),
		observability.SourceClass(string(link.SourceClass)),
	)

	src := s.sources.For(link.SourceClass)
	if src == nil {
		return nil, fmt.Errorf("no source adapter registered for class %q", link.SourceClass)
	}

	// Persist the transient state first so concurrent readers observe the
	// sync in progress
	link.Status = models.StatusSyncing
	link.ErrorMessage = ""
	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}
	s.notify(link)

	meta, err := src.FetchMetadata(ctx, link.SourceLocator)
	if err != nil {
		return link, s.fail(ctx, span, link, err)
	}

	content, err := s.readContent(ctx, src, link.SourceLocator)
	if err != nil {
		return link, s.fail(ctx, span, link, err)
	}
	currentHash := s.hash.ComputeHashBytes(content)

	if !s.detector.NeedsSync(force, link, meta, currentHash) {
		log.Printf("Link %s unchanged, skipping sync", link.ID)
		now := s.clock.Now().UTC()
		link.Status = models.StatusSynced
		link.LastSyncedAt = &now
		if err := s.links.Update(ctx, link); err != nil {
			return nil, err
		}
		s.notify(link)
		s.metrics.RecordSync(ctx, string(link.SourceClass), "unchanged")
		observability.SetSuccess(span)
		return link, nil
	}

	// Best-effort cleanup of the stale document. A failed delete may leave
	// it lingering in the store, but must never abort the replacement.
	if link.DocumentID != nil {
		log.Printf("Deleting old document %s from store %s", *link.DocumentID, link.StoreID)
		if err := s.index.Delete(ctx, link.StoreID, *link.DocumentID); err != nil {
			log.Printf("Could not delete old document %s: %v", *link.DocumentID, err)
		}
	}

	metadata := map[string]string{
		"source_locator": link.SourceLocator,
		"synced_from":    string(link.SourceClass),
		"content_hash":   currentHash,
		"last_modified":  meta.ModifiedAt.Format(time.RFC3339),
	}

	uploadStart := s.clock.Now()
	documentID, err := s.index.Upload(ctx, link.StoreID, bytes.NewReader(content), meta.DisplayName, metadata)
	s.metrics.RecordUploadDuration(ctx, s.clock.Since(uploadStart))
	if err != nil {
		s.metrics.RecordSync(ctx, string(link.SourceClass), "error")
		return link, s.fail(ctx, span, link, err)
	}

	now := s.clock.Now().UTC()
	modifiedAt := meta.ModifiedAt
	link.DocumentID = &documentID
	link.SourceDisplayName = meta.DisplayName
	link.ContentHash = currentHash
	link.ContentSize = meta.Size
	link.ContentModifiedAt = &modifiedAt
	link.MimeType = meta.MimeType
	link.LastSyncedAt = &now
	link.Status = models.StatusSynced
	link.ErrorMessage = ""
	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}

	log.Printf("Synced link %s to document %s", link.ID, documentID)
	s.notify(link)
	s.metrics.RecordSync(ctx, string(link.SourceClass), "synced")
	observability.SetSuccess(span)
	return link, nil
}

// SyncAll syncs every link matching the filter. A failing link is recorded
// in its own state and never blocks the rest of the batch; the returned
// slice carries each link's final state, successes and failures together.
func (s *SyncService) SyncAll(ctx context.Context, storeID string, class models.SourceClass, autoOnly bool) ([]*models.SyncLink, error) {
	links, err := s.links.List(ctx, repository.LinkFilter{
		StoreID:     storeID,
		SourceClass: class,
		AutoOnly:    autoOnly,
	})
	if err != nil {
		return nil, err
	}

	results := make([]*models.SyncLink, 0, len(links))
	for _, link := range links {
		synced, err := s.Sync(ctx, link.ID, false)
		if err != nil {
			log.Printf("Error syncing link %s: %v", link.ID, err)
			if synced == nil {
				synced = link
			}
		}
		results = append(results, synced)
	}

	return results, nil
}

func (s *SyncService) readContent(ctx context.Context, src source.Source, locator string) ([]byte, error) {
	rc, err := src.FetchContent(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading content: %v", models.ErrSourceUnavailable, err)
	}
	return content, nil
}

// fail moves the link to the error state with the failure message. The
// persist is best-effort: the original failure is what callers see.
func (s *SyncService) fail(ctx context.Context, span trace.Span, link *models.SyncLink, cause error) error {
	link.Status = models.StatusError
	link.ErrorMessage = cause.Error()
	if err := s.links.Update(ctx, link); err != nil {
		log.Printf("Could not persist error state for link %s: %v", link.ID, err)
	}
	s.notify(link)
	observability.RecordError(span, cause)
	return cause
}

func (s *SyncService) notify(link *models.SyncLink) {
	if s.hub != nil {
		s.hub.BroadcastLinkStatus(link)
	}
}
