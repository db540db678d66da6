package services

import (
	"bytes"
	"context"
	"log"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/docsync/server/internal/destination"
	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/observability"
	"github.com/docsync/server/internal/repository"
)

// VersionService implements the explicit, versioned replace operation and
// the version ledger reads. Unlike routine re-sync, a replace increments the
// link's version and appends the prior document identity to its history.
type VersionService struct {
	links repository.LinkRepo
	index destination.Index
	hash  *HashService
	clock clockwork.Clock
	hub   *SyncEventHub
}

// NewVersionService creates a new VersionService
func NewVersionService(links repository.LinkRepo, index destination.Index, hash *HashService, clock clockwork.Clock) *VersionService {
	return &VersionService{
		links: links,
		index: index,
		hash:  hash,
		clock: clock,
	}
}

// SetEventHub attaches a hub for link status broadcasts
func (s *VersionService) SetEventHub(hub *SyncEventHub) {
	s.hub = hub
}

// Replace swaps the link's current destination document for new content,
// bumping the version and recording the prior document in the ledger. The
// link must have completed at least one sync.
//
// The old document is deleted before the new one is uploaded, mirroring the
// sync path. An upload failure therefore leaves the link without a current
// destination document until the next successful sync or replace; nothing
// is persisted in that case so version and history stay untouched.
func (s *VersionService) Replace(ctx context.Context, linkID string, content []byte, filename string) (*models.ReplaceResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "version", "Replace")
	defer span.End()
	span.SetAttributes(observability.LinkID(linkID))

	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, models.ErrLinkNotFound
	}
	if link.DocumentID == nil {
		observability.RecordError(span, models.ErrNotYetSynced)
		return nil, models.ErrNotYetSynced
	}

	oldDocumentID := *link.DocumentID
	oldVersion := link.Version
	now := s.clock.Now().UTC()

	log.Printf("Replacing document for link %s, old document: %s", link.ID, oldDocumentID)

	// Ledger append happens in memory here and is committed atomically with
	// the rest of the link below
	link.AppendVersion(oldDocumentID, oldVersion, now)

	// Best-effort delete; the new upload proceeds regardless
	if err := s.index.Delete(ctx, link.StoreID, oldDocumentID); err != nil {
		log.Printf("Could not delete old document %s: %v", oldDocumentID, err)
	}

	displayName := filename
	if displayName == "" {
		displayName = link.SourceDisplayName
	}

	newVersion := oldVersion + 1
	metadata := map[string]string{
		"previous_document_id": oldDocumentID,
		"version":              strconv.Itoa(newVersion),
		"synced_from":          string(link.SourceClass),
		"updated_at":           now.Format(time.RFC3339),
	}

	newDocumentID, err := s.index.Upload(ctx, link.StoreID, bytes.NewReader(content), displayName, metadata)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	link.DocumentID = &newDocumentID
	link.Version = newVersion
	link.ContentHash = s.hash.ComputeHashBytes(content)
	link.ContentSize = int64(len(content))
	link.ContentModifiedAt = &now
	link.LastSyncedAt = &now
	link.Status = models.StatusSynced
	link.ErrorMessage = ""
	if filename != "" {
		link.SourceDisplayName = filename
	}
	link.CaptureOriginalSource(link.SourceLocator)

	if err := s.links.Update(ctx, link); err != nil {
		return nil, err
	}

	log.Printf("Replaced document for link %s: %s -> %s, version %d", link.ID, oldDocumentID, newDocumentID, newVersion)
	if s.hub != nil {
		s.hub.BroadcastLinkStatus(link)
	}
	span.SetAttributes(observability.Version(int64(newVersion)))
	observability.SetSuccess(span)

	return &models.ReplaceResult{
		LinkID:        link.ID,
		NewVersion:    newVersion,
		NewDocumentID: newDocumentID,
		OldDocumentID: oldDocumentID,
	}, nil
}

// GetVersionHistory returns the link's current version, current document id
// and the ordered ledger of prior document identities. Pure read.
func (s *VersionService) GetVersionHistory(ctx context.Context, linkID string) (*models.VersionHistory, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, models.ErrLinkNotFound
	}

	history := &models.VersionHistory{
		LinkID:           link.ID,
		FileName:         link.SourceDisplayName,
		CurrentVersion:   link.Version,
		PreviousVersions: link.VersionHistory,
		CreatedAt:        link.CreatedAt,
		UpdatedAt:        link.UpdatedAt,
	}
	if link.DocumentID != nil {
		history.CurrentDocumentID = *link.DocumentID
	}
	return history, nil
}
