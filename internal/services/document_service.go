package services

import (
	"bytes"
	"context"
	"log"

	"github.com/docsync/server/internal/destination"
	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/repository"
)

// DocumentService handles direct document uploads with content-hash
// duplicate rejection. Link-driven sync and replace bypass this path: a
// link legitimately replaces its own prior content.
type DocumentService struct {
	documents repository.DocumentRepo
	index     destination.Index
	hash      *HashService
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(documents repository.DocumentRepo, index destination.Index, hash *HashService) *DocumentService {
	return &DocumentService{
		documents: documents,
		index:     index,
		hash:      hash,
	}
}

// Upload indexes new content unless byte-identical content already exists in
// the store. The outcome is a tagged result: Conflict carries the existing
// document when the upload is rejected; force bypasses the check and records
// a second entry.
func (s *DocumentService) Upload(ctx context.Context, storeID string, content []byte, filename string, mimeType string, force bool) (*models.UploadOutcome, error) {
	contentHash := s.hash.ComputeHashBytes(content)

	if !force {
		existing, err := s.documents.GetByHash(ctx, contentHash, storeID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			log.Printf("Duplicate upload rejected: %s matches document %q uploaded %s",
				filename, existing.DisplayName, existing.UploadedAt.Format("2006-01-02 15:04:05"))
			return &models.UploadOutcome{Conflict: existing}, nil
		}
	}

	metadata := map[string]string{
		"content_hash": contentHash,
	}
	documentID, err := s.index.Upload(ctx, storeID, bytes.NewReader(content), filename, metadata)
	if err != nil {
		return nil, err
	}

	doc, err := models.NewDocument(documentID, storeID, filename, filename, contentHash, int64(len(content)), mimeType)
	if err != nil {
		return nil, err
	}

	if err := s.documents.Add(ctx, doc); err != nil {
		// The upload already succeeded; a tracking failure must not undo it
		log.Printf("Could not record document %s for dedup tracking: %v", documentID, err)
	}

	log.Printf("Document uploaded: %s to store %s", documentID, storeID)
	return &models.UploadOutcome{Document: doc}, nil
}

// List returns the tracked documents, optionally filtered by store
func (s *DocumentService) List(ctx context.Context, storeID string) ([]*models.Document, error) {
	return s.documents.List(ctx, storeID)
}

// Delete removes a tracked document from the destination store and from the
// duplicate table
func (s *DocumentService) Delete(ctx context.Context, id string) (bool, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	if err := s.index.Delete(ctx, doc.StoreID, doc.DocumentID); err != nil {
		log.Printf("Could not delete document %s from store %s: %v", doc.DocumentID, doc.StoreID, err)
	}

	return s.documents.Delete(ctx, id)
}
