package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is the duplicate-rejection record kept for direct (non-link)
// uploads. Keyed by (content_hash, store_id); link-driven sync and replace
// bypass this table entirely.
type Document struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"documentId"`
	StoreID     string    `json:"storeId"`
	Filename    string    `json:"filename"`
	DisplayName string    `json:"displayName"`
	ContentHash string    `json:"contentHash"`
	ContentSize int64     `json:"contentSize"`
	MimeType    string    `json:"mimeType,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// NewDocument creates a tracked document record with validation
func NewDocument(documentID, storeID, filename, displayName, contentHash string, contentSize int64, mimeType string) (*Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, ErrEmptyDocumentID
	}
	if strings.TrimSpace(storeID) == "" {
		return nil, ErrEmptyStoreID
	}
	if strings.TrimSpace(contentHash) == "" {
		return nil, ErrEmptyHash
	}
	if strings.TrimSpace(filename) == "" {
		return nil, ErrEmptyFilename
	}
	if displayName == "" {
		displayName = filename
	}

	return &Document{
		ID:          uuid.New().String(),
		DocumentID:  documentID,
		StoreID:     storeID,
		Filename:    sanitizeFilename(filename),
		DisplayName: displayName,
		ContentHash: strings.ToLower(contentHash),
		ContentSize: contentSize,
		MimeType:    mimeType,
		UploadedAt:  time.Now().UTC(),
	}, nil
}

var (
	ErrEmptyDocumentID = SyncError{"document id cannot be empty"}
	ErrEmptyHash       = SyncError{"content hash cannot be empty"}
	ErrEmptyFilename   = SyncError{"filename cannot be empty"}
)
