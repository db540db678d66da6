package models

import "time"

// CreateLinkRequest is the body for POST /api/links
type CreateLinkRequest struct {
	SourceClass         SourceClass `json:"sourceClass"`
	SourceLocator       string      `json:"sourceLocator"`
	StoreID             string      `json:"storeId"`
	SyncMode            SyncMode    `json:"syncMode"`
	SyncIntervalMinutes *int        `json:"syncIntervalMinutes,omitempty"`
}

// LinkListResponse is returned when listing links
type LinkListResponse struct {
	Links      []*SyncLink `json:"links"`
	TotalCount int         `json:"totalCount"`
}

// SyncAllResponse carries the full batch result: successes and failures
// together, so one bad source never masks the others
type SyncAllResponse struct {
	Links      []*SyncLink `json:"links"`
	Synced     int         `json:"synced"`
	Failed     int         `json:"failed"`
	TotalCount int         `json:"totalCount"`
}

// ReplaceResult is returned by an explicit versioned replace
type ReplaceResult struct {
	LinkID        string `json:"linkId"`
	NewVersion    int    `json:"newVersion"`
	NewDocumentID string `json:"newDocumentId"`
	OldDocumentID string `json:"oldDocumentId"`
}

// VersionHistory is the pure-read view of a link's version ledger
type VersionHistory struct {
	LinkID            string         `json:"linkId"`
	FileName          string         `json:"fileName"`
	CurrentVersion    int            `json:"currentVersion"`
	CurrentDocumentID string         `json:"currentDocumentId,omitempty"`
	PreviousVersions  []VersionEntry `json:"previousVersions"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// UploadOutcome is the tagged result of a dedup-checked direct upload.
// Exactly one of Document or Conflict is set: Document on success,
// Conflict when a byte-identical file already exists in the store.
type UploadOutcome struct {
	Document *Document `json:"document,omitempty"`
	Conflict *Document `json:"conflict,omitempty"`
}

// IsConflict reports whether the upload was rejected as a duplicate
func (o *UploadOutcome) IsConflict() bool {
	return o.Conflict != nil
}

// DocumentListResponse is returned when listing tracked documents
type DocumentListResponse struct {
	Documents  []*Document `json:"documents"`
	TotalCount int         `json:"totalCount"`
}

// DeleteLinkResponse is returned after deleting a link
type DeleteLinkResponse struct {
	ID                   string `json:"id"`
	DeletedFromStore     bool   `json:"deletedFromStore"`
	DestinationDeleteErr string `json:"destinationDeleteError,omitempty"`
}

// HealthResponse is returned by health check
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is returned on errors
type ErrorResponse struct {
	Error string `json:"error"`
}
