package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceClass identifies which kind of external content a link tracks
type SourceClass string

const (
	SourceClassRemote SourceClass = "remote"
	SourceClassLocal  SourceClass = "local"
)

// SyncMode controls whether a link is eligible for scheduler-driven sync
type SyncMode string

const (
	SyncModeManual SyncMode = "manual"
	SyncModeAuto   SyncMode = "auto"
)

// SyncStatus is the link's position in the sync state machine
type SyncStatus string

const (
	StatusNotSynced SyncStatus = "not_synced"
	StatusSyncing   SyncStatus = "syncing"
	StatusSynced    SyncStatus = "synced"
	StatusError     SyncStatus = "error"
)

// VersionEntry is one record in a link's append-only version history
type VersionEntry struct {
	DocumentID string    `json:"documentId"`
	Version    int       `json:"version"`
	ReplacedAt time.Time `json:"replacedAt"`
}

// SyncLink binds one external content source to one document in the
// destination index. DocumentID is nil until the first successful sync.
type SyncLink struct {
	ID                  string         `json:"id"`
	SourceClass         SourceClass    `json:"sourceClass"`
	SourceLocator       string         `json:"sourceLocator"`
	SourceDisplayName   string         `json:"sourceDisplayName"`
	StoreID             string         `json:"storeId"`
	DocumentID          *string        `json:"documentId,omitempty"`
	SyncMode            SyncMode       `json:"syncMode"`
	SyncIntervalMinutes *int           `json:"syncIntervalMinutes,omitempty"`
	ContentHash         string         `json:"contentHash,omitempty"`
	ContentSize         int64          `json:"contentSize"`
	ContentModifiedAt   *time.Time     `json:"contentModifiedAt,omitempty"`
	MimeType            string         `json:"mimeType,omitempty"`
	Status              SyncStatus     `json:"status"`
	ErrorMessage        string         `json:"errorMessage,omitempty"`
	Version             int            `json:"version"`
	OriginalSourceID    *string        `json:"originalSourceId,omitempty"`
	VersionHistory      []VersionEntry `json:"versionHistory"`
	LastSyncedAt        *time.Time     `json:"lastSyncedAt,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// NewSyncLink creates a link in its initial state with validation
func NewSyncLink(class SourceClass, locator, displayName, storeID string, mode SyncMode, intervalMinutes *int) (*SyncLink, error) {
	if class != SourceClassRemote && class != SourceClassLocal {
		return nil, ErrInvalidSourceClass
	}
	if strings.TrimSpace(locator) == "" {
		return nil, ErrEmptyLocator
	}
	if strings.TrimSpace(storeID) == "" {
		return nil, ErrEmptyStoreID
	}
	if mode != SyncModeManual && mode != SyncModeAuto {
		return nil, ErrInvalidSyncMode
	}
	if mode == SyncModeAuto && intervalMinutes != nil && *intervalMinutes <= 0 {
		return nil, ErrInvalidInterval
	}

	if displayName == "" {
		displayName = filepath.Base(locator)
	}

	now := time.Now().UTC()
	return &SyncLink{
		ID:                  uuid.New().String(),
		SourceClass:         class,
		SourceLocator:       locator,
		SourceDisplayName:   displayName,
		StoreID:             storeID,
		SyncMode:            mode,
		SyncIntervalMinutes: intervalMinutes,
		Status:              StatusNotSynced,
		Version:             1,
		VersionHistory:      []VersionEntry{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// AppendVersion records the current document identity in the history.
// History is append-only; entries are never removed or reordered.
func (l *SyncLink) AppendVersion(documentID string, version int, replacedAt time.Time) {
	l.VersionHistory = append(l.VersionHistory, VersionEntry{
		DocumentID: documentID,
		Version:    version,
		ReplacedAt: replacedAt,
	})
}

// CaptureOriginalSource records the provenance anchor on the first replace.
// Later replaces never overwrite it.
func (l *SyncLink) CaptureOriginalSource(documentID string) {
	if l.OriginalSourceID == nil {
		id := documentID
		l.OriginalSourceID = &id
	}
}

// SyncError is a typed error for sync engine failures
type SyncError struct {
	Message string
}

func (e SyncError) Error() string {
	return e.Message
}

var (
	ErrLinkNotFound       = SyncError{"sync link not found"}
	ErrDuplicateLink      = SyncError{"a link for this source already exists in the store"}
	ErrSourceUnavailable  = SyncError{"source is missing or unreadable"}
	ErrNotYetSynced       = SyncError{"link has never completed a sync; nothing to replace"}
	ErrUploadTimeout      = SyncError{"destination index did not confirm upload in time"}
	ErrUploadFailed       = SyncError{"destination index rejected the upload"}
	ErrInvalidSourceClass = SyncError{"source class must be remote or local"}
	ErrInvalidSyncMode    = SyncError{"sync mode must be manual or auto"}
	ErrInvalidInterval    = SyncError{"sync interval must be positive"}
	ErrEmptyLocator       = SyncError{"source locator cannot be empty"}
	ErrEmptyStoreID       = SyncError{"store id cannot be empty"}
)
