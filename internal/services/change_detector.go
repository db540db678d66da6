package services

import (
	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/source"
)

// ChangeDetector decides whether a link's source requires a resync.
type ChangeDetector struct{}

// NewChangeDetector creates a new ChangeDetector
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// NeedsSync returns true when any of the following holds: force is set, the
// link has no recorded hash, the current hash differs, the link has no
// recorded modification timestamp, or the source's timestamp is newer.
//
// The hash comparison and the timestamp comparison are independent triggers:
// a source whose bytes are unchanged but whose modification time was bumped
// (touched, not edited) still resyncs. Intentionally kept that way.
func (d *ChangeDetector) NeedsSync(force bool, link *models.SyncLink, meta *source.Metadata, currentHash string) bool {
	if force {
		return true
	}
	if link.ContentHash == "" {
		return true
	}
	if currentHash != link.ContentHash {
		return true
	}
	if link.ContentModifiedAt == nil {
		return true
	}
	return meta.ModifiedAt.After(*link.ContentModifiedAt)
}
