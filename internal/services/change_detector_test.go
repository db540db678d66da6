package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/docsync/server/internal/models"
	"github.com/docsync/server/internal/source"
)

func TestChangeDetector_NeedsSync(t *testing.T) {
	detector := NewChangeDetector()

	baseTime := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	hash := "aaaa1111aaaa1111aaaa1111aaaa1111aaaa1111aaaa1111aaaa1111aaaa1111"

	makeLink := func(contentHash string, modifiedAt *time.Time) *models.SyncLink {
		return &models.SyncLink{
			ID:                "link-1",
			ContentHash:       contentHash,
			ContentModifiedAt: modifiedAt,
		}
	}

	t.Run("force always triggers", func(t *testing.T) {
		link := makeLink(hash, &baseTime)
		meta := &source.Metadata{ModifiedAt: baseTime}

		assert.True(t, detector.NeedsSync(true, link, meta, hash))
	})

	t.Run("never-synced link with no hash triggers", func(t *testing.T) {
		link := makeLink("", &baseTime)
		meta := &source.Metadata{ModifiedAt: baseTime}

		assert.True(t, detector.NeedsSync(false, link, meta, hash))
	})

	t.Run("changed hash triggers", func(t *testing.T) {
		link := makeLink(hash, &baseTime)
		meta := &source.Metadata{ModifiedAt: baseTime}
		other := "bbbb2222bbbb2222bbbb2222bbbb2222bbbb2222bbbb2222bbbb2222bbbb2222"

		assert.True(t, detector.NeedsSync(false, link, meta, other))
	})

	t.Run("missing recorded timestamp triggers", func(t *testing.T) {
		link := makeLink(hash, nil)
		meta := &source.Metadata{ModifiedAt: baseTime}

		assert.True(t, detector.NeedsSync(false, link, meta, hash))
	})

	t.Run("touched but unchanged content still triggers", func(t *testing.T) {
		// Same bytes, newer modification time. The timestamp check fires
		// independently of the hash check.
		link := makeLink(hash, &baseTime)
		meta := &source.Metadata{ModifiedAt: baseTime.Add(time.Minute)}

		assert.True(t, detector.NeedsSync(false, link, meta, hash))
	})

	t.Run("unchanged content and timestamp does not trigger", func(t *testing.T) {
		link := makeLink(hash, &baseTime)
		meta := &source.Metadata{ModifiedAt: baseTime}

		assert.False(t, detector.NeedsSync(false, link, meta, hash))
	})

	t.Run("older source timestamp does not trigger", func(t *testing.T) {
		link := makeLink(hash, &baseTime)
		meta := &source.Metadata{ModifiedAt: baseTime.Add(-time.Hour)}

		assert.False(t, detector.NeedsSync(false, link, meta, hash))
	})
}
