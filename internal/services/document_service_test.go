package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads and tracks new content", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		index := newFakeIndex()
		svc := NewDocumentService(repo, index, NewHashService())

		outcome, err := svc.Upload(ctx, "store-1", []byte("report body"), "report.txt", "text/plain", false)
		require.NoError(t, err)

		assert.False(t, outcome.IsConflict())
		require.NotNil(t, outcome.Document)
		assert.Equal(t, "store-1", outcome.Document.StoreID)
		assert.Len(t, outcome.Document.ContentHash, 64)
		assert.Equal(t, 1, index.uploadCount())
	})

	t.Run("duplicate content reports conflict instead of uploading", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		index := newFakeIndex()
		svc := NewDocumentService(repo, index, NewHashService())

		first, err := svc.Upload(ctx, "store-1", []byte("same bytes"), "a.txt", "text/plain", false)
		require.NoError(t, err)

		second, err := svc.Upload(ctx, "store-1", []byte("same bytes"), "b.txt", "text/plain", false)
		require.NoError(t, err)

		assert.True(t, second.IsConflict())
		require.NotNil(t, second.Conflict)
		assert.Equal(t, first.Document.ID, second.Conflict.ID)
		assert.Nil(t, second.Document)
		assert.Equal(t, 1, index.uploadCount())
	})

	t.Run("same content in a different store is no conflict", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		index := newFakeIndex()
		svc := NewDocumentService(repo, index, NewHashService())

		_, err := svc.Upload(ctx, "store-1", []byte("same bytes"), "a.txt", "text/plain", false)
		require.NoError(t, err)

		outcome, err := svc.Upload(ctx, "store-2", []byte("same bytes"), "a.txt", "text/plain", false)
		require.NoError(t, err)

		assert.False(t, outcome.IsConflict())
		assert.Equal(t, 2, index.uploadCount())
	})

	t.Run("force stores a second copy of duplicate content", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		index := newFakeIndex()
		svc := NewDocumentService(repo, index, NewHashService())

		_, err := svc.Upload(ctx, "store-1", []byte("same bytes"), "a.txt", "text/plain", false)
		require.NoError(t, err)

		outcome, err := svc.Upload(ctx, "store-1", []byte("same bytes"), "a.txt", "text/plain", true)
		require.NoError(t, err)

		assert.False(t, outcome.IsConflict())
		assert.Equal(t, 2, index.uploadCount())

		docs, err := svc.List(ctx, "store-1")
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes from store and tracking table", func(t *testing.T) {
		repo := newFakeDocumentRepo()
		index := newFakeIndex()
		svc := NewDocumentService(repo, index, NewHashService())

		outcome, err := svc.Upload(ctx, "store-1", []byte("bytes"), "a.txt", "text/plain", false)
		require.NoError(t, err)

		found, err := svc.Delete(ctx, outcome.Document.ID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Contains(t, index.deletes, outcome.Document.DocumentID)

		docs, err := svc.List(ctx, "store-1")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		svc := NewDocumentService(newFakeDocumentRepo(), newFakeIndex(), NewHashService())

		found, err := svc.Delete(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
