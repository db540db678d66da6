package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashService_ComputeHash(t *testing.T) {
	svc := NewHashService()

	t.Run("returns consistent hash for same content", func(t *testing.T) {
		content := []byte("Hello, World!")

		hash1, err := svc.ComputeHash(bytes.NewReader(content))
		require.NoError(t, err)

		hash2, err := svc.ComputeHash(bytes.NewReader(content))
		require.NoError(t, err)

		assert.Equal(t, hash1, hash2)
		assert.Len(t, hash1, 64) // SHA256 = 64 hex chars
	})

	t.Run("returns different hash for different content", func(t *testing.T) {
		hash1, err := svc.ComputeHash(bytes.NewReader([]byte("Content A")))
		require.NoError(t, err)

		hash2, err := svc.ComputeHash(bytes.NewReader([]byte("Content B")))
		require.NoError(t, err)

		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("matches ComputeHashBytes", func(t *testing.T) {
		content := []byte("same input either way")

		fromReader, err := svc.ComputeHash(bytes.NewReader(content))
		require.NoError(t, err)

		assert.Equal(t, fromReader, svc.ComputeHashBytes(content))
	})

	t.Run("returns lowercase hash", func(t *testing.T) {
		hash := svc.ComputeHashBytes([]byte("test"))

		assert.Equal(t, strings.ToLower(hash), hash)
	})
}
