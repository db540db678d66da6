package services

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// HashService computes content fingerprints for change detection and
// duplicate rejection. Fingerprints are lowercase hex SHA256 and are
// compared byte for byte, so every producer must go through this service.
type HashService struct{}

// NewHashService creates a new HashService
func NewHashService() *HashService {
	return &HashService{}
}

// ComputeHash fingerprints a stream without buffering it
func (s *HashService) ComputeHash(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ComputeHashBytes fingerprints content already held in memory
func (s *HashService) ComputeHashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
