// Package storage is the blob store boundary. The pipeline treats
// download/upload failures as hard errors that abort the current file.
package storage

import (
	"context"
	"crypto/sha256"
)

// BlobStore is the contract the pipeline depends on.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	Download(ctx context.Context, path string) ([]byte, error)
}

// HashBytes returns the sha256 digest of content, stored alongside the
// file row.
func HashBytes(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}
