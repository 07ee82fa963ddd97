package storage

import (
	"context"
	"time"
)

// StorageInterface defines the interface for icon storage backends.
// Supports both mock (local filesystem) and S3-compatible object storage.
type StorageInterface interface {
	// GeneratePresignedUploadURL generates a presigned URL for uploading
	// key: storage path/key for the file
	// contentType: MIME type (e.g., "image/svg+xml")
	// expiresIn: how long the URL should be valid
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// GeneratePresignedDownloadURL generates a presigned URL for downloading
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// FileExists checks if a file exists and returns its size
	FileExists(ctx context.Context, key string) (exists bool, size int64, err error)

	// ListFiles returns the keys under prefix in lexical order
	ListFiles(ctx context.Context, prefix string) ([]string, error)
}
