package storage

import (
	"context"
	"fmt"
)

const (
	TypeMock = "mock"
	TypeS3   = "s3"
)

// Config holds storage configuration
type Config struct {
	Type    string // "mock" or "s3"
	MockDir string // Directory for mock storage
	BaseURL string // Server base URL for generating mock URLs
	S3      S3Config
}

// New builds the backend selected by cfg.Type. The mock backend is returned
// separately as well because its files are served by the API server itself.
func New(ctx context.Context, cfg Config) (StorageInterface, *MockStorageService, error) {
	switch cfg.Type {
	case TypeMock, "":
		mock, err := NewMockStorageService(cfg.BaseURL, cfg.MockDir)
		if err != nil {
			return nil, nil, err
		}
		return mock, mock, nil
	case TypeS3:
		s3Store, err := NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		return s3Store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
