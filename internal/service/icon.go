package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/storage"

	"github.com/google/uuid"
)

const (
	iconPrefix    = "icons/"
	iconExtension = ".svg"
	uploadPrefix  = "uploads/"
)

var uploadExtensions = map[string]string{
	"image/svg+xml": ".svg",
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
}

type iconService struct {
	storage storage.StorageInterface
	expiry  time.Duration
	now     func() time.Time
}

// NewIconService serves the stock icon set stored as icons/<key>.svg and
// hands out upload URLs for custom icons under uploads/<user>/.
func NewIconService(store storage.StorageInterface, expiry time.Duration) IconService {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &iconService{storage: store, expiry: expiry, now: time.Now}
}

func (s *iconService) ListIcons(ctx context.Context) ([]Icon, error) {
	keys, err := s.storage.ListFiles(ctx, iconPrefix)
	if err != nil {
		return nil, err
	}
	icons := make([]Icon, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(k, iconPrefix)
		if strings.Contains(name, "/") || !strings.HasSuffix(name, iconExtension) {
			continue
		}
		u, err := s.storage.GeneratePresignedDownloadURL(ctx, k, s.expiry)
		if err != nil {
			return nil, err
		}
		icons = append(icons, Icon{Key: strings.TrimSuffix(name, iconExtension), URL: u})
	}
	return icons, nil
}

// GetIcon resolves either a stock icon name ("drill") or a full uploaded key.
func (s *iconService) GetIcon(ctx context.Context, key string) (*Icon, error) {
	objectKey, err := iconObjectKey(key)
	if err != nil {
		return nil, err
	}
	exists, _, err := s.storage.FileExists(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NotFoundError("icon %q not found", key)
	}
	u, err := s.storage.GeneratePresignedDownloadURL(ctx, objectKey, s.expiry)
	if err != nil {
		return nil, err
	}
	return &Icon{Key: key, URL: u}, nil
}

func iconObjectKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", domain.ValidationError("invalid icon key %q", key)
	}
	if strings.HasPrefix(key, uploadPrefix) {
		return key, nil
	}
	if strings.Contains(key, "/") {
		return "", domain.ValidationError("invalid icon key %q", key)
	}
	return iconPrefix + key + iconExtension, nil
}

func (s *iconService) CreateUploadURL(ctx context.Context, actorID int32, filename, contentType string) (*IconUpload, error) {
	ext, ok := uploadExtensions[contentType]
	if !ok {
		return nil, domain.ValidationError("unsupported content type %q: use image/svg+xml, image/png or image/jpeg", contentType)
	}
	if fe := strings.ToLower(path.Ext(filename)); fe == ".jpeg" && ext == ".jpg" {
		ext = fe
	}
	key := fmt.Sprintf("%s%d/%s%s", uploadPrefix, actorID, uuid.New().String(), ext)
	u, err := s.storage.GeneratePresignedUploadURL(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, err
	}
	return &IconUpload{Key: key, UploadURL: u, ExpiresAt: s.now().UTC().Add(s.expiry)}, nil
}
