package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestIconService_ListIcons(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := new(MockStorage)
		svc := service.NewIconService(store, 10*time.Minute)
		store.On("ListFiles", ctx, "icons/").Return([]string{"icons/drill.svg", "icons/readme.txt", "icons/nested/x.svg", "icons/saw.svg"}, nil)
		store.On("GeneratePresignedDownloadURL", ctx, "icons/drill.svg", 10*time.Minute).Return("https://cdn/drill", nil)
		store.On("GeneratePresignedDownloadURL", ctx, "icons/saw.svg", 10*time.Minute).Return("https://cdn/saw", nil)

		icons, err := svc.ListIcons(ctx)
		require.NoError(t, err)
		assert.Equal(t, []service.Icon{{Key: "drill", URL: "https://cdn/drill"}, {Key: "saw", URL: "https://cdn/saw"}}, icons)
		store.AssertExpectations(t)
	})

	t.Run("StorageError", func(t *testing.T) {
		store := new(MockStorage)
		svc := service.NewIconService(store, time.Minute)
		store.On("ListFiles", ctx, "icons/").Return(nil, errors.New("bucket unavailable"))

		_, err := svc.ListIcons(ctx)
		assert.Error(t, err)
	})
}

func TestIconService_GetIcon(t *testing.T) {
	ctx := context.Background()
	store := new(MockStorage)
	svc := service.NewIconService(store, time.Minute)

	t.Run("StockIcon", func(t *testing.T) {
		store.On("FileExists", ctx, "icons/drill.svg").Return(true, int64(120), nil)
		store.On("GeneratePresignedDownloadURL", ctx, "icons/drill.svg", time.Minute).Return("https://cdn/drill", nil)

		icon, err := svc.GetIcon(ctx, "drill")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/drill", icon.URL)
	})

	t.Run("UploadedIcon", func(t *testing.T) {
		store.On("FileExists", ctx, "uploads/7/a.png").Return(true, int64(5), nil)
		store.On("GeneratePresignedDownloadURL", ctx, "uploads/7/a.png", time.Minute).Return("https://cdn/a", nil)

		icon, err := svc.GetIcon(ctx, "uploads/7/a.png")
		require.NoError(t, err)
		assert.Equal(t, "uploads/7/a.png", icon.Key)
	})

	t.Run("Missing", func(t *testing.T) {
		store.On("FileExists", ctx, "icons/anvil.svg").Return(false, int64(0), nil)

		_, err := svc.GetIcon(ctx, "anvil")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		_, err := svc.GetIcon(ctx, "../secrets")
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.GetIcon(ctx, "icons/drill")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestIconService_CreateUploadURL(t *testing.T) {
	ctx := context.Background()
	store := new(MockStorage)
	svc := service.NewIconService(store, 5*time.Minute)

	t.Run("Success", func(t *testing.T) {
		store.On("GeneratePresignedUploadURL", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "uploads/7/") && strings.HasSuffix(key, ".png")
		}), "image/png", 5*time.Minute).Return("https://upload/here", nil)

		up, err := svc.CreateUploadURL(ctx, 7, "hammer.png", "image/png")
		require.NoError(t, err)
		assert.Equal(t, "https://upload/here", up.UploadURL)
		assert.True(t, strings.HasPrefix(up.Key, "uploads/7/"))
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), up.ExpiresAt, time.Minute)
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		_, err := svc.CreateUploadURL(ctx, 7, "evil.exe", "application/octet-stream")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
