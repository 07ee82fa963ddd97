package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStorageService(t *testing.T) {
	ctx := context.Background()
	m, err := NewMockStorageService("http://localhost:8080/", t.TempDir())
	require.NoError(t, err)

	t.Run("UploadURLCarriesKey", func(t *testing.T) {
		u, err := m.GeneratePresignedUploadURL(ctx, "uploads/7/a b.svg", "image/svg+xml", 15*time.Minute)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u, "http://localhost:8080/api/v1/upload/"))
		assert.Contains(t, u, "key=uploads%2F7%2Fa+b.svg")
	})

	t.Run("SaveListRead", func(t *testing.T) {
		require.NoError(t, m.SaveFile("icons/drill.svg", strings.NewReader("<svg/>")))
		require.NoError(t, m.SaveFile("icons/saw.svg", strings.NewReader("<svg></svg>")))
		require.NoError(t, m.SaveFile("uploads/1/x.png", strings.NewReader("png")))

		keys, err := m.ListFiles(ctx, "icons/")
		require.NoError(t, err)
		assert.Equal(t, []string{"icons/drill.svg", "icons/saw.svg"}, keys)

		exists, size, err := m.FileExists(ctx, "icons/drill.svg")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, int64(6), size)

		rc, err := m.ReadFile("icons/drill.svg")
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "<svg/>", string(body))
	})

	t.Run("MissingFile", func(t *testing.T) {
		exists, _, err := m.FileExists(ctx, "icons/nope.svg")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("RejectsEscapingKeys", func(t *testing.T) {
		assert.ErrorIs(t, m.SaveFile("../../etc/passwd", strings.NewReader("x")), ErrInvalidKey)
		_, err := m.ReadFile("/etc/passwd")
		assert.ErrorIs(t, err, ErrInvalidKey)
		_, err = m.GeneratePresignedDownloadURL(ctx, "", time.Minute)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}
