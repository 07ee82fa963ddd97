package http

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/storage"
)

var iconContentTypes = map[string]string{
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ImageUploadHandler serves the presigned URLs handed out by mock storage
type ImageUploadHandler struct {
	mockStorage *storage.MockStorageService
}

func NewImageUploadHandler(mockStorage *storage.MockStorageService) *ImageUploadHandler {
	return &ImageUploadHandler{
		mockStorage: mockStorage,
	}
}

// HandleMockUpload handles HTTP PUT requests to mock presigned URLs
func (h *ImageUploadHandler) HandleMockUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	// The upload must match the type implied by the key it was issued for
	want, ok := iconContentTypes[filepath.Ext(key)]
	if !ok || r.Header.Get("Content-Type") != want {
		http.Error(w, "Invalid content type", http.StatusBadRequest)
		return
	}

	err := h.mockStorage.SaveFile(key, io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			http.Error(w, "Invalid key", http.StatusBadRequest)
			return
		}
		logger.ErrorContext(r.Context(), "Failed to save upload", "key", key, "error", err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	// Mimic the S3 response
	w.Header().Set("ETag", `"mock-etag-success"`)
	w.WriteHeader(http.StatusOK)
}

// HandleMockDownload handles HTTP GET requests to download icons
func (h *ImageUploadHandler) HandleMockDownload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "Missing key parameter", http.StatusBadRequest)
		return
	}

	file, err := h.mockStorage.ReadFile(key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType, ok := iconContentTypes[filepath.Ext(key)]
	if !ok {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := io.Copy(w, file); err != nil {
		logger.WarnContext(r.Context(), "Download interrupted", "key", key, "error", err)
	}
}
