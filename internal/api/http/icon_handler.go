package http

import (
	"net/http"

	"toolshare-backend/internal/service"

	"github.com/gorilla/mux"
)

type iconUploadRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required"`
}

type IconHandler struct {
	iconSvc service.IconService
}

func NewIconHandler(iconSvc service.IconService) *IconHandler {
	return &IconHandler{iconSvc: iconSvc}
}

func (h *IconHandler) ListIcons(w http.ResponseWriter, r *http.Request) {
	icons, err := h.iconSvc.ListIcons(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, icons)
}

func (h *IconHandler) GetIcon(w http.ResponseWriter, r *http.Request) {
	icon, err := h.iconSvc.GetIcon(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, icon)
}

func (h *IconHandler) CreateUploadURL(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req iconUploadRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	upload, err := h.iconSvc.CreateUploadURL(r.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, upload)
}
