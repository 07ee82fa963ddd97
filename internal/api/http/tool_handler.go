package http

import (
	"net/http"

	"toolshare-backend/internal/service"
)

// toolRequest is the body of POST and PUT /tools. is_available is honoured
// on create only.
type toolRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=4000"`
	Address     string   `json:"address" validate:"max=500"`
	Lat         *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng         *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	IconKey     *string  `json:"icon_key" validate:"omitempty,max=255"`
	IsAvailable *bool    `json:"is_available"`
}

func (req *toolRequest) input() service.ToolInput {
	return service.ToolInput{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Lat:         req.Lat,
		Lng:         req.Lng,
		IconKey:     req.IconKey,
		IsAvailable: req.IsAvailable,
	}
}

type availabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type ToolHandler struct {
	toolSvc service.ToolService
}

func NewToolHandler(toolSvc service.ToolService) *ToolHandler {
	return &ToolHandler{toolSvc: toolSvc}
}

func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.toolSvc.ListTools(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tools)
}

func (h *ToolHandler) ListToolsByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "owner_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	tools, err := h.toolSvc.ListToolsByOwner(r.Context(), ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tools)
}

func (h *ToolHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	tool, err := h.toolSvc.GetTool(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) CreateTool(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req toolRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	tool, err := h.toolSvc.CreateTool(r.Context(), userID, req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tool)
}

func (h *ToolHandler) UpdateTool(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req toolRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	tool, err := h.toolSvc.UpdateTool(r.Context(), userID, id, req.input())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tool)
}

func (h *ToolHandler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.toolSvc.DeleteTool(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAvailability toggles the flag, or sets it when the body names a value.
func (h *ToolHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req availabilityRequest
	if err := decodeJSON(r, &req, true); err != nil {
		respondError(w, r, err)
		return
	}
	tool, err := h.toolSvc.SetAvailability(r.Context(), userID, id, req.IsAvailable)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tool)
}
