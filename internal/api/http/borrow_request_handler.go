package http

import (
	"net/http"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/lifecycle"
	"toolshare-backend/internal/service"

	"github.com/gorilla/mux"
)

type createBorrowRequestRequest struct {
	ToolID     int32       `json:"tool_id" validate:"required,gt=0"`
	BorrowerID int32       `json:"borrower_id" validate:"gte=0"`
	Message    *string     `json:"message" validate:"omitempty,max=2000"`
	StartDate  domain.Date `json:"start_date"`
	DueDate    domain.Date `json:"due_date"`
}

type BorrowRequestHandler struct {
	requestSvc service.BorrowRequestService
}

func NewBorrowRequestHandler(requestSvc service.BorrowRequestService) *BorrowRequestHandler {
	return &BorrowRequestHandler{requestSvc: requestSvc}
}

func (h *BorrowRequestHandler) CreateBorrowRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req createBorrowRequestRequest
	if err := decodeJSON(r, &req, false); err != nil {
		respondError(w, r, err)
		return
	}
	view, err := h.requestSvc.CreateRequest(r.Context(), userID, service.CreateBorrowRequestInput{
		ToolID:     req.ToolID,
		BorrowerID: req.BorrowerID,
		Message:    req.Message,
		StartDate:  req.StartDate,
		DueDate:    req.DueDate,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

func (h *BorrowRequestHandler) GetBorrowRequest(w http.ResponseWriter, r *http.Request) {
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
	view, err := h.requestSvc.GetRequest(r.Context(), userID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *BorrowRequestHandler) ListOwnerRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	ownerID, err := pathID(r, "owner_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	views, err := h.requestSvc.ListForOwner(r.Context(), userID, ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *BorrowRequestHandler) ListBorrowerRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	borrowerID, err := pathID(r, "borrower_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	views, err := h.requestSvc.ListForBorrower(r.Context(), userID, borrowerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// Transition applies the action named in the path, e.g.
// PATCH /api/borrow_requests/12/initiate-return.
func (h *BorrowRequestHandler) Transition(w http.ResponseWriter, r *http.Request) {
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
	action, err := lifecycle.ParseAction(mux.Vars(r)["action"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	view, err := h.requestSvc.Transition(r.Context(), userID, id, action)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
