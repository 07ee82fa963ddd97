package service

import (
	"context"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/lifecycle"
)

// CreateBorrowRequestInput carries a new request. BorrowerID may be left
// zero, in which case the actor is the borrower.
type CreateBorrowRequestInput struct {
	ToolID     int32
	BorrowerID int32
	Message    *string
	StartDate  domain.Date
	DueDate    domain.Date
}

// BorrowRequestService is the lifecycle engine. Every mutating call names the
// acting user explicitly; there is no ambient "current user".
type BorrowRequestService interface {
	CreateRequest(ctx context.Context, actorID int32, in CreateBorrowRequestInput) (*domain.BorrowRequestView, error)
	GetRequest(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error)
	// Transition applies action to the request on behalf of actorID.
	Transition(ctx context.Context, actorID, requestID int32, action lifecycle.Action) (*domain.BorrowRequestView, error)
	Approve(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error)
	Decline(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error)
	Cancel(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error)
	InitiateReturn(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error)
	ConfirmReturn(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error)
	// Return is the deprecated owner-only direct return.
	Return(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error)
	ListForOwner(ctx context.Context, actorID, ownerID int32) ([]domain.BorrowRequestView, error)
	ListForBorrower(ctx context.Context, actorID, borrowerID int32) ([]domain.BorrowRequestView, error)
	// ListActiveLoans returns every APPROVED or RETURN_PENDING request, soonest due first.
	ListActiveLoans(ctx context.Context) ([]domain.BorrowRequestView, error)
}

// ToolInput holds the owner-editable catalog fields. IsAvailable is honoured
// on create only.
type ToolInput struct {
	Name        string
	Description string
	Address     string
	Lat         *float64
	Lng         *float64
	IconKey     *string
	IsAvailable *bool
}

type ToolService interface {
	CreateTool(ctx context.Context, actorID int32, in ToolInput) (*domain.ToolView, error)
	GetTool(ctx context.Context, toolID int32) (*domain.ToolView, error)
	UpdateTool(ctx context.Context, actorID, toolID int32, in ToolInput) (*domain.ToolView, error)
	DeleteTool(ctx context.Context, actorID, toolID int32) error
	ListTools(ctx context.Context) ([]domain.ToolView, error)
	ListToolsByOwner(ctx context.Context, ownerID int32) ([]domain.ToolView, error)
	// SetAvailability flips the owner's availability flag, or sets it when
	// available is non-nil. Rejected while the tool is lent out.
	SetAvailability(ctx context.Context, actorID, toolID int32, available *bool) (*domain.ToolView, error)
}

type Icon struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type IconUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type IconService interface {
	ListIcons(ctx context.Context) ([]Icon, error)
	GetIcon(ctx context.Context, key string) (*Icon, error)
	CreateUploadURL(ctx context.Context, actorID int32, filename, contentType string) (*IconUpload, error)
}
