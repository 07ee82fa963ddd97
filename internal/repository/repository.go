package repository

import (
	"context"

	"toolshare-backend/internal/domain"
)

// ToolRepository persists the tool catalog and its availability flag.
// GetByID returns soft-deleted tools too; List and ListByOwner hide them.
type ToolRepository interface {
	Create(ctx context.Context, tool *domain.Tool) error
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	// GetForUpdate reads the tool and, inside a transaction, locks its row
	// until commit or rollback.
	GetForUpdate(ctx context.Context, id int32) (*domain.Tool, error)
	// Update writes catalog fields only. Availability is changed through SetAvailability.
	Update(ctx context.Context, tool *domain.Tool) error
	SetAvailability(ctx context.Context, id int32, available bool, activeRequestID *int32) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context) ([]domain.Tool, error)
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.Tool, error)
}

// BorrowRequestRepository persists borrow requests. Requests are never deleted.
type BorrowRequestRepository interface {
	Create(ctx context.Context, req *domain.BorrowRequest) error
	GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error)
	// UpdateStatus moves the request from one status to another only if it is
	// still in the expected status. A lost race is reported as a StateError.
	UpdateStatus(ctx context.Context, id int32, from, to domain.RequestStatus) (*domain.BorrowRequest, error)
	// FindActiveByTool returns the APPROVED or RETURN_PENDING request for the
	// tool, or nil when the tool is not lent out.
	FindActiveByTool(ctx context.Context, toolID int32) (*domain.BorrowRequest, error)
	// FindInFlight returns the borrower's PENDING, APPROVED or RETURN_PENDING
	// request for the tool, or nil.
	FindInFlight(ctx context.Context, toolID, borrowerID int32) (*domain.BorrowRequest, error)
	CountPendingByTool(ctx context.Context, toolID int32) (int, error)
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.BorrowRequest, error)
	ListByBorrower(ctx context.Context, borrowerID int32) ([]domain.BorrowRequest, error)
	ListByTool(ctx context.Context, toolID int32) ([]domain.BorrowRequest, error)
	ListActive(ctx context.Context) ([]domain.BorrowRequest, error)
}

// Repositories is a set of repositories bound to one connection or transaction.
type Repositories interface {
	Tools() ToolRepository
	BorrowRequests() BorrowRequestRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repositories
	// WithTx runs fn against transaction-bound repositories. The transaction
	// commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
	Ping(ctx context.Context) error
}
