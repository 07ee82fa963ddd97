package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"
)

const borrowRequestColumns = `id, tool_id, borrower_id, owner_id, message, start_date, due_date, status, created_at, updated_at`

type borrowRequestRepository struct {
	db DBTX
}

func NewBorrowRequestRepository(db DBTX) repository.BorrowRequestRepository {
	return &borrowRequestRepository{db: db}
}

func scanBorrowRequest(row rowScanner, br *domain.BorrowRequest) error {
	return row.Scan(&br.ID, &br.ToolID, &br.BorrowerID, &br.OwnerID, &br.Message, &br.StartDate, &br.DueDate, &br.Status, &br.CreatedAt, &br.UpdatedAt)
}

func (r *borrowRequestRepository) Create(ctx context.Context, br *domain.BorrowRequest) error {
	now := time.Now().UTC()
	query := `INSERT INTO borrow_requests (tool_id, borrower_id, owner_id, message, start_date, due_date, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, br.ToolID, br.BorrowerID, br.OwnerID, br.Message, br.StartDate, br.DueDate, br.Status, now, now).Scan(&br.ID)
	if err != nil {
		return mapError(err)
	}
	br.CreatedAt = now
	br.UpdatedAt = now
	return nil
}

func (r *borrowRequestRepository) GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error) {
	br := &domain.BorrowRequest{}
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests WHERE id = $1`
	if err := scanBorrowRequest(r.db.QueryRowContext(ctx, query, id), br); err != nil {
		return nil, notFoundOr(err, "borrow request %d not found", id)
	}
	return br, nil
}

func (r *borrowRequestRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.RequestStatus) (*domain.BorrowRequest, error) {
	query := `UPDATE borrow_requests SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4 RETURNING ` + borrowRequestColumns
	logger.DatabaseCall("UpdateStatus", "borrow_requests", "id", id, "from", from, "to", to)

	br := &domain.BorrowRequest{}
	err := scanBorrowRequest(r.db.QueryRowContext(ctx, query, to, time.Now().UTC(), id, from), br)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the request does not exist or someone else moved it first.
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		logger.DatabaseResult("UpdateStatus", 0, nil, "id", id, "current", current.Status)
		return nil, domain.StateError("borrow request %d is %s, expected %s", id, current.Status, from)
	}
	if err != nil {
		err = mapError(err)
		logger.DatabaseResult("UpdateStatus", 0, err, "id", id)
		return nil, err
	}
	logger.DatabaseResult("UpdateStatus", 1, nil, "id", id)
	return br, nil
}

func (r *borrowRequestRepository) FindActiveByTool(ctx context.Context, toolID int32) (*domain.BorrowRequest, error) {
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests
	          WHERE tool_id = $1 AND status IN ('APPROVED', 'RETURN_PENDING') LIMIT 1`
	return r.findOne(ctx, query, toolID)
}

func (r *borrowRequestRepository) FindInFlight(ctx context.Context, toolID, borrowerID int32) (*domain.BorrowRequest, error) {
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests
	          WHERE tool_id = $1 AND borrower_id = $2 AND status IN ('PENDING', 'APPROVED', 'RETURN_PENDING') LIMIT 1`
	return r.findOne(ctx, query, toolID, borrowerID)
}

func (r *borrowRequestRepository) findOne(ctx context.Context, query string, args ...any) (*domain.BorrowRequest, error) {
	br := &domain.BorrowRequest{}
	err := scanBorrowRequest(r.db.QueryRowContext(ctx, query, args...), br)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return br, nil
}

func (r *borrowRequestRepository) CountPendingByTool(ctx context.Context, toolID int32) (int, error) {
	var count int
	query := `SELECT count(*) FROM borrow_requests WHERE tool_id = $1 AND status = 'PENDING'`
	if err := r.db.QueryRowContext(ctx, query, toolID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *borrowRequestRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.BorrowRequest, error) {
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, ownerID)
}

func (r *borrowRequestRepository) ListByBorrower(ctx context.Context, borrowerID int32) ([]domain.BorrowRequest, error) {
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests WHERE borrower_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, borrowerID)
}

func (r *borrowRequestRepository) ListByTool(ctx context.Context, toolID int32) ([]domain.BorrowRequest, error) {
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests WHERE tool_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, toolID)
}

func (r *borrowRequestRepository) ListActive(ctx context.Context) ([]domain.BorrowRequest, error) {
	query := `SELECT ` + borrowRequestColumns + ` FROM borrow_requests WHERE status IN ('APPROVED', 'RETURN_PENDING') ORDER BY due_date, id`
	return r.list(ctx, query)
}

func (r *borrowRequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.BorrowRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.BorrowRequest
	for rows.Next() {
		var br domain.BorrowRequest
		if err := scanBorrowRequest(rows, &br); err != nil {
			return nil, err
		}
		requests = append(requests, br)
	}
	return requests, rows.Err()
}
