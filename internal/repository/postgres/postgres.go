package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/repository"

	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same repository code
// runs inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const uniqueViolation = pq.ErrorCode("23505")

// Index names from the migrations; used to turn unique violations into
// readable conflicts.
const (
	activeLoanIndex = "borrow_requests_one_active_per_tool"
	inFlightIndex   = "borrow_requests_one_in_flight_per_borrower"
)

type Store struct {
	db *sql.DB
	repository.ToolRepository
	repository.BorrowRequestRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		ToolRepository:          NewToolRepository(db),
		BorrowRequestRepository: NewBorrowRequestRepository(db),
	}
}

func (s *Store) Tools() repository.ToolRepository {
	return s.ToolRepository
}

func (s *Store) BorrowRequests() repository.BorrowRequestRepository {
	return s.BorrowRequestRepository
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type txRepositories struct {
	tools    repository.ToolRepository
	requests repository.BorrowRequestRepository
}

func (t txRepositories) Tools() repository.ToolRepository                   { return t.tools }
func (t txRepositories) BorrowRequests() repository.BorrowRequestRepository { return t.requests }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op returning sql.ErrTxDone.
	defer func() { _ = tx.Rollback() }()

	repos := txRepositories{
		tools:    NewToolRepository(tx),
		requests: NewBorrowRequestRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		logger.Debug("Rolling back transaction", "error", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", mapError(err))
	}
	return nil
}

// mapError translates driver errors into domain error kinds.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case activeLoanIndex:
			return domain.ConflictError("tool already has an active loan")
		case inFlightIndex:
			return domain.ConflictError("borrower already has an open request for this tool")
		default:
			return domain.ConflictError("conflicting record: %s", pqErr.Constraint)
		}
	}
	return err
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError(format, args...)
	}
	return err
}
