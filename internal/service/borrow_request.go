package service

import (
	"context"
	"errors"

	"toolshare-backend/internal/clock"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/lifecycle"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/metrics"
	"toolshare-backend/internal/repository"
	"toolshare-backend/internal/utils"
)

type borrowRequestService struct {
	store repository.Store
	clock clock.Clock
}

func NewBorrowRequestService(store repository.Store, clk clock.Clock) BorrowRequestService {
	return &borrowRequestService{store: store, clock: clk}
}

// isExpected reports whether err is an ordinary rejection rather than a fault.
func isExpected(err error) bool {
	return domain.KindName(err) != "internal"
}

func (s *borrowRequestService) fail(ctx context.Context, method, operation string, err error, args ...any) error {
	metrics.OperationErrorsTotal.WithLabelValues(operation, domain.KindName(err)).Inc()
	logger.ExitMethodWithError(ctx, method, err, isExpected(err), args...)
	return err
}

func (s *borrowRequestService) CreateRequest(ctx context.Context, actorID int32, in CreateBorrowRequestInput) (*domain.BorrowRequestView, error) {
	const method = "borrowRequestService.CreateRequest"
	logger.EnterMethod(ctx, method, "actorID", actorID, "toolID", in.ToolID)

	if in.BorrowerID == 0 {
		in.BorrowerID = actorID
	}
	if in.BorrowerID != actorID {
		return nil, s.fail(ctx, method, "create", domain.AuthorizationError("cannot create a borrow request on behalf of another user"))
	}
	if in.StartDate.IsZero() || in.DueDate.IsZero() {
		return nil, s.fail(ctx, method, "create", domain.ValidationError("start_date and due_date are required"))
	}
	if in.DueDate.Before(in.StartDate) {
		return nil, s.fail(ctx, method, "create", domain.ValidationError("due_date %s is before start_date %s", in.DueDate, in.StartDate))
	}

	req := &domain.BorrowRequest{
		ToolID:     in.ToolID,
		BorrowerID: in.BorrowerID,
		Message:    in.Message,
		StartDate:  in.StartDate,
		DueDate:    in.DueDate,
		Status:     domain.RequestStatusPending,
	}
	var toolName string
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		tool, err := tx.Tools().GetForUpdate(ctx, in.ToolID)
		if err != nil {
			return err
		}
		if tool.IsDeleted() {
			return domain.NotFoundError("tool %d not found", in.ToolID)
		}
		if tool.OwnerID == in.BorrowerID {
			return domain.ValidationError("you cannot borrow your own tool")
		}
		existing, err := tx.BorrowRequests().FindInFlight(ctx, tool.ID, in.BorrowerID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ConflictError("you already have a %s request (#%d) for this tool", existing.Status, existing.ID)
		}
		req.OwnerID = tool.OwnerID
		toolName = tool.Name
		return tx.BorrowRequests().Create(ctx, req)
	})
	if err != nil {
		return nil, s.fail(ctx, method, "create", err, "toolID", in.ToolID)
	}

	metrics.BorrowRequestsCreatedTotal.Inc()
	logger.InfoContext(ctx, "Borrow request created", "requestID", req.ID, "toolID", req.ToolID, "borrowerID", req.BorrowerID, "ownerID", req.OwnerID)
	logger.ExitMethod(ctx, method, "requestID", req.ID)
	return s.view(req, &domain.ToolSummary{ID: req.ToolID, Name: toolName}), nil
}

func (s *borrowRequestService) GetRequest(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error) {
	req, err := s.store.BorrowRequests().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, ok := lifecycle.RoleOf(req, actorID); !ok {
		return nil, domain.AuthorizationError("you are not a party to borrow request %d", requestID)
	}
	views, err := s.views(ctx, []domain.BorrowRequest{*req})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *borrowRequestService) Transition(ctx context.Context, actorID, requestID int32, action lifecycle.Action) (*domain.BorrowRequestView, error) {
	const method = "borrowRequestService.Transition"
	operation := string(action)
	logger.EnterMethod(ctx, method, "actorID", actorID, "requestID", requestID, "action", action)

	if _, ok := lifecycle.RequiredRole(action); !ok {
		return nil, s.fail(ctx, method, "transition", domain.ValidationError("unknown action %q", action))
	}

	// Reject early without touching the tool row when the request is missing,
	// the actor has the wrong role, or the status does not allow the action.
	req, err := s.store.BorrowRequests().GetByID(ctx, requestID)
	if err != nil {
		return nil, s.fail(ctx, method, operation, err, "requestID", requestID)
	}
	outcome, err := lifecycle.Transition(req, action, actorID)
	if err != nil {
		return nil, s.fail(ctx, method, operation, err, "requestID", requestID, "status", req.Status)
	}

	var updated *domain.BorrowRequest
	if outcome.Effect == lifecycle.EffectNone {
		updated, err = s.store.BorrowRequests().UpdateStatus(ctx, req.ID, outcome.From, outcome.Next)
	} else {
		updated, err = s.transitionLocked(ctx, req, action, actorID)
	}
	if err != nil {
		return nil, s.fail(ctx, method, operation, err, "requestID", requestID)
	}

	metrics.TransitionsTotal.WithLabelValues(operation).Inc()
	logger.InfoContext(ctx, "Borrow request transitioned", "requestID", updated.ID, "action", action, "from", req.Status, "to", updated.Status, "actorID", actorID)
	logger.ExitMethod(ctx, method, "requestID", updated.ID, "status", updated.Status)

	views, err := s.views(ctx, []domain.BorrowRequest{*updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// transitionLocked applies a transition that changes tool availability. The
// tool row is locked first, then the request is re-read and re-validated so
// that two concurrent approvals for the same tool cannot both succeed.
func (s *borrowRequestService) transitionLocked(ctx context.Context, req *domain.BorrowRequest, action lifecycle.Action, actorID int32) (*domain.BorrowRequest, error) {
	var updated *domain.BorrowRequest
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		tool, err := tx.Tools().GetForUpdate(ctx, req.ToolID)
		if err != nil {
			return err
		}
		current, err := tx.BorrowRequests().GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		outcome, err := lifecycle.Transition(current, action, actorID)
		if err != nil {
			return err
		}

		switch outcome.Effect {
		case lifecycle.EffectReserveTool:
			if tool.IsDeleted() {
				return domain.NotFoundError("tool %d not found", tool.ID)
			}
			active, err := tx.BorrowRequests().FindActiveByTool(ctx, tool.ID)
			if err != nil {
				return err
			}
			if active != nil && active.ID != current.ID {
				return domain.ConflictError("tool %d is already lent out under borrow request %d", tool.ID, active.ID)
			}
			if tool.ActiveRequestID != nil && *tool.ActiveRequestID != current.ID {
				return domain.ConflictError("tool %d is already lent out under borrow request %d", tool.ID, *tool.ActiveRequestID)
			}
			if updated, err = tx.BorrowRequests().UpdateStatus(ctx, current.ID, outcome.From, outcome.Next); err != nil {
				return err
			}
			return tx.Tools().SetAvailability(ctx, tool.ID, false, &current.ID)

		case lifecycle.EffectReleaseTool:
			if updated, err = tx.BorrowRequests().UpdateStatus(ctx, current.ID, outcome.From, outcome.Next); err != nil {
				return err
			}
			return tx.Tools().SetAvailability(ctx, tool.ID, true, nil)
		}
		return errors.New("transition has no tool effect")
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *borrowRequestService) Approve(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error) {
	return s.Transition(ctx, actorID, requestID, lifecycle.ActionApprove)
}

func (s *borrowRequestService) Decline(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error) {
	return s.Transition(ctx, actorID, requestID, lifecycle.ActionDecline)
}

func (s *borrowRequestService) Cancel(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error) {
	return s.Transition(ctx, actorID, requestID, lifecycle.ActionCancel)
}

func (s *borrowRequestService) InitiateReturn(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error) {
	return s.Transition(ctx, actorID, requestID, lifecycle.ActionInitiateReturn)
}

func (s *borrowRequestService) ConfirmReturn(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error) {
	return s.Transition(ctx, actorID, requestID, lifecycle.ActionConfirmReturn)
}

func (s *borrowRequestService) Return(ctx context.Context, actorID, requestID int32) (*domain.BorrowRequestView, error) {
	return s.Transition(ctx, actorID, requestID, lifecycle.ActionReturn)
}

func (s *borrowRequestService) ListForOwner(ctx context.Context, actorID, ownerID int32) ([]domain.BorrowRequestView, error) {
	if actorID != ownerID {
		return nil, domain.AuthorizationError("you can only list requests for your own tools")
	}
	reqs, err := s.store.BorrowRequests().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reqs)
}

func (s *borrowRequestService) ListForBorrower(ctx context.Context, actorID, borrowerID int32) ([]domain.BorrowRequestView, error) {
	if actorID != borrowerID {
		return nil, domain.AuthorizationError("you can only list your own borrow requests")
	}
	reqs, err := s.store.BorrowRequests().ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reqs)
}

func (s *borrowRequestService) ListActiveLoans(ctx context.Context) ([]domain.BorrowRequestView, error) {
	reqs, err := s.store.BorrowRequests().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, reqs)
}

// views decorates requests with their tool summary and due status. A request
// whose tool row is gone keeps a nil summary.
func (s *borrowRequestService) views(ctx context.Context, reqs []domain.BorrowRequest) ([]domain.BorrowRequestView, error) {
	summaries := make(map[int32]*domain.ToolSummary)
	out := make([]domain.BorrowRequestView, 0, len(reqs))
	for i := range reqs {
		toolID := reqs[i].ToolID
		summary, seen := summaries[toolID]
		if !seen {
			tool, err := s.store.Tools().GetByID(ctx, toolID)
			switch {
			case err == nil:
				summary = &domain.ToolSummary{ID: tool.ID, Name: tool.Name}
			case errors.Is(err, domain.ErrNotFound):
			default:
				return nil, err
			}
			summaries[toolID] = summary
		}
		out = append(out, *s.view(&reqs[i], summary))
	}
	return out, nil
}

func (s *borrowRequestService) view(req *domain.BorrowRequest, tool *domain.ToolSummary) *domain.BorrowRequestView {
	due := utils.ComputeDue(req.Status, req.DueDate, clock.Today(s.clock))
	return &domain.BorrowRequestView{
		BorrowRequest: *req,
		Tool:          tool,
		IsOverdue:     due.IsOverdue,
		DaysOverdue:   due.DaysOverdue,
		DaysUntilDue:  due.DaysUntilDue,
	}
}
