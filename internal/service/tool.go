package service

import (
	"context"
	"strings"

	"toolshare-backend/internal/clock"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/metrics"
	"toolshare-backend/internal/repository"
	"toolshare-backend/internal/utils"
)

type toolService struct {
	store repository.Store
	clock clock.Clock
}

func NewToolService(store repository.Store, clk clock.Clock) ToolService {
	return &toolService{store: store, clock: clk}
}

func validateToolInput(in ToolInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.ValidationError("name is required")
	}
	if (in.Lat == nil) != (in.Lng == nil) {
		return domain.ValidationError("lat and lng must be given together")
	}
	if in.Lat != nil && (*in.Lat < -90 || *in.Lat > 90) {
		return domain.ValidationError("lat must be between -90 and 90")
	}
	if in.Lng != nil && (*in.Lng < -180 || *in.Lng > 180) {
		return domain.ValidationError("lng must be between -180 and 180")
	}
	return nil
}

func (s *toolService) CreateTool(ctx context.Context, actorID int32, in ToolInput) (*domain.ToolView, error) {
	if err := validateToolInput(in); err != nil {
		return nil, err
	}
	tool := &domain.Tool{
		OwnerID:     actorID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Address:     in.Address,
		Lat:         in.Lat,
		Lng:         in.Lng,
		IconKey:     in.IconKey,
		IsAvailable: true,
	}
	if in.IsAvailable != nil {
		tool.IsAvailable = *in.IsAvailable
	}
	if err := s.store.Tools().Create(ctx, tool); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Tool created", "toolID", tool.ID, "ownerID", tool.OwnerID)
	return s.view(ctx, s.store, tool)
}

func (s *toolService) GetTool(ctx context.Context, toolID int32) (*domain.ToolView, error) {
	tool, err := s.store.Tools().GetByID(ctx, toolID)
	if err != nil {
		return nil, err
	}
	if tool.IsDeleted() {
		return nil, domain.NotFoundError("tool %d not found", toolID)
	}
	return s.view(ctx, s.store, tool)
}

// ownedTool loads a live tool the actor owns.
func ownedTool(ctx context.Context, tools repository.ToolRepository, actorID, toolID int32, lock bool) (*domain.Tool, error) {
	var (
		tool *domain.Tool
		err  error
	)
	if lock {
		tool, err = tools.GetForUpdate(ctx, toolID)
	} else {
		tool, err = tools.GetByID(ctx, toolID)
	}
	if err != nil {
		return nil, err
	}
	if tool.IsDeleted() {
		return nil, domain.NotFoundError("tool %d not found", toolID)
	}
	if tool.OwnerID != actorID {
		return nil, domain.AuthorizationError("only the owner can modify tool %d", toolID)
	}
	return tool, nil
}

func (s *toolService) UpdateTool(ctx context.Context, actorID, toolID int32, in ToolInput) (*domain.ToolView, error) {
	if err := validateToolInput(in); err != nil {
		return nil, err
	}
	tool, err := ownedTool(ctx, s.store.Tools(), actorID, toolID, false)
	if err != nil {
		return nil, err
	}
	tool.Name = strings.TrimSpace(in.Name)
	tool.Description = in.Description
	tool.Address = in.Address
	tool.Lat = in.Lat
	tool.Lng = in.Lng
	tool.IconKey = in.IconKey
	if err := s.store.Tools().Update(ctx, tool); err != nil {
		return nil, err
	}
	// Re-read so availability reflects any loan change that happened meanwhile.
	return s.GetTool(ctx, toolID)
}

func (s *toolService) DeleteTool(ctx context.Context, actorID, toolID int32) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		tool, err := ownedTool(ctx, tx.Tools(), actorID, toolID, true)
		if err != nil {
			return err
		}
		if err := ensureNotLent(ctx, tx, tool); err != nil {
			return err
		}
		return tx.Tools().Delete(ctx, toolID)
	})
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Tool deleted", "toolID", toolID, "ownerID", actorID)
	return nil
}

// ensureNotLent rejects owner changes to a tool that has an active loan.
func ensureNotLent(ctx context.Context, tx repository.Repositories, tool *domain.Tool) error {
	if tool.ActiveRequestID != nil {
		return domain.ConflictError("tool %d is lent out under borrow request %d", tool.ID, *tool.ActiveRequestID)
	}
	active, err := tx.BorrowRequests().FindActiveByTool(ctx, tool.ID)
	if err != nil {
		return err
	}
	if active != nil {
		return domain.ConflictError("tool %d is lent out under borrow request %d", tool.ID, active.ID)
	}
	return nil
}

func (s *toolService) SetAvailability(ctx context.Context, actorID, toolID int32, available *bool) (*domain.ToolView, error) {
	var result *domain.Tool
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		tool, err := ownedTool(ctx, tx.Tools(), actorID, toolID, true)
		if err != nil {
			return err
		}
		if err := ensureNotLent(ctx, tx, tool); err != nil {
			return err
		}
		target := !tool.IsAvailable
		if available != nil {
			target = *available
		}
		if err := tx.Tools().SetAvailability(ctx, tool.ID, target, nil); err != nil {
			return err
		}
		tool.IsAvailable = target
		result = tool
		return nil
	})
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("set_availability", domain.KindName(err)).Inc()
		return nil, err
	}
	metrics.AvailabilityTogglesTotal.Inc()
	logger.InfoContext(ctx, "Tool availability changed", "toolID", toolID, "isAvailable", result.IsAvailable)
	return s.view(ctx, s.store, result)
}

func (s *toolService) ListTools(ctx context.Context) ([]domain.ToolView, error) {
	tools, err := s.store.Tools().List(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, tools)
}

func (s *toolService) ListToolsByOwner(ctx context.Context, ownerID int32) ([]domain.ToolView, error) {
	tools, err := s.store.Tools().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, tools)
}

func (s *toolService) views(ctx context.Context, tools []domain.Tool) ([]domain.ToolView, error) {
	out := make([]domain.ToolView, 0, len(tools))
	for i := range tools {
		v, err := s.view(ctx, s.store, &tools[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

// view folds the current loan and pending request count into a tool.
func (s *toolService) view(ctx context.Context, repos repository.Repositories, tool *domain.Tool) (*domain.ToolView, error) {
	v := &domain.ToolView{Tool: *tool}

	pending, err := repos.BorrowRequests().CountPendingByTool(ctx, tool.ID)
	if err != nil {
		return nil, err
	}
	v.PendingRequestCount = pending

	if tool.ActiveRequestID == nil {
		return v, nil
	}
	loan, err := repos.BorrowRequests().GetByID(ctx, *tool.ActiveRequestID)
	if err != nil {
		return nil, err
	}
	due := utils.ComputeDue(loan.Status, loan.DueDate, clock.Today(s.clock))
	borrower := loan.BorrowerID
	v.IsBorrowed = true
	v.BorrowedByUserID = &borrower
	v.BorrowedStartDate = loan.StartDate
	v.BorrowedDueDate = loan.DueDate
	v.BorrowedIsOverdue = due.IsOverdue
	v.BorrowedDaysOverdue = due.DaysOverdue
	v.BorrowedDaysUntilDue = due.DaysUntilDue
	return v, nil
}
