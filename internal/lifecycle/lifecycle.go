// Package lifecycle holds the borrow-request transition table. It is pure:
// callers apply the returned Outcome to storage themselves.
package lifecycle

import (
	"slices"

	"toolshare-backend/internal/domain"
)

type Action string

const (
	ActionApprove        Action = "approve"
	ActionDecline        Action = "decline"
	ActionCancel         Action = "cancel"
	ActionInitiateReturn Action = "initiate-return"
	ActionConfirmReturn  Action = "confirm-return"
	// ActionReturn is the older owner-only return that skips the borrower's
	// initiate-return step. Kept as an alias of confirm-return.
	ActionReturn Action = "return"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleBorrower Role = "borrower"
)

// Effect is the change a transition makes to the tool's availability.
type Effect int

const (
	EffectNone Effect = iota
	// EffectReserveTool marks the tool unavailable and points it at the request.
	EffectReserveTool
	// EffectReleaseTool makes the tool available again and clears the pointer.
	EffectReleaseTool
)

type rule struct {
	role   Role
	from   []domain.RequestStatus
	to     domain.RequestStatus
	effect Effect
}

var table = map[Action]rule{
	ActionApprove: {
		role:   RoleOwner,
		from:   []domain.RequestStatus{domain.RequestStatusPending},
		to:     domain.RequestStatusApproved,
		effect: EffectReserveTool,
	},
	ActionDecline: {
		role: RoleOwner,
		from: []domain.RequestStatus{domain.RequestStatusPending},
		to:   domain.RequestStatusDeclined,
	},
	ActionCancel: {
		role: RoleBorrower,
		from: []domain.RequestStatus{domain.RequestStatusPending},
		to:   domain.RequestStatusCancelled,
	},
	ActionInitiateReturn: {
		role: RoleBorrower,
		from: []domain.RequestStatus{domain.RequestStatusApproved},
		to:   domain.RequestStatusReturnPending,
	},
	ActionConfirmReturn: {
		role:   RoleOwner,
		from:   []domain.RequestStatus{domain.RequestStatusReturnPending},
		to:     domain.RequestStatusReturned,
		effect: EffectReleaseTool,
	},
	ActionReturn: {
		role:   RoleOwner,
		from:   []domain.RequestStatus{domain.RequestStatusApproved, domain.RequestStatusReturnPending},
		to:     domain.RequestStatusReturned,
		effect: EffectReleaseTool,
	},
}

// Actions lists every action in a stable order.
func Actions() []Action {
	return []Action{ActionApprove, ActionDecline, ActionCancel, ActionInitiateReturn, ActionConfirmReturn, ActionReturn}
}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := table[a]; !ok {
		return "", domain.ValidationError("unknown action %q", s)
	}
	return a, nil
}

// RequiredRole reports which party may perform a.
func RequiredRole(a Action) (Role, bool) {
	r, ok := table[a]
	return r.role, ok
}

// RoleOf resolves the actor's role on req.
func RoleOf(req *domain.BorrowRequest, actorID int32) (Role, bool) {
	switch actorID {
	case req.OwnerID:
		return RoleOwner, true
	case req.BorrowerID:
		return RoleBorrower, true
	}
	return "", false
}

type Outcome struct {
	From   domain.RequestStatus
	Next   domain.RequestStatus
	Effect Effect
}

// Transition validates action against the current state of req on behalf of
// actorID. Checks run in order: known action, actor role, source status.
func Transition(req *domain.BorrowRequest, action Action, actorID int32) (Outcome, error) {
	r, ok := table[action]
	if !ok {
		return Outcome{}, domain.ValidationError("unknown action %q", action)
	}

	role, ok := RoleOf(req, actorID)
	if !ok {
		return Outcome{}, domain.AuthorizationError("user %d is not a party to borrow request %d", actorID, req.ID)
	}
	if role != r.role {
		return Outcome{}, domain.AuthorizationError("only the %s can %s a borrow request", partyName(r.role), action)
	}

	if !slices.Contains(r.from, req.Status) {
		return Outcome{}, domain.StateError("cannot %s a borrow request that is %s", action, req.Status)
	}

	return Outcome{From: req.Status, Next: r.to, Effect: r.effect}, nil
}

func partyName(r Role) string {
	if r == RoleOwner {
		return "tool owner"
	}
	return "borrower"
}
