package domain

import "time"

type RequestStatus string

const (
	RequestStatusPending       RequestStatus = "PENDING"
	RequestStatusApproved      RequestStatus = "APPROVED"
	RequestStatusDeclined      RequestStatus = "DECLINED"
	RequestStatusCancelled     RequestStatus = "CANCELLED"
	RequestStatusReturnPending RequestStatus = "RETURN_PENDING"
	RequestStatusReturned      RequestStatus = "RETURNED"
)

var (
	// ActiveStatuses mark a tool as lent out.
	ActiveStatuses = []RequestStatus{RequestStatusApproved, RequestStatusReturnPending}
	// InFlightStatuses block a second request from the same borrower for the same tool.
	InFlightStatuses = []RequestStatus{RequestStatusPending, RequestStatusApproved, RequestStatusReturnPending}
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusDeclined,
		RequestStatusCancelled, RequestStatusReturnPending, RequestStatusReturned:
		return true
	}
	return false
}

func (s RequestStatus) IsActive() bool {
	return s == RequestStatusApproved || s == RequestStatusReturnPending
}

func (s RequestStatus) IsInFlight() bool {
	return s == RequestStatusPending || s.IsActive()
}

func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusDeclined || s == RequestStatusCancelled || s == RequestStatusReturned
}

type BorrowRequest struct {
	ID         int32         `json:"id"`
	ToolID     int32         `json:"tool_id"`
	BorrowerID int32         `json:"borrower_id"`
	OwnerID    int32         `json:"owner_id"`
	Message    *string       `json:"message"`
	StartDate  Date          `json:"start_date"`
	DueDate    Date          `json:"due_date"`
	Status     RequestStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type ToolSummary struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// BorrowRequestView is a request as returned to clients. The due fields are
// computed against "today" at read time and never stored.
type BorrowRequestView struct {
	BorrowRequest
	Tool         *ToolSummary `json:"tool,omitempty"`
	IsOverdue    bool         `json:"is_overdue"`
	DaysOverdue  int          `json:"days_overdue"`
	DaysUntilDue int          `json:"days_until_due"`
}
