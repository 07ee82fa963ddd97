package domain

import "time"

type Tool struct {
	ID          int32    `json:"id"`
	OwnerID     int32    `json:"owner_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	IconKey     *string  `json:"icon_key"`
	IsAvailable bool     `json:"is_available"`
	// ActiveRequestID points at the APPROVED or RETURN_PENDING request currently
	// holding the tool. Only the lifecycle engine writes it.
	ActiveRequestID *int32     `json:"active_request_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

func (t *Tool) IsDeleted() bool {
	return t.DeletedAt != nil
}

// ToolView is a tool as returned to clients, with the current loan (if any)
// and its due status folded in.
type ToolView struct {
	Tool
	IsBorrowed           bool   `json:"is_borrowed"`
	BorrowedByUserID     *int32 `json:"borrowed_by_user_id"`
	BorrowedStartDate    Date   `json:"borrowed_start_date"`
	BorrowedDueDate      Date   `json:"borrowed_due_date"`
	BorrowedIsOverdue    bool   `json:"borrowed_is_overdue"`
	BorrowedDaysOverdue  int    `json:"borrowed_days_overdue"`
	BorrowedDaysUntilDue int    `json:"borrowed_days_until_due"`
	PendingRequestCount  int    `json:"pending_request_count"`
}
