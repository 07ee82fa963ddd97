package utils

import "toolshare-backend/internal/domain"

// DueInfo is the derived due status of a borrow request on a given day.
type DueInfo struct {
	IsOverdue    bool
	DaysOverdue  int
	DaysUntilDue int
}

// ComputeDue derives the due status of a request from its status, due date and
// today's date. Only active loans (APPROVED, RETURN_PENDING) can be overdue or
// count down to a due date; a loan due today is not overdue.
func ComputeDue(status domain.RequestStatus, due, today domain.Date) DueInfo {
	if !status.IsActive() || due.IsZero() {
		return DueInfo{}
	}
	if due.Before(today) {
		return DueInfo{
			IsOverdue:   true,
			DaysOverdue: due.DaysUntil(today),
		}
	}
	return DueInfo{DaysUntilDue: today.DaysUntil(due)}
}
