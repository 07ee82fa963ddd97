package jobs

import (
	"context"
	"time"

	"toolshare-backend/internal/logger"
	"toolshare-backend/internal/metrics"
)

const jobTimeout = 5 * time.Minute

// OverdueReport summarizes active loans at the time of a run.
type OverdueReport struct {
	Active  int
	Overdue int
	DueSoon int // due today or tomorrow
}

// ReportOverdueLoans logs every active loan past its due date and publishes
// the count. Overdue is derived on read, so nothing is written back.
func (jr *JobRunner) ReportOverdueLoans() {
	jr.runWithRecovery("ReportOverdueLoans", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		report, err := jr.reportOverdueLoans(ctx)
		if err != nil {
			logger.Error("Failed to report overdue loans", "error", err)
			return
		}
		logger.Info("Overdue loan report",
			"active", report.Active,
			"overdue", report.Overdue,
			"due_soon", report.DueSoon,
		)
	})
}

func (jr *JobRunner) reportOverdueLoans(ctx context.Context) (OverdueReport, error) {
	loans, err := jr.requests.ListActiveLoans(ctx)
	if err != nil {
		return OverdueReport{}, err
	}

	report := OverdueReport{Active: len(loans)}
	for _, loan := range loans {
		switch {
		case loan.IsOverdue:
			report.Overdue++
			logger.Warn("Loan overdue",
				"request_id", loan.ID,
				"tool_id", loan.ToolID,
				"borrower_id", loan.BorrowerID,
				"owner_id", loan.OwnerID,
				"status", loan.Status,
				"due_date", loan.DueDate.String(),
				"days_overdue", loan.DaysOverdue,
			)
		case loan.DaysUntilDue <= 1:
			report.DueSoon++
		}
	}

	metrics.OverdueLoans.Set(float64(report.Overdue))
	return report, nil
}
