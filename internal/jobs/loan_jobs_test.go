package jobs

import (
	"context"
	"testing"

	"toolshare-backend/internal/clock"
	"toolshare-backend/internal/config"
	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/metrics"
	"toolshare-backend/internal/repository/memory"
	"toolshare-backend/internal/service"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func overdueGauge(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.OverdueLoans.Write(&m))
	return m.GetGauge().GetValue()
}

func TestReportOverdueLoans(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clk := clock.FixedOn(domain.MustParseDate("2024-01-01"))
	requests := service.NewBorrowRequestService(store, clk)
	tools := service.NewToolService(store, clk)

	lend := func(owner, borrower int32, start, due string) {
		tool, err := tools.CreateTool(ctx, owner, service.ToolInput{Name: "Drill"})
		require.NoError(t, err)
		req, err := requests.CreateRequest(ctx, borrower, service.CreateBorrowRequestInput{
			ToolID:    tool.ID,
			StartDate: domain.MustParseDate(start),
			DueDate:   domain.MustParseDate(due),
		})
		require.NoError(t, err)
		_, err = requests.Approve(ctx, owner, req.ID)
		require.NoError(t, err)
	}

	lend(1, 2, "2024-01-01", "2024-01-03")
	lend(1, 3, "2024-01-01", "2024-01-10")
	lend(4, 2, "2024-01-01", "2024-01-05")

	runner := NewJobRunner(requests, &config.Config{})

	t.Run("NothingOverdueYet", func(t *testing.T) {
		report, err := runner.reportOverdueLoans(ctx)
		require.NoError(t, err)
		assert.Equal(t, OverdueReport{Active: 3}, report)
		assert.Equal(t, float64(0), overdueGauge(t))
	})

	t.Run("AfterDueDates", func(t *testing.T) {
		clk.AdvanceDays(5) // 2024-01-06
		report, err := runner.reportOverdueLoans(ctx)
		require.NoError(t, err)
		assert.Equal(t, OverdueReport{Active: 3, Overdue: 2}, report)
		assert.Equal(t, float64(2), overdueGauge(t))
	})

	t.Run("DueSoon", func(t *testing.T) {
		clk.AdvanceDays(3) // 2024-01-09
		report, err := runner.reportOverdueLoans(ctx)
		require.NoError(t, err)
		assert.Equal(t, OverdueReport{Active: 3, Overdue: 2, DueSoon: 1}, report)
	})

	t.Run("RunsThroughRecovery", func(t *testing.T) {
		assert.NotPanics(t, runner.ReportOverdueLoans)
		assert.NotPanics(t, runner.RunAllNightlyJobs)
	})
}
