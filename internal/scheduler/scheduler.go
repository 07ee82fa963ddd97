package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"toolshare-backend/internal/jobs"
	"toolshare-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner. Schedules
// are read in loc so "6 AM" means 6 AM where due dates are counted.
func NewScheduler(jobRunner *jobs.JobRunner, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	// Seconds precision, matching the schedule strings in config
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	// Nightly overdue report
	_, err := s.cron.AddFunc(cfg.ReportOverdueLoans, s.jobs.ReportOverdueLoans)
	if err != nil {
		logger.Error("Failed to register ReportOverdueLoans job", "error", err, "schedule", cfg.ReportOverdueLoans)
		return
	}

	logger.Info("All cron jobs registered successfully", "jobs", len(s.cron.Entries()))
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has jobs registered
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}

// NextRun reports when the first registered job fires after from.
func (s *Scheduler) NextRun(from time.Time) time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(from)
}
