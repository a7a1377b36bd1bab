package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/logger"
)

// Jobs is the set of reports the scheduler triggers.
type Jobs interface {
	Config() *config.Config
	ReportExpiredRentals() error
	SendFleetSummary() error
}

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner Jobs) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

func (s *Scheduler) register(name, spec string, job func() error) {
	if spec == "" {
		logger.Warn("Job disabled, no schedule configured", "job", name)
		return
	}
	_, err := s.cron.AddFunc(spec, func() {
		// Errors are logged and counted by the runner.
		_ = job()
	})
	if err != nil {
		logger.Error("Failed to register job", "job", name, "spec", spec, "error", err)
	}
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	s.register("ReportExpiredRentals", cfg.ExpiredRentalsReport, s.jobs.ReportExpiredRentals)
	s.register("SendFleetSummary", cfg.FleetSummary, s.jobs.SendFleetSummary)

	logger.Info("Cron jobs registered", "count", len(s.cron.Entries()))
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
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
