package jobs

import (
	"context"
	"fmt"
	"time"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/metrics"
	"driveeasy-rental-backend/internal/repository"
	"driveeasy-rental-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store    repository.Store
	emailSvc service.EmailService
	config   *config.Config
	now      func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store repository.Store, emailSvc service.EmailService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    store,
		emailSvc: emailSvc,
		config:   cfg,
		now:      time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		result := "success"
		if err != nil {
			result = "error"
		}
		metrics.JobRuns.WithLabelValues(jobName, result).Inc()
	}()

	logger.Info("Starting job", "job", jobName)
	if err = jobFunc(context.Background()); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err)
		return err
	}
	logger.Info("Job completed", "job", jobName)
	return nil
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() error {
	var firstErr error
	for _, job := range []func() error{jr.ReportExpiredRentals, jr.SendFleetSummary} {
		if err := job(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
