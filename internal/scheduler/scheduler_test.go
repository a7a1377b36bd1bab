package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"driveeasy-rental-backend/internal/config"
)

type fakeJobs struct {
	cfg config.Config
}

func (f *fakeJobs) Config() *config.Config       { return &f.cfg }
func (f *fakeJobs) ReportExpiredRentals() error { return nil }
func (f *fakeJobs) SendFleetSummary() error     { return nil }

func TestNewScheduler_RegistersConfiguredJobs(t *testing.T) {
	jobs := &fakeJobs{}
	jobs.cfg.Scheduler.ExpiredRentalsReport = "0 0 7 * * *"
	jobs.cfg.Scheduler.FleetSummary = "0 0 18 * * *"

	s := NewScheduler(jobs)
	assert.Len(t, s.cron.Entries(), 2)
	assert.True(t, s.IsRunning())
}

func TestNewScheduler_SkipsInvalidAndEmptySpecs(t *testing.T) {
	jobs := &fakeJobs{}
	jobs.cfg.Scheduler.ExpiredRentalsReport = "not a cron spec"

	s := NewScheduler(jobs)
	assert.Empty(t, s.cron.Entries())
	assert.False(t, s.IsRunning())
}
