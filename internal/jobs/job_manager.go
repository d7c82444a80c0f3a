package jobs

import (
	"fmt"

	"go.uber.org/zap"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	validationRetryJob *ValidationRetryJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	finder StuckInvoiceFinder,
	runner ValidationRunner,
	retrySchedule string,
	logger *zap.Logger,
) *JobManager {
	return &JobManager{
		validationRetryJob: NewValidationRetryJob(finder, runner, retrySchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.validationRetryJob.Start(); err != nil {
		return fmt.Errorf("failed to start validation retry job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.validationRetryJob.Stop()
}
