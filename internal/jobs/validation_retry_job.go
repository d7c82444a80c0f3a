package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/commands"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultValidationRetrySchedule runs the retry once a minute, on the minute.
const DefaultValidationRetrySchedule = "0 * * * * *"

// StuckInvoiceFinder lists invoices by status.
type StuckInvoiceFinder interface {
	ListIDsByStatus(ctx context.Context, statuses ...invoice.Status) ([]kernel.UUID, error)
}

// ValidationRunner runs the validation pipeline for one invoice.
type ValidationRunner interface {
	Handle(ctx context.Context, command commands.RunValidationCommand) (invoice.Snapshot, error)
}

// ValidationRetryJob re-runs validation for invoices left in SUBMITTED or
// PROCESSING, e.g. after a crash between the two validation transactions.
type ValidationRetryJob struct {
	finder   StuckInvoiceFinder
	runner   ValidationRunner
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewValidationRetryJob creates the job. An empty schedule means DefaultValidationRetrySchedule;
// the schedule uses the six-field cron format with seconds.
func NewValidationRetryJob(
	finder StuckInvoiceFinder,
	runner ValidationRunner,
	schedule string,
	logger *zap.Logger,
) *ValidationRetryJob {
	if schedule == "" {
		schedule = DefaultValidationRetrySchedule
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidationRetryJob{
		finder:   finder,
		runner:   runner,
		schedule: schedule,
		timeout:  30 * time.Second,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.Named("validation_retry_job"),
	}
}

// Start schedules the job.
func (j *ValidationRetryJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		j.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Validation retry job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *ValidationRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Validation retry job stopped")
}

// RunOnce validates every stuck invoice and returns how many runs succeeded.
// One failing invoice does not stop the pass.
func (j *ValidationRetryJob) RunOnce(ctx context.Context) int {
	ids, err := j.finder.ListIDsByStatus(ctx, invoice.Submitted, invoice.Processing)
	if err != nil {
		j.logger.Error("List stuck invoices failed", zap.Error(err))
		return 0
	}

	var validated int
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		cmd, err := commands.NewRunValidationCommand(kernel.SystemActor(), id)
		if err != nil {
			j.logger.Error("Build validation command failed", zap.Stringer("invoice_id", id), zap.Error(err))
			continue
		}

		snapshot, err := j.runner.Handle(ctx, cmd)
		switch {
		case err == nil:
			validated++
			j.logger.Info("Invoice validated by retry",
				zap.Stringer("invoice_id", id),
				zap.Stringer("status", snapshot.Status),
			)
		case errors.Is(err, errs.ErrInvalidTransition), errors.Is(err, errs.ErrObjectNotFound):
			// Settled or withdrawn since it was listed.
			j.logger.Debug("Invoice no longer needs validation", zap.Stringer("invoice_id", id))
		default:
			j.logger.Error("Validation retry failed", zap.Stringer("invoice_id", id), zap.Error(err))
		}
	}

	return validated
}
