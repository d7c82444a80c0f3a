// Package jobs provides scheduled background tasks for the billing service.
//
// Jobs use github.com/robfig/cron/v3 with the six-field format (seconds first).
//
// # Available Jobs
//
// 1. ValidationRetryJob - re-runs validation for invoices stuck in SUBMITTED or PROCESSING
//
// # Usage
//
//	jobManager := jobs.NewJobManager(invoiceRepository, runValidationHandler, cfg.ValidationRetryCron, logger)
//	if err := jobManager.StartAll(); err != nil {
//		logger.Fatal("start jobs", zap.Error(err))
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Invoices that settled or disappeared between listing and running are skipped
// quietly. Every other failure is logged and the invoice is picked up again on
// the next tick.
package jobs
