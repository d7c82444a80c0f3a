package ports

import "time"

// EventRecorder receives operational signals after a command commits.
type EventRecorder interface {
	InvoiceTransitioned(from, to string)
	ExceptionsRaised(validationType string, n int)
	CommandHandled(command string, err error, elapsed time.Duration)
	InvoiceExported()
}
