package ports

import (
	"context"
)

// UnitOfWorkFactory creates a UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one database transaction. Repositories it hands out are bound
// to the transaction once Begin has been called, and to the plain connection before.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	InvoiceRepository() InvoiceRepository
	MappingRuleRepository() MappingRuleRepository
	ContractTermsRepository() ContractTermsRepository

	// AuditSink appends inside the same transaction, so a failed append rolls back the mutation.
	AuditSink() AuditSink
}
