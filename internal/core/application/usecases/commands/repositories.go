// Package commands contains the operations that change invoices, exceptions,
// mapping rules and contract terms.
//
// Every invoice command follows the same shape: authorize the actor's role,
// take the per-invoice lock, open one transaction, load the aggregate, apply
// the domain operation, persist it, append its audit events and commit.
// An audit append failure rolls the whole command back.
package commands

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// InvoiceRepoFactory provides access to the invoice repository within a transaction.
	InvoiceRepoFactory interface {
		InvoiceRepository() ports.InvoiceRepository
	}

	// MappingRuleRepoFactory provides access to the mapping rule repository within a transaction.
	MappingRuleRepoFactory interface {
		MappingRuleRepository() ports.MappingRuleRepository
	}

	// ContractTermsRepoFactory provides access to contract terms within a transaction.
	ContractTermsRepoFactory interface {
		ContractTermsRepository() ports.ContractTermsRepository
	}

	// AuditSinkFactory provides the audit sink bound to the transaction.
	AuditSinkFactory interface {
		AuditSink() ports.AuditSink
	}

	// UoW spans everything an invoice command may touch.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   inv, err := uow.InvoiceRepository().Get(ctx, id)
	//   // ... apply the domain operation
	//   err = uow.InvoiceRepository().Update(ctx, inv)
	//   err = uow.AuditSink().Append(ctx, event)
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		InvoiceRepoFactory
		MappingRuleRepoFactory
		ContractTermsRepoFactory
		AuditSinkFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}

	// ContractUoW is used by contract maintenance, which never touches invoices.
	ContractUoW interface {
		TxManager
		ContractTermsRepoFactory
		AuditSinkFactory
	}

	// ContractUoWFactory creates new contract unit of work instances.
	ContractUoWFactory interface {
		Create() ContractUoW
	}
)
