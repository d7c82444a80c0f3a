// Package ports defines the contracts between the billing core and its adapters:
// persistence, the validation engine, the taxonomy catalog, the audit sink,
// locking, authorization, payment export and metrics.
package ports

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
)

// InvoiceRepository persists the invoice aggregate with every line version and exception.
type InvoiceRepository interface {
	// Add persists a new invoice.
	Add(ctx context.Context, aggregate *invoice.Invoice) error

	// Update persists the header and upserts every line and exception.
	// Rows are never deleted.
	Update(ctx context.Context, aggregate *invoice.Invoice) error

	// Get loads the full aggregate. Returns errs.ObjectNotFoundError when absent.
	Get(ctx context.Context, id kernel.UUID) (*invoice.Invoice, error)

	// InvoiceIDByLineItem resolves the owning invoice of a line item.
	InvoiceIDByLineItem(ctx context.Context, lineItemID kernel.UUID) (kernel.UUID, error)

	// InvoiceIDByException resolves the owning invoice of an exception.
	InvoiceIDByException(ctx context.Context, exceptionID kernel.UUID) (kernel.UUID, error)

	// ListIDsByStatus returns the ids of invoices in any of statuses, oldest update first.
	ListIDsByStatus(ctx context.Context, statuses ...invoice.Status) ([]kernel.UUID, error)
}
