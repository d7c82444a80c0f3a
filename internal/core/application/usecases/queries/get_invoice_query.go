// Package queries holds the read side. Handlers run raw SQL against the tables
// written by the postgres adapters and take no invoice lock.
package queries

import (
	"errors"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrGetInvoiceQueryIsNotConstructed = errors.New(
	"GetInvoiceQuery must be created via NewGetInvoiceQuery constructor",
)

// GetInvoiceQuery loads an invoice header with the summary of its current version.
//
// Example:
//
//	query, err := NewGetInvoiceQuery(invoiceID)
//	if err != nil {
//	    return err
//	}
//	view, err := NewGetInvoiceQueryHandler(db).Handle(ctx, query)
//	fmt.Println(view.Status, view.Summary.TotalPayable.StringFixed(2))
type GetInvoiceQuery struct {
	invoiceID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewGetInvoiceQuery(invoiceID kernel.UUID) (GetInvoiceQuery, error) {
	if err := invoiceID.Validate(); err != nil {
		return GetInvoiceQuery{}, err
	}
	return GetInvoiceQuery{
		invoiceID: invoiceID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q GetInvoiceQuery) Validate() error {
	return q.guard.Validate(ErrGetInvoiceQueryIsNotConstructed)
}

func (q GetInvoiceQuery) InvoiceID() kernel.UUID {
	return q.invoiceID
}

// GetInvoiceQueryResponse is the invoice header plus its current-version summary.
type GetInvoiceQueryResponse struct {
	ID             kernel.UUID
	SupplierID     kernel.UUID
	ContractID     kernel.UUID
	InvoiceNumber  string
	InvoiceDate    time.Time
	Status         invoice.Status
	CurrentVersion int
	SubmittedAt    *time.Time
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Summary        invoice.Summary
}
