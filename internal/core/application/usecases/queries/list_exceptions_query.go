package queries

import (
	"errors"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrListExceptionsQueryIsNotConstructed = errors.New(
	"ListExceptionsQuery must be created via NewListExceptionsQuery constructor",
)

// ListExceptionsQuery lists every exception raised on one line item, terminal ones included.
type ListExceptionsQuery struct {
	lineItemID kernel.UUID
	supplierID *kernel.UUID
	guard      guard.ConstructorGuard
}

func NewListExceptionsQuery(lineItemID kernel.UUID) (ListExceptionsQuery, error) {
	if err := lineItemID.Validate(); err != nil {
		return ListExceptionsQuery{}, err
	}
	return ListExceptionsQuery{
		lineItemID: lineItemID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q ListExceptionsQuery) Validate() error {
	return q.guard.Validate(ErrListExceptionsQueryIsNotConstructed)
}

func (q ListExceptionsQuery) LineItemID() kernel.UUID {
	return q.lineItemID
}

// ForSupplier narrows the query to lines on the supplier's own invoices.
// A line on someone else's invoice is then reported as not found.
func (q ListExceptionsQuery) ForSupplier(supplierID kernel.UUID) ListExceptionsQuery {
	q.supplierID = &supplierID
	return q
}

func (q ListExceptionsQuery) SupplierID() *kernel.UUID {
	return q.supplierID
}

type ExceptionView struct {
	ID               kernel.UUID
	LineItemID       kernel.UUID
	ValidationType   validation.Type
	Status           invoice.ExceptionStatus
	Severity         validation.Severity
	RequiredAction   validation.RequiredAction
	Message          string
	SupplierResponse string
	ResolutionAction invoice.ResolutionAction
	ResolutionNotes  string
	ResolvedBy       string
	ResolvedAt       *time.Time
	CreatedAt        time.Time
}
