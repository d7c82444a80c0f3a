package queries

import (
	"errors"
	"strings"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrListInvoicesQueryIsNotConstructed = errors.New(
	"ListInvoicesQuery must be created via NewListInvoicesQuery constructor",
)

// ListInvoicesQuery lists invoice headers, most recently updated first.
// An empty status lists every status; a supplier filter restricts the list to
// one supplier's invoices, which is how supplier actors see the list.
//
// Example:
//
//	query, err := NewListInvoicesQuery("PENDING_CARRIER_REVIEW", nil)
//	invoices, err := NewListInvoicesQueryHandler(db).Handle(ctx, query)
type ListInvoicesQuery struct {
	status     *invoice.Status
	supplierID *kernel.UUID
	guard      guard.ConstructorGuard
}

func NewListInvoicesQuery(status string, supplierID *kernel.UUID) (ListInvoicesQuery, error) {
	q := ListInvoicesQuery{guard: guard.NewConstructorGuard()}

	if strings.TrimSpace(status) != "" {
		parsed, err := invoice.ParseStatus(status)
		if err != nil {
			return ListInvoicesQuery{}, err
		}
		q.status = &parsed
	}

	if supplierID != nil {
		if err := supplierID.Validate(); err != nil {
			return ListInvoicesQuery{}, err
		}
		id := *supplierID
		q.supplierID = &id
	}

	return q, nil
}

func (q ListInvoicesQuery) Validate() error {
	return q.guard.Validate(ErrListInvoicesQueryIsNotConstructed)
}

func (q ListInvoicesQuery) Status() *invoice.Status  { return q.status }
func (q ListInvoicesQuery) SupplierID() *kernel.UUID { return q.supplierID }

type InvoiceListItem struct {
	ID             kernel.UUID
	SupplierID     kernel.UUID
	InvoiceNumber  string
	Status         invoice.Status
	CurrentVersion int
	UpdatedAt      time.Time
}
