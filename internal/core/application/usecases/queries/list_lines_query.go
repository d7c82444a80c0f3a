package queries

import (
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrListLinesQueryIsNotConstructed = errors.New(
	"ListLinesQuery must be created via NewListLinesQuery constructor",
)

// ListLinesQuery lists the lines of one invoice version. Version 0 means the
// invoice's current version.
type ListLinesQuery struct {
	invoiceID kernel.UUID
	version   int
	guard     guard.ConstructorGuard
}

func NewListLinesQuery(invoiceID kernel.UUID, version int) (ListLinesQuery, error) {
	if err := invoiceID.Validate(); err != nil {
		return ListLinesQuery{}, err
	}
	if version < 0 {
		return ListLinesQuery{}, errs.NewValueIsOutOfRangeError("version", version, 0, "unbounded")
	}
	return ListLinesQuery{
		invoiceID: invoiceID,
		version:   version,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q ListLinesQuery) Validate() error {
	return q.guard.Validate(ErrListLinesQueryIsNotConstructed)
}

func (q ListLinesQuery) InvoiceID() kernel.UUID { return q.invoiceID }
func (q ListLinesQuery) Version() int           { return q.version }

// LineItemView is one stored line item.
type LineItemView struct {
	ID               kernel.UUID
	Version          int
	LineNumber       int
	RawDescription   string
	RawCode          string
	Unit             string
	Quantity         decimal.Decimal
	RawAmount        decimal.Decimal
	ExpectedAmount   decimal.NullDecimal
	TaxonomyCode     string
	BillingComponent string
	Confidence       validation.Confidence
	MappingRuleID    *kernel.UUID
	Status           invoice.LineStatus
	PayableAmount    decimal.Decimal
	InDispute        bool
}
