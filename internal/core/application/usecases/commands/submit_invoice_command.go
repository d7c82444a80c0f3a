package commands

import (
	"errors"
	"slices"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrSubmitInvoiceCommandIsNotConstructed = errors.New(
	"SubmitInvoiceCommand must be created via NewSubmitInvoiceCommand constructor",
)

// SubmitInvoiceCommand sends parsed lines to the carrier. From REVIEW_REQUIRED it
// is a resubmission and the lines become the next version.
type SubmitInvoiceCommand struct { //nolint:recvcheck //using for validation
	actor     kernel.Actor
	invoiceID kernel.UUID
	lines     []invoice.ParsedLine

	guard guard.ConstructorGuard
}

func NewSubmitInvoiceCommand(
	actor kernel.Actor,
	invoiceID kernel.UUID,
	lines []invoice.ParsedLine,
) (SubmitInvoiceCommand, error) {
	var lineErrs []error
	for _, l := range lines {
		lineErrs = append(lineErrs, l.Validate())
	}

	if err := errors.Join(
		actor.Validate(),
		invoiceID.Validate(),
		errors.Join(lineErrs...),
	); err != nil {
		return SubmitInvoiceCommand{}, err
	}

	return SubmitInvoiceCommand{
		actor:     actor,
		invoiceID: invoiceID,
		lines:     slices.Clone(lines),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SubmitInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrSubmitInvoiceCommandIsNotConstructed)
}

func (c SubmitInvoiceCommand) Actor() kernel.Actor         { return c.actor }
func (c SubmitInvoiceCommand) InvoiceID() kernel.UUID      { return c.invoiceID }
func (c SubmitInvoiceCommand) Lines() []invoice.ParsedLine { return slices.Clone(c.lines) }
