package commands

import (
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrExportInvoiceCommandIsNotConstructed = errors.New(
	"ExportInvoiceCommand must be created via NewExportInvoiceCommand constructor",
)

// ExportInvoiceCommand writes the payment export of an APPROVED invoice.
type ExportInvoiceCommand struct {
	actor     kernel.Actor
	invoiceID kernel.UUID

	guard guard.ConstructorGuard
}

func NewExportInvoiceCommand(actor kernel.Actor, invoiceID kernel.UUID) (ExportInvoiceCommand, error) {
	if err := errors.Join(actor.Validate(), invoiceID.Validate()); err != nil {
		return ExportInvoiceCommand{}, err
	}

	return ExportInvoiceCommand{
		actor:     actor,
		invoiceID: invoiceID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ExportInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrExportInvoiceCommandIsNotConstructed)
}

func (c ExportInvoiceCommand) Actor() kernel.Actor    { return c.actor }
func (c ExportInvoiceCommand) InvoiceID() kernel.UUID { return c.invoiceID }
