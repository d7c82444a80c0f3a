package commands

import (
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrApproveInvoiceCommandIsNotConstructed = errors.New(
	"ApproveInvoiceCommand must be created via NewApproveInvoiceCommand constructor",
)

// ApproveInvoiceCommand approves a whole invoice. Notes are optional.
type ApproveInvoiceCommand struct {
	actor     kernel.Actor
	invoiceID kernel.UUID
	notes     string

	guard guard.ConstructorGuard
}

func NewApproveInvoiceCommand(actor kernel.Actor, invoiceID kernel.UUID, notes string) (ApproveInvoiceCommand, error) {
	if err := errors.Join(actor.Validate(), invoiceID.Validate()); err != nil {
		return ApproveInvoiceCommand{}, err
	}

	return ApproveInvoiceCommand{
		actor:     actor,
		invoiceID: invoiceID,
		notes:     notes,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ApproveInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrApproveInvoiceCommandIsNotConstructed)
}

func (c ApproveInvoiceCommand) Actor() kernel.Actor    { return c.actor }
func (c ApproveInvoiceCommand) InvoiceID() kernel.UUID { return c.invoiceID }
func (c ApproveInvoiceCommand) Notes() string          { return c.notes }
