package commands

import (
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrWithdrawInvoiceCommandIsNotConstructed = errors.New(
	"WithdrawInvoiceCommand must be created via NewWithdrawInvoiceCommand constructor",
)

// WithdrawInvoiceCommand abandons a DRAFT invoice.
type WithdrawInvoiceCommand struct {
	actor     kernel.Actor
	invoiceID kernel.UUID
	reason    string

	guard guard.ConstructorGuard
}

func NewWithdrawInvoiceCommand(actor kernel.Actor, invoiceID kernel.UUID, reason string) (WithdrawInvoiceCommand, error) {
	if err := errors.Join(actor.Validate(), invoiceID.Validate()); err != nil {
		return WithdrawInvoiceCommand{}, err
	}

	return WithdrawInvoiceCommand{
		actor:     actor,
		invoiceID: invoiceID,
		reason:    reason,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c WithdrawInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrWithdrawInvoiceCommandIsNotConstructed)
}

func (c WithdrawInvoiceCommand) Actor() kernel.Actor    { return c.actor }
func (c WithdrawInvoiceCommand) InvoiceID() kernel.UUID { return c.invoiceID }
func (c WithdrawInvoiceCommand) Reason() string         { return c.reason }
