package commands

import (
	"errors"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrDisputeInvoiceCommandIsNotConstructed = errors.New(
	"DisputeInvoiceCommand must be created via NewDisputeInvoiceCommand constructor",
)

// DisputeInvoiceCommand terminates an active invoice.
type DisputeInvoiceCommand struct {
	actor     kernel.Actor
	invoiceID kernel.UUID
	reason    string

	guard guard.ConstructorGuard
}

func NewDisputeInvoiceCommand(actor kernel.Actor, invoiceID kernel.UUID, reason string) (DisputeInvoiceCommand, error) {
	var reasonErr error
	if strings.TrimSpace(reason) == "" {
		reasonErr = errs.NewValueIsRequiredError("reason")
	}

	if err := errors.Join(actor.Validate(), invoiceID.Validate(), reasonErr); err != nil {
		return DisputeInvoiceCommand{}, err
	}

	return DisputeInvoiceCommand{
		actor:     actor,
		invoiceID: invoiceID,
		reason:    reason,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c DisputeInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrDisputeInvoiceCommandIsNotConstructed)
}

func (c DisputeInvoiceCommand) Actor() kernel.Actor    { return c.actor }
func (c DisputeInvoiceCommand) InvoiceID() kernel.UUID { return c.invoiceID }
func (c DisputeInvoiceCommand) Reason() string         { return c.reason }
