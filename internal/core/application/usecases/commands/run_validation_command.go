package commands

import (
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrRunValidationCommandIsNotConstructed = errors.New(
	"RunValidationCommand must be created via NewRunValidationCommand constructor",
)

// RunValidationCommand classifies and validates a SUBMITTED invoice, or resumes a
// run that stopped in PROCESSING.
type RunValidationCommand struct {
	actor     kernel.Actor
	invoiceID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRunValidationCommand(actor kernel.Actor, invoiceID kernel.UUID) (RunValidationCommand, error) {
	if err := errors.Join(actor.Validate(), invoiceID.Validate()); err != nil {
		return RunValidationCommand{}, err
	}

	return RunValidationCommand{
		actor:     actor,
		invoiceID: invoiceID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RunValidationCommand) Validate() error {
	return c.guard.Validate(ErrRunValidationCommandIsNotConstructed)
}

func (c RunValidationCommand) Actor() kernel.Actor    { return c.actor }
func (c RunValidationCommand) InvoiceID() kernel.UUID { return c.invoiceID }
