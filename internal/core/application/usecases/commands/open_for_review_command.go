package commands

import (
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrOpenForReviewCommandIsNotConstructed = errors.New(
	"OpenForReviewCommand must be created via NewOpenForReviewCommand constructor",
)

// OpenForReviewCommand marks that a carrier reviewer picked up a PENDING_CARRIER_REVIEW invoice.
type OpenForReviewCommand struct {
	actor     kernel.Actor
	invoiceID kernel.UUID

	guard guard.ConstructorGuard
}

func NewOpenForReviewCommand(actor kernel.Actor, invoiceID kernel.UUID) (OpenForReviewCommand, error) {
	if err := errors.Join(actor.Validate(), invoiceID.Validate()); err != nil {
		return OpenForReviewCommand{}, err
	}

	return OpenForReviewCommand{
		actor:     actor,
		invoiceID: invoiceID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c OpenForReviewCommand) Validate() error {
	return c.guard.Validate(ErrOpenForReviewCommandIsNotConstructed)
}

func (c OpenForReviewCommand) Actor() kernel.Actor    { return c.actor }
func (c OpenForReviewCommand) InvoiceID() kernel.UUID { return c.invoiceID }
