package commands

import (
	"errors"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrRequestChangesCommandIsNotConstructed = errors.New(
	"RequestChangesCommand must be created via NewRequestChangesCommand constructor",
)

// RequestChangesCommand sends an invoice under carrier review back to the supplier.
type RequestChangesCommand struct {
	actor     kernel.Actor
	invoiceID kernel.UUID
	notes     string

	guard guard.ConstructorGuard
}

func NewRequestChangesCommand(actor kernel.Actor, invoiceID kernel.UUID, notes string) (RequestChangesCommand, error) {
	var notesErr error
	if strings.TrimSpace(notes) == "" {
		notesErr = errs.NewValueIsRequiredError("notes")
	}

	if err := errors.Join(actor.Validate(), invoiceID.Validate(), notesErr); err != nil {
		return RequestChangesCommand{}, err
	}

	return RequestChangesCommand{
		actor:     actor,
		invoiceID: invoiceID,
		notes:     notes,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RequestChangesCommand) Validate() error {
	return c.guard.Validate(ErrRequestChangesCommandIsNotConstructed)
}

func (c RequestChangesCommand) Actor() kernel.Actor    { return c.actor }
func (c RequestChangesCommand) InvoiceID() kernel.UUID { return c.invoiceID }
func (c RequestChangesCommand) Notes() string          { return c.notes }
