package commands

import (
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrResolveExceptionCommandIsNotConstructed = errors.New(
	"ResolveExceptionCommand must be created via NewResolveExceptionCommand constructor",
)

// ResolveExceptionCommand closes an exception with a carrier decision.
type ResolveExceptionCommand struct {
	actor       kernel.Actor
	exceptionID kernel.UUID
	action      invoice.ResolutionAction
	notes       string

	guard guard.ConstructorGuard
}

func NewResolveExceptionCommand(
	actor kernel.Actor,
	exceptionID kernel.UUID,
	action invoice.ResolutionAction,
	notes string,
) (ResolveExceptionCommand, error) {
	if err := errors.Join(actor.Validate(), exceptionID.Validate(), action.Validate()); err != nil {
		return ResolveExceptionCommand{}, err
	}

	return ResolveExceptionCommand{
		actor:       actor,
		exceptionID: exceptionID,
		action:      action,
		notes:       notes,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ResolveExceptionCommand) Validate() error {
	return c.guard.Validate(ErrResolveExceptionCommandIsNotConstructed)
}

func (c ResolveExceptionCommand) Actor() kernel.Actor              { return c.actor }
func (c ResolveExceptionCommand) ExceptionID() kernel.UUID         { return c.exceptionID }
func (c ResolveExceptionCommand) Action() invoice.ResolutionAction { return c.action }
func (c ResolveExceptionCommand) Notes() string                    { return c.notes }
