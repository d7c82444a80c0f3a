package commands

import (
	"errors"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrRespondToExceptionCommandIsNotConstructed = errors.New(
	"RespondToExceptionCommand must be created via NewRespondToExceptionCommand constructor",
)

// RespondToExceptionCommand carries a supplier's answer to one OPEN exception.
type RespondToExceptionCommand struct {
	actor       kernel.Actor
	exceptionID kernel.UUID
	text        string

	guard guard.ConstructorGuard
}

func NewRespondToExceptionCommand(
	actor kernel.Actor,
	exceptionID kernel.UUID,
	text string,
) (RespondToExceptionCommand, error) {
	var textErr error
	if strings.TrimSpace(text) == "" {
		textErr = errs.NewValueIsRequiredError("response")
	}

	if err := errors.Join(actor.Validate(), exceptionID.Validate(), textErr); err != nil {
		return RespondToExceptionCommand{}, err
	}

	return RespondToExceptionCommand{
		actor:       actor,
		exceptionID: exceptionID,
		text:        text,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RespondToExceptionCommand) Validate() error {
	return c.guard.Validate(ErrRespondToExceptionCommandIsNotConstructed)
}

func (c RespondToExceptionCommand) Actor() kernel.Actor      { return c.actor }
func (c RespondToExceptionCommand) ExceptionID() kernel.UUID { return c.exceptionID }
func (c RespondToExceptionCommand) Text() string             { return c.text }
