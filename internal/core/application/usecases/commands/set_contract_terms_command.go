package commands

import (
	"errors"
	"slices"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrSetContractTermsCommandIsNotConstructed = errors.New(
	"SetContractTermsCommand must be created via NewSetContractTermsCommand constructor",
)

// SetContractTermsCommand replaces the rate card and guidelines of a contract.
// Invoices already validated keep the expected amounts they were given.
type SetContractTermsCommand struct {
	actor      kernel.Actor
	contractID kernel.UUID
	terms      []validation.ContractTerm

	guard guard.ConstructorGuard
}

func NewSetContractTermsCommand(
	actor kernel.Actor,
	contractID kernel.UUID,
	terms []validation.ContractTerm,
) (SetContractTermsCommand, error) {
	if err := errors.Join(actor.Validate(), contractID.Validate()); err != nil {
		return SetContractTermsCommand{}, err
	}
	if _, _, err := validation.NewContractTerms(contractID, terms); err != nil {
		return SetContractTermsCommand{}, err
	}

	return SetContractTermsCommand{
		actor:      actor,
		contractID: contractID,
		terms:      slices.Clone(terms),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c SetContractTermsCommand) Validate() error {
	return c.guard.Validate(ErrSetContractTermsCommandIsNotConstructed)
}

func (c SetContractTermsCommand) Actor() kernel.Actor              { return c.actor }
func (c SetContractTermsCommand) ContractID() kernel.UUID          { return c.contractID }
func (c SetContractTermsCommand) Terms() []validation.ContractTerm { return slices.Clone(c.terms) }
