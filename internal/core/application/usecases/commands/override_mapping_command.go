package commands

import (
	"errors"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrOverrideMappingCommandIsNotConstructed = errors.New(
	"OverrideMappingCommand must be created via NewOverrideMappingCommand constructor",
)

// OverrideMappingCommand reclassifies one line and, for SUPPLIER or GLOBAL scope,
// stores the mapping for future lines with the same description.
// An empty billing component takes the taxonomy entry's default.
type OverrideMappingCommand struct { //nolint:recvcheck //using for validation
	actor             kernel.Actor
	lineItemID        kernel.UUID
	taxonomyCode      string
	billingComponent  string
	scope             mapping.Scope
	sourceExceptionID *kernel.UUID
	notes             string

	guard guard.ConstructorGuard
}

func NewOverrideMappingCommand(
	actor kernel.Actor,
	lineItemID kernel.UUID,
	taxonomyCode, billingComponent string,
	scope mapping.Scope,
	sourceExceptionID *kernel.UUID,
	notes string,
) (OverrideMappingCommand, error) {
	cmd := OverrideMappingCommand{
		actor:            actor,
		lineItemID:       lineItemID,
		billingComponent: strings.TrimSpace(billingComponent),
		scope:            scope,
		notes:            notes,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		actor.Validate(),
		lineItemID.Validate(),
		scope.Validate(),
		cmd.setTaxonomyCode(taxonomyCode),
		cmd.setSourceExceptionID(sourceExceptionID),
	); err != nil {
		return OverrideMappingCommand{}, err
	}

	return cmd, nil
}

func (c OverrideMappingCommand) Validate() error {
	return c.guard.Validate(ErrOverrideMappingCommandIsNotConstructed)
}

func (c OverrideMappingCommand) Actor() kernel.Actor             { return c.actor }
func (c OverrideMappingCommand) LineItemID() kernel.UUID         { return c.lineItemID }
func (c OverrideMappingCommand) TaxonomyCode() string            { return c.taxonomyCode }
func (c OverrideMappingCommand) BillingComponent() string        { return c.billingComponent }
func (c OverrideMappingCommand) Scope() mapping.Scope            { return c.scope }
func (c OverrideMappingCommand) SourceExceptionID() *kernel.UUID { return c.sourceExceptionID }
func (c OverrideMappingCommand) Notes() string                   { return c.notes }

func (c *OverrideMappingCommand) setTaxonomyCode(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return errs.NewValueIsRequiredError("taxonomyCode")
	}

	c.taxonomyCode = code
	return nil
}

func (c *OverrideMappingCommand) setSourceExceptionID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return err
	}

	copied := *id
	c.sourceExceptionID = &copied
	return nil
}
