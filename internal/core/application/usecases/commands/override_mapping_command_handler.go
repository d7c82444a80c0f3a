package commands

import (
	"context"
	"errors"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/services"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// OverrideMappingResult is the invoice snapshot plus what happened to the stored rule.
// RuleID is nil for LINE overrides.
type OverrideMappingResult struct {
	Snapshot invoice.Snapshot
	Outcome  services.RuleOutcome
	RuleID   *kernel.UUID
}

// OverrideMappingCommandHandler applies a reviewer's reclassification.
//
// The taxonomy code is checked against the catalog before the lock is taken.
// Rule writes share the invoice transaction, so a failed override leaves neither
// the line nor the rule changed.
type OverrideMappingCommandHandler struct {
	deps     Dependencies
	catalog  ports.TaxonomyCatalog
	resolver services.MappingOverrideResolver
}

func NewOverrideMappingCommandHandler(deps Dependencies, catalog ports.TaxonomyCatalog) OverrideMappingCommandHandler {
	return OverrideMappingCommandHandler{
		deps:     deps,
		catalog:  catalog,
		resolver: services.NewMappingOverrideResolver(),
	}
}

func (h OverrideMappingCommandHandler) Handle(
	ctx context.Context,
	command OverrideMappingCommand,
) (result OverrideMappingResult, err error) {
	defer h.deps.observe("override_mapping", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return OverrideMappingResult{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionOverrideMapping); err != nil {
		return OverrideMappingResult{}, err
	}

	entry, err := h.catalog.Lookup(ctx, command.TaxonomyCode())
	if err != nil {
		return OverrideMappingResult{}, err
	}
	component := command.BillingComponent()
	if component == "" {
		component = entry.BillingComponent
	}

	invoiceID, err := h.deps.invoiceIDByLineItem(ctx, command.LineItemID())
	if err != nil {
		return OverrideMappingResult{}, err
	}

	snapshot, err := h.deps.mutateInvoice(ctx, invoiceID,
		func(ctx context.Context, uow UoW, inv *invoice.Invoice, now time.Time) error {
			existing, findErr := h.findExisting(ctx, uow, inv, command)
			if findErr != nil {
				return findErr
			}

			res, overrideErr := h.resolver.Override(inv, existing, services.OverrideRequest{
				LineItemID:        command.LineItemID(),
				TaxonomyCode:      entry.Code,
				BillingComponent:  component,
				Scope:             command.Scope(),
				SourceExceptionID: command.SourceExceptionID(),
				Notes:             command.Notes(),
			}, command.Actor(), now)
			if overrideErr != nil {
				return overrideErr
			}

			if saveErr := saveRules(ctx, uow.MappingRuleRepository(), res); saveErr != nil {
				return saveErr
			}

			result.Outcome = res.Outcome
			if res.Rule != nil {
				ruleID := res.Rule.ID()
				result.RuleID = &ruleID
			}
			return nil
		})
	if err != nil {
		return OverrideMappingResult{}, err
	}

	result.Snapshot = snapshot
	return result, nil
}

func (h OverrideMappingCommandHandler) findExisting(
	ctx context.Context,
	uow UoW,
	inv *invoice.Invoice,
	command OverrideMappingCommand,
) (*mapping.Rule, error) {
	if !command.Scope().Persisted() {
		return nil, nil
	}

	key, err := h.resolver.KeyFor(inv, command.LineItemID(), command.Scope())
	if err != nil {
		return nil, err
	}

	rule, err := uow.MappingRuleRepository().FindActive(ctx, key)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	return rule, err
}

func saveRules(ctx context.Context, repo ports.MappingRuleRepository, res services.OverrideResult) error {
	switch res.Outcome {
	case services.RuleCreated:
		return repo.Add(ctx, res.Rule)
	case services.RuleUpdated:
		if err := repo.Update(ctx, res.Retired); err != nil {
			return err
		}
		return repo.Add(ctx, res.Rule)
	default:
		return nil
	}
}
