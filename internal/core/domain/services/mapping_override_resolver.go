package services

import (
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// RuleOutcome says what happened to the stored rule during an override.
type RuleOutcome int

const (
	// RuleNotStored is the outcome of a LINE override.
	RuleNotStored RuleOutcome = iota
	RuleCreated
	RuleUpdated
	// RuleUnchanged means an identical rule already existed and the upsert was absorbed.
	RuleUnchanged
)

func (o RuleOutcome) String() string {
	switch o {
	case RuleCreated:
		return "created"
	case RuleUpdated:
		return "updated"
	case RuleUnchanged:
		return "unchanged"
	default:
		return "not_stored"
	}
}

// OverrideRequest is a reviewer's reclassification of one line.
type OverrideRequest struct {
	LineItemID        kernel.UUID
	TaxonomyCode      string
	BillingComponent  string
	Scope             mapping.Scope
	SourceExceptionID *kernel.UUID
	Notes             string
}

// OverrideResult carries the rules the caller must persist.
// Rule is the active rule after the override; Retired is set when Rule superseded it.
type OverrideResult struct {
	Outcome RuleOutcome
	Rule    *mapping.Rule
	Retired *mapping.Rule
}

// MappingOverrideResolver applies reclassifications and keeps override rules in step.
type MappingOverrideResolver struct{}

func NewMappingOverrideResolver() MappingOverrideResolver {
	return MappingOverrideResolver{}
}

// KeyFor returns the rule key an override of lineID in scope would upsert.
func (MappingOverrideResolver) KeyFor(inv *invoice.Invoice, lineID kernel.UUID, scope mapping.Scope) (mapping.Key, error) {
	line, err := inv.Line(lineID)
	if err != nil {
		return mapping.Key{}, err
	}
	sig, err := mapping.NewSignature(line.RawDescription())
	if err != nil {
		return mapping.Key{}, err
	}
	return mapping.NewKey(scope, inv.SupplierID(), sig)
}

// Override rewrites the line, resolves the source exception as RECLASSIFIED when it
// is still open, and for SUPPLIER and GLOBAL scope upserts the rule. existing is
// the active rule under the same key, or nil.
func (r MappingOverrideResolver) Override(
	inv *invoice.Invoice,
	existing *mapping.Rule,
	req OverrideRequest,
	actor kernel.Actor,
	now time.Time,
) (OverrideResult, error) {
	if err := req.Scope.Validate(); err != nil {
		return OverrideResult{}, err
	}
	if req.SourceExceptionID != nil {
		exc, _, err := inv.Exception(*req.SourceExceptionID)
		if err != nil {
			return OverrideResult{}, err
		}
		if !exc.LineItemID().IsEqual(req.LineItemID) {
			return OverrideResult{}, errs.NewValueIsInvalidError("source exception belongs to another line")
		}
	}

	if err := inv.OverrideLineMapping(req.LineItemID, req.TaxonomyCode, req.BillingComponent, req.Notes, actor, now); err != nil {
		return OverrideResult{}, err
	}
	if req.SourceExceptionID != nil {
		exc, _, _ := inv.Exception(*req.SourceExceptionID)
		if !exc.IsTerminal() {
			if err := inv.ResolveException(exc.ID(), invoice.ResolutionReclassified, req.Notes, actor, now); err != nil {
				return OverrideResult{}, err
			}
		}
	}

	if !req.Scope.Persisted() {
		return OverrideResult{Outcome: RuleNotStored}, nil
	}

	key, err := r.KeyFor(inv, req.LineItemID, req.Scope)
	if err != nil {
		return OverrideResult{}, err
	}
	params := mapping.RuleParams{
		Key:               key,
		TaxonomyCode:      req.TaxonomyCode,
		BillingComponent:  req.BillingComponent,
		SourceExceptionID: req.SourceExceptionID,
		Notes:             req.Notes,
	}

	switch {
	case existing == nil:
		rule, err := mapping.NewRule(kernel.NewUUID(), params, actor, now)
		if err != nil {
			return OverrideResult{}, err
		}
		inv.RecordRuleChange(rule.ID(), audit.EventMappingRuleCreated, rulePayload(rule), actor, now)
		return OverrideResult{Outcome: RuleCreated, Rule: rule}, nil

	case existing.Key() != key:
		return OverrideResult{}, errs.NewValueIsInvalidError("existing rule has a different key")

	case existing.Maps(req.TaxonomyCode, req.BillingComponent):
		return OverrideResult{Outcome: RuleUnchanged, Rule: existing}, nil

	default:
		next, err := existing.Supersede(kernel.NewUUID(), params, actor, now)
		if err != nil {
			return OverrideResult{}, err
		}
		payload := rulePayload(next)
		payload["previous_taxonomy_code"] = existing.TaxonomyCode()
		inv.RecordRuleChange(next.ID(), audit.EventMappingRuleUpdated, payload, actor, now)
		return OverrideResult{Outcome: RuleUpdated, Rule: next, Retired: existing}, nil
	}
}

func rulePayload(rule *mapping.Rule) map[string]any {
	payload := map[string]any{
		"scope":             rule.Scope().String(),
		"signature":         rule.Signature().String(),
		"taxonomy_code":     rule.TaxonomyCode(),
		"billing_component": rule.BillingComponent(),
		"version":           rule.Version(),
	}
	if supplierID, ok := rule.SupplierID(); ok {
		payload["supplier_id"] = supplierID.String()
	}
	if prev := rule.SupersedesRuleID(); prev != nil {
		payload["supersedes_rule_id"] = prev.String()
	}
	return payload
}
