package services

import (
	"context"
	"fmt"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

// PassReport counts what one validation pass did.
type PassReport struct {
	LinesValidated   int
	RuleMatches      int
	EngineClassified int
	Raised           map[validation.Type]int
}

// ExceptionsRaised is the total number of new exceptions.
func (r PassReport) ExceptionsRaised() int {
	var n int
	for _, c := range r.Raised {
		n += c
	}
	return n
}

// ValidationPass classifies and validates every current line of an invoice.
//
// Unclassified lines are first matched against the rule book; a matching rule
// classifies the line with HIGH confidence and the engine's Classify is not
// called. Otherwise the engine classifies the line. Every line is then validated
// and each finding goes to the exception ledger, which absorbs duplicates, so a
// pass can be repeated safely after a failure or a supplier response.
type ValidationPass struct {
	engine ports.ValidationEngine
}

func NewValidationPass(engine ports.ValidationEngine) ValidationPass {
	return ValidationPass{engine: engine}
}

// Run applies the pass to inv. It does not settle the invoice status; callers
// do that with Invoice.SettleValidation once the pass succeeds.
func (p ValidationPass) Run(
	ctx context.Context,
	inv *invoice.Invoice,
	rules *mapping.RuleBook,
	rates validation.RateCard,
	guidelines validation.GuidelineSet,
	now time.Time,
) (PassReport, error) {
	report := PassReport{Raised: make(map[validation.Type]int)}
	if err := inv.Validate(); err != nil {
		return report, err
	}

	for _, line := range inv.CurrentLines() {
		if !line.IsClassified() {
			suggestion, fromRule, err := p.classify(ctx, inv, line, rules)
			if err != nil {
				return report, err
			}
			if fromRule {
				report.RuleMatches++
			} else {
				report.EngineClassified++
			}
			if err := inv.ClassifyLine(line.ID(), suggestion, now); err != nil {
				return report, err
			}
		}

		results, err := p.engine.Validate(ctx, line.ValidationInput(), rates, guidelines)
		if err != nil {
			return report, fmt.Errorf("validate line %d: %w", line.LineNumber(), err)
		}
		for _, result := range results {
			if result.ExpectedAmount.Valid {
				if err := inv.SetExpectedAmount(line.ID(), result.ExpectedAmount.Decimal); err != nil {
					return report, err
				}
			}
			created, err := inv.RaiseException(line.ID(), result, now)
			if err != nil {
				return report, err
			}
			if created {
				report.Raised[result.Type]++
			}
		}

		if err := inv.MarkLineValidated(line.ID()); err != nil {
			return report, err
		}
		report.LinesValidated++
	}

	return report, nil
}

func (p ValidationPass) classify(
	ctx context.Context,
	inv *invoice.Invoice,
	line *invoice.LineItem,
	rules *mapping.RuleBook,
) (validation.MappingSuggestion, bool, error) {
	if sig, err := mapping.NewSignature(line.RawDescription()); err == nil {
		if rule, ok := rules.Match(inv.SupplierID(), sig); ok {
			ruleID := rule.ID()
			return validation.MappingSuggestion{
				TaxonomyCode:     rule.TaxonomyCode(),
				BillingComponent: rule.BillingComponent(),
				Confidence:       validation.ConfidenceHigh,
				RuleID:           &ruleID,
			}, true, nil
		}
	}

	suggestion, err := p.engine.Classify(ctx, line.ValidationInput())
	if err != nil {
		return validation.MappingSuggestion{}, false, fmt.Errorf("classify line %d: %w", line.LineNumber(), err)
	}
	return suggestion, false, nil
}
