// Package engine is the reference validation engine: a deterministic classifier
// over the taxonomy catalog and the rate and guideline checks run against a
// contract's terms.
package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AmountTolerance absorbs rounding in quantity × rate, e.g. on mileage.
var AmountTolerance = decimal.RequireFromString("0.02")

const (
	highWeight   = 0.85
	mediumWeight = 0.65
)

// RuleEngine implements ports.ValidationEngine.
type RuleEngine struct {
	catalog ports.TaxonomyCatalog
	rules   []builtinRule
	log     *zap.Logger
}

func NewRuleEngine(catalog ports.TaxonomyCatalog, log *zap.Logger) (*RuleEngine, error) {
	if catalog == nil {
		return nil, errs.NewValueIsRequiredError("catalog")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RuleEngine{
		catalog: catalog,
		rules:   builtinRules,
		log:     log.Named("engine"),
	}, nil
}

// Classify resolves the line's taxonomy code. A billed code that names a
// catalog entry wins with HIGH confidence. Otherwise the best built-in rule
// matching the description decides, graded by its weight. A line nothing
// matches is UNRECOGNIZED.
func (e *RuleEngine) Classify(ctx context.Context, line validation.LineInput) (validation.MappingSuggestion, error) {
	if code := strings.ToUpper(strings.TrimSpace(line.RawCode)); code != "" {
		entry, err := e.catalog.Lookup(ctx, code)
		switch {
		case err == nil:
			return validation.MappingSuggestion{
				TaxonomyCode:     entry.Code,
				BillingComponent: entry.BillingComponent,
				Confidence:       validation.ConfidenceHigh,
			}, nil
		case !errors.Is(err, errs.ErrObjectNotFound):
			return validation.MappingSuggestion{}, err
		}
	}

	description := strings.ToLower(strings.TrimSpace(line.RawDescription))
	var best *builtinRule
	for i := range e.rules {
		r := &e.rules[i]
		if r.matches(description) && (best == nil || r.weight > best.weight) {
			best = r
		}
	}
	if best == nil {
		e.log.Debug("line not recognized",
			zap.Int("line", line.LineNumber),
			zap.String("description", line.RawDescription))
		return validation.MappingSuggestion{Confidence: validation.ConfidenceUnrecognized}, nil
	}

	return validation.MappingSuggestion{
		TaxonomyCode:     best.code,
		BillingComponent: best.component,
		Confidence:       confidenceOf(best.weight),
	}, nil
}

// Validate runs the classification, rate and guideline checks for one line.
func (e *RuleEngine) Validate(
	_ context.Context,
	line validation.LineInput,
	rates validation.RateCard,
	guidelines validation.GuidelineSet,
) ([]validation.Result, error) {
	if line.TaxonomyCode == "" {
		return []validation.Result{unclassified()}, nil
	}

	var results []validation.Result
	if rate, ok := rates.Rate(line.TaxonomyCode); ok {
		results = append(results, checkAmount(line, rate))
	} else {
		results = append(results, noContractedRate(line))
	}

	if g, ok := guidelines.Guideline(line.TaxonomyCode); ok {
		results = append(results, checkGuideline(line, g)...)
	}
	return results, nil
}

func confidenceOf(weight float64) validation.Confidence {
	switch {
	case weight >= highWeight:
		return validation.ConfidenceHigh
	case weight >= mediumWeight:
		return validation.ConfidenceMedium
	default:
		return validation.ConfidenceLow
	}
}
