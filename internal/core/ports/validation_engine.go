package ports

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
)

// ValidationEngine classifies and validates single lines. It is a pure function
// of its inputs: the same line and terms always give the same answer.
type ValidationEngine interface {
	Classify(ctx context.Context, line validation.LineInput) (validation.MappingSuggestion, error)
	Validate(
		ctx context.Context,
		line validation.LineInput,
		rates validation.RateCard,
		guidelines validation.GuidelineSet,
	) ([]validation.Result, error)
}

// TaxonomyEntry is one service in the billing taxonomy.
type TaxonomyEntry struct {
	Code             string
	Domain           string
	ServiceItem      string
	BillingComponent string
	Label            string
}

// TaxonomyCatalog is the read-only list of billable services.
type TaxonomyCatalog interface {
	// Lookup returns the entry for code or errs.ObjectNotFoundError.
	Lookup(ctx context.Context, code string) (TaxonomyEntry, error)
	// Entries lists every entry ordered by code.
	Entries(ctx context.Context) ([]TaxonomyEntry, error)
}
