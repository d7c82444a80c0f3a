package validation

import (
	"fmt"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// Confidence grades how sure a classification is.
type Confidence string

const (
	ConfidenceHigh         Confidence = "HIGH"
	ConfidenceMedium       Confidence = "MEDIUM"
	ConfidenceLow          Confidence = "LOW"
	ConfidenceUnrecognized Confidence = "UNRECOGNIZED"
)

func (c Confidence) Validate() error {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceUnrecognized:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("confidence", fmt.Errorf("%q is not a known confidence", string(c)))
	}
}

// MappingSuggestion assigns a taxonomy code to a line.
// RuleID is set when a persisted override rule produced the suggestion instead of the engine.
type MappingSuggestion struct {
	TaxonomyCode     string
	BillingComponent string
	Confidence       Confidence
	RuleID           *kernel.UUID
}

// Recognized reports whether the suggestion carries a usable code.
func (s MappingSuggestion) Recognized() bool {
	return s.TaxonomyCode != "" && s.Confidence != ConfidenceUnrecognized
}
