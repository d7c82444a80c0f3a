package validation

import (
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ContractTerm is one contracted service on a contract: its rate and its billing guideline.
type ContractTerm struct {
	TaxonomyCode          string
	Rate                  decimal.Decimal
	Unit                  string
	MaxUnits              decimal.NullDecimal
	RequiresDocumentation bool
}

func (t ContractTerm) Validate() error {
	var errList []error
	if t.TaxonomyCode == "" {
		errList = append(errList, errs.NewValueIsRequiredError("taxonomyCode"))
	}
	if t.Rate.IsNegative() {
		errList = append(errList, errs.NewValueIsOutOfRangeError("rate", t.Rate, 0, "unbounded"))
	}
	if t.MaxUnits.Valid && !t.MaxUnits.Decimal.IsPositive() {
		errList = append(errList, errs.NewValueIsOutOfRangeError("maxUnits", t.MaxUnits.Decimal, "0 (exclusive)", "unbounded"))
	}
	return errors.Join(errList...)
}

// Rate is the contracted price of one unit of a service.
type Rate struct {
	Amount decimal.Decimal
	Unit   string
}

// RateCard is the contract's price list keyed by taxonomy code.
type RateCard struct {
	ContractID kernel.UUID
	rates      map[string]Rate
}

// Guideline limits how a service may be billed.
type Guideline struct {
	MaxUnits              decimal.NullDecimal
	RequiresDocumentation bool
}

// GuidelineSet is the contract's billing guidelines keyed by taxonomy code.
type GuidelineSet struct {
	ContractID kernel.UUID
	guidelines map[string]Guideline
}

// NewContractTerms splits a contract's terms into its rate card and guideline set.
func NewContractTerms(contractID kernel.UUID, terms []ContractTerm) (RateCard, GuidelineSet, error) {
	if err := contractID.Validate(); err != nil {
		return RateCard{}, GuidelineSet{}, err
	}

	card := RateCard{ContractID: contractID, rates: make(map[string]Rate, len(terms))}
	set := GuidelineSet{ContractID: contractID, guidelines: make(map[string]Guideline, len(terms))}
	for _, term := range terms {
		if err := term.Validate(); err != nil {
			return RateCard{}, GuidelineSet{}, err
		}
		card.rates[term.TaxonomyCode] = Rate{Amount: term.Rate, Unit: term.Unit}
		if term.MaxUnits.Valid || term.RequiresDocumentation {
			set.guidelines[term.TaxonomyCode] = Guideline{
				MaxUnits:              term.MaxUnits,
				RequiresDocumentation: term.RequiresDocumentation,
			}
		}
	}

	return card, set, nil
}

// Rate returns the contracted rate for code.
func (c RateCard) Rate(code string) (Rate, bool) {
	r, ok := c.rates[code]
	return r, ok
}

// Len is the number of contracted services.
func (c RateCard) Len() int {
	return len(c.rates)
}

// Guideline returns the billing guideline for code.
func (g GuidelineSet) Guideline(code string) (Guideline, bool) {
	gl, ok := g.guidelines[code]
	return gl, ok
}
