package engine

import (
	"fmt"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"

	"github.com/shopspring/decimal"
)

func unclassified() validation.Result {
	return validation.Result{
		Type:           validation.TypeClassification,
		Status:         validation.StatusFail,
		Severity:       validation.SeverityError,
		RequiredAction: validation.RequiredActionRequestReclassification,
		Message: "Line item could not be classified to a taxonomy code. " +
			"Clarify the service description or request reclassification.",
	}
}

func noContractedRate(line validation.LineInput) validation.Result {
	return validation.Result{
		Type:           validation.TypeRate,
		Status:         validation.StatusWarning,
		Severity:       validation.SeverityWarning,
		RequiredAction: validation.RequiredActionNone,
		Message:        fmt.Sprintf("No contracted rate found for service %s.", line.TaxonomyCode),
	}
}

// checkAmount compares the billed amount with quantity × contracted rate, rounded to cents.
func checkAmount(line validation.LineInput, rate validation.Rate) validation.Result {
	expected := line.Quantity.Mul(rate.Amount).Round(2)
	diff := line.RawAmount.Sub(expected)
	unit := unitOr(line.Unit, rate.Unit)

	result := validation.Result{
		Type:           validation.TypeRate,
		ExpectedAmount: decimal.NewNullDecimal(expected),
	}
	switch {
	case diff.Abs().LessThanOrEqual(AmountTolerance):
		result.Status = validation.StatusPass
		result.Severity = validation.SeverityInfo
		result.RequiredAction = validation.RequiredActionNone
		result.Message = fmt.Sprintf("Billed $%s matches contracted rate $%s × %s %s = $%s.",
			money(line.RawAmount), money(rate.Amount), line.Quantity, unit, money(expected))
	case diff.IsPositive():
		result.Status = validation.StatusFail
		result.Severity = validation.SeverityError
		result.RequiredAction = validation.RequiredActionAcceptReduction
		result.Message = fmt.Sprintf("Billed $%s exceeds contracted rate $%s × %s %s = $%s by $%s. "+
			"Payment will be limited to $%s.",
			money(line.RawAmount), money(rate.Amount), line.Quantity, unit, money(expected), money(diff), money(expected))
	default:
		result.Status = validation.StatusWarning
		result.Severity = validation.SeverityWarning
		result.RequiredAction = validation.RequiredActionNone
		result.Message = fmt.Sprintf("Billed $%s is below contracted rate $%s × %s %s = $%s. Amount will be paid as billed.",
			money(line.RawAmount), money(rate.Amount), line.Quantity, unit, money(expected))
	}
	return result
}

func checkGuideline(line validation.LineInput, g validation.Guideline) []validation.Result {
	var results []validation.Result
	if g.MaxUnits.Valid && line.Quantity.GreaterThan(g.MaxUnits.Decimal) {
		results = append(results, validation.Result{
			Type:           validation.TypeGuideline,
			Status:         validation.StatusFail,
			Severity:       validation.SeverityError,
			RequiredAction: validation.RequiredActionAttachDoc,
			Message: fmt.Sprintf("Quantity %s exceeds the contract maximum of %s for %s. "+
				"Attach documentation supporting the additional units.",
				line.Quantity, g.MaxUnits.Decimal, line.TaxonomyCode),
		})
	}
	if g.RequiresDocumentation {
		results = append(results, validation.Result{
			Type:           validation.TypeGuideline,
			Status:         validation.StatusWarning,
			Severity:       validation.SeverityWarning,
			RequiredAction: validation.RequiredActionAttachDoc,
			Message:        fmt.Sprintf("%s requires supporting documentation.", line.TaxonomyCode),
		})
	}
	return results
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func unitOr(unit, fallback string) string {
	switch {
	case unit != "":
		return unit
	case fallback != "":
		return fallback
	default:
		return "units"
	}
}
