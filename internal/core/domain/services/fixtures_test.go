package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

type MockValidationEngine struct {
	mock.Mock
}

func (m *MockValidationEngine) Classify(ctx context.Context, line validation.LineInput) (validation.MappingSuggestion, error) {
	args := m.Called(ctx, line)
	return args.Get(0).(validation.MappingSuggestion), args.Error(1)
}

func (m *MockValidationEngine) Validate(
	ctx context.Context,
	line validation.LineInput,
	rates validation.RateCard,
	guidelines validation.GuidelineSet,
) ([]validation.Result, error) {
	args := m.Called(ctx, line, rates, guidelines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]validation.Result), args.Error(1)
}

func admin(t *testing.T) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.RoleAdmin, "admin-1")
	require.NoError(t, err)
	return a
}

func line(n int, description, amount string) invoice.ParsedLine {
	return invoice.ParsedLine{
		LineNumber:     n,
		RawDescription: description,
		Quantity:       decimal.NewFromInt(1),
		RawAmount:      decimal.RequireFromString(amount),
	}
}

// processing returns an invoice in PROCESSING with the given lines.
func processing(t *testing.T, supplierID kernel.UUID, lines ...invoice.ParsedLine) *invoice.Invoice {
	t.Helper()
	supplier, err := kernel.NewSupplierActor("supplier-user", supplierID)
	require.NoError(t, err)
	inv, err := invoice.NewInvoice(kernel.NewUUID(), supplierID, kernel.NewUUID(), "INV-42", t0, supplier, t0)
	require.NoError(t, err)
	require.NoError(t, inv.Submit(supplier, lines, t0))
	_, err = inv.BeginValidation(kernel.SystemActor(), t0)
	require.NoError(t, err)
	return inv
}

func lineByNumber(t *testing.T, inv *invoice.Invoice, n int) *invoice.LineItem {
	t.Helper()
	for _, l := range inv.CurrentLines() {
		if l.LineNumber() == n {
			return l
		}
	}
	require.FailNowf(t, "line not found", "no current line %d", n)
	return nil
}

func recognized(code, component string) validation.MappingSuggestion {
	return validation.MappingSuggestion{TaxonomyCode: code, BillingComponent: component, Confidence: validation.ConfidenceMedium}
}

func rateFail(expected string) validation.Result {
	return validation.Result{
		Type:           validation.TypeRate,
		Status:         validation.StatusFail,
		Severity:       validation.SeverityError,
		RequiredAction: validation.RequiredActionAcceptReduction,
		Message:        "billed above contracted rate",
		ExpectedAmount: decimal.NewNullDecimal(decimal.RequireFromString(expected)),
	}
}

func ratePass(expected string) validation.Result {
	return validation.Result{
		Type:           validation.TypeRate,
		Status:         validation.StatusPass,
		Severity:       validation.SeverityInfo,
		RequiredAction: validation.RequiredActionNone,
		ExpectedAmount: decimal.NewNullDecimal(decimal.RequireFromString(expected)),
	}
}
