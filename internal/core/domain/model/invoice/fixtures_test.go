package invoice_test

import (
	"testing"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

func supplierFor(t *testing.T, supplierID kernel.UUID) kernel.Actor {
	t.Helper()
	a, err := kernel.NewSupplierActor("supplier-user", supplierID)
	require.NoError(t, err)
	return a
}

func carrier(t *testing.T) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.RoleCarrier, "adjuster-1")
	require.NoError(t, err)
	return a
}

func parsedLine(n int, description, qty, amount string) invoice.ParsedLine {
	return invoice.ParsedLine{
		LineNumber:     n,
		RawDescription: description,
		Unit:           "EA",
		Quantity:       decimal.RequireFromString(qty),
		RawAmount:      decimal.RequireFromString(amount),
	}
}

func threeLines() []invoice.ParsedLine {
	return []invoice.ParsedLine{
		parsedLine(1, "IME physician exam", "1", "450.00"),
		parsedLine(2, "Mileage", "120", "78.00"),
		parsedLine(3, "Records review", "1", "200.00"),
	}
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

func guidelineWarning() validation.Result {
	return validation.Result{
		Type:           validation.TypeGuideline,
		Status:         validation.StatusWarning,
		Severity:       validation.SeverityWarning,
		RequiredAction: validation.RequiredActionAttachDoc,
		Message:        "documentation required",
	}
}

func newDraft(t *testing.T) (*invoice.Invoice, kernel.Actor) {
	t.Helper()
	supplierID := kernel.NewUUID()
	supplier := supplierFor(t, supplierID)
	inv, err := invoice.NewInvoice(kernel.NewUUID(), supplierID, kernel.NewUUID(), "INV-1001", t0, supplier, t0)
	require.NoError(t, err)
	return inv, supplier
}

func newSubmitted(t *testing.T, lines []invoice.ParsedLine) (*invoice.Invoice, kernel.Actor) {
	t.Helper()
	inv, supplier := newDraft(t)
	require.NoError(t, inv.Submit(supplier, lines, t0))
	return inv, supplier
}

// runValidation classifies every current line, raises findings keyed by line
// number and settles the invoice.
func runValidation(t *testing.T, inv *invoice.Invoice, findings map[int][]validation.Result) {
	t.Helper()
	system := kernel.SystemActor()

	_, err := inv.BeginValidation(system, t0)
	require.NoError(t, err)
	for _, l := range inv.CurrentLines() {
		require.NoError(t, inv.ClassifyLine(l.ID(), validation.MappingSuggestion{
			TaxonomyCode:     "IME.PHY_EXAM.PROF_FEE",
			BillingComponent: "PROF_FEE",
			Confidence:       validation.ConfidenceHigh,
		}, t0))
		for _, r := range findings[l.LineNumber()] {
			if r.ExpectedAmount.Valid {
				require.NoError(t, inv.SetExpectedAmount(l.ID(), r.ExpectedAmount.Decimal))
			}
			_, err := inv.RaiseException(l.ID(), r, t0)
			require.NoError(t, err)
		}
		require.NoError(t, inv.MarkLineValidated(l.ID()))
	}
	require.NoError(t, inv.SettleValidation(system, t0))
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

func onlyException(t *testing.T, line *invoice.LineItem) *invoice.Exception {
	t.Helper()
	excs := line.Exceptions()
	require.Len(t, excs, 1)
	return excs[0]
}
