package services_test

import (
	"testing"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/services"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inReview returns an invoice in REVIEW_REQUIRED whose line 1 carries an open
// CLASSIFICATION exception.
func inReview(t *testing.T, supplierID kernel.UUID) (*invoice.Invoice, *invoice.Exception) {
	t.Helper()
	inv := processing(t, supplierID, line(1, "Records Review", "200.00"), line(2, "Mileage", "78.00"))
	l := lineByNumber(t, inv, 1)
	require.NoError(t, inv.ClassifyLine(l.ID(), validation.MappingSuggestion{Confidence: validation.ConfidenceUnrecognized}, t0))
	_, err := inv.RaiseException(l.ID(), validation.Result{
		Type:           validation.TypeClassification,
		Status:         validation.StatusFail,
		Severity:       validation.SeverityError,
		RequiredAction: validation.RequiredActionRequestReclassification,
		Message:        "service not recognized",
	}, t0)
	require.NoError(t, err)
	require.NoError(t, inv.SettleValidation(kernel.SystemActor(), t0))
	require.Equal(t, invoice.ReviewRequired, inv.Status())
	return inv, l.Exceptions()[0]
}

func TestMappingOverrideResolver_Override(t *testing.T) {
	resolver := services.NewMappingOverrideResolver()

	t.Run("line scope rewrites the line and stores nothing", func(t *testing.T) {
		inv, _ := inReview(t, kernel.NewUUID())
		l := lineByNumber(t, inv, 1)

		res, err := resolver.Override(inv, nil, services.OverrideRequest{
			LineItemID:       l.ID(),
			TaxonomyCode:     "IME.RECORDS_REVIEW.PROF_FEE",
			BillingComponent: "PROF_FEE",
			Scope:            mapping.ScopeLine,
		}, admin(t), t0)

		require.NoError(t, err)
		assert.Equal(t, services.RuleNotStored, res.Outcome)
		assert.Nil(t, res.Rule)
		assert.Equal(t, invoice.LineOverride, l.Status())
		assert.Equal(t, "IME.RECORDS_REVIEW.PROF_FEE", l.TaxonomyCode())
	})

	t.Run("global scope creates a rule and resolves the source exception", func(t *testing.T) {
		inv, exc := inReview(t, kernel.NewUUID())
		l := lineByNumber(t, inv, 1)
		excID := exc.ID()
		inv.ClearPendingEvents()

		res, err := resolver.Override(inv, nil, services.OverrideRequest{
			LineItemID:        l.ID(),
			TaxonomyCode:      "IME.RECORDS_REVIEW.PROF_FEE",
			BillingComponent:  "PROF_FEE",
			Scope:             mapping.ScopeGlobal,
			SourceExceptionID: &excID,
			Notes:             "records only",
		}, admin(t), t0)

		require.NoError(t, err)
		assert.Equal(t, services.RuleCreated, res.Outcome)
		require.NotNil(t, res.Rule)
		assert.Equal(t, mapping.Signature("records review"), res.Rule.Signature())
		assert.True(t, res.Rule.Key().SupplierID.IsZero())
		assert.Equal(t, invoice.ExceptionResolved, exc.Status())
		assert.Equal(t, invoice.ResolutionReclassified, exc.ResolutionAction())

		var types []audit.EventType
		for _, e := range inv.PendingEvents() {
			types = append(types, e.EventType)
		}
		assert.Equal(t, []audit.EventType{
			audit.EventMappingOverridden,
			audit.EventExceptionResolved,
			audit.EventMappingRuleCreated,
		}, types)
	})

	t.Run("an identical upsert is absorbed", func(t *testing.T) {
		supplierID := kernel.NewUUID()
		inv, _ := inReview(t, supplierID)
		l := lineByNumber(t, inv, 1)
		key, err := resolver.KeyFor(inv, l.ID(), mapping.ScopeSupplier)
		require.NoError(t, err)
		existing, err := mapping.NewRule(kernel.NewUUID(), mapping.RuleParams{
			Key: key, TaxonomyCode: "IME.RECORDS_REVIEW.PROF_FEE", BillingComponent: "PROF_FEE",
		}, admin(t), t0.Add(-time.Hour))
		require.NoError(t, err)

		res, err := resolver.Override(inv, existing, services.OverrideRequest{
			LineItemID:       l.ID(),
			TaxonomyCode:     "IME.RECORDS_REVIEW.PROF_FEE",
			BillingComponent: "PROF_FEE",
			Scope:            mapping.ScopeSupplier,
		}, admin(t), t0)

		require.NoError(t, err)
		assert.Equal(t, services.RuleUnchanged, res.Outcome)
		assert.Same(t, existing, res.Rule)
		assert.True(t, existing.IsActive())
		assert.Equal(t, 1, existing.Version())
	})

	t.Run("a different mapping supersedes the existing rule", func(t *testing.T) {
		inv, _ := inReview(t, kernel.NewUUID())
		l := lineByNumber(t, inv, 1)
		key, err := resolver.KeyFor(inv, l.ID(), mapping.ScopeGlobal)
		require.NoError(t, err)
		existing, err := mapping.NewRule(kernel.NewUUID(), mapping.RuleParams{
			Key: key, TaxonomyCode: "ENG.FILE_REVIEW.PROF_FEE", BillingComponent: "PROF_FEE",
		}, admin(t), t0.Add(-time.Hour))
		require.NoError(t, err)

		res, err := resolver.Override(inv, existing, services.OverrideRequest{
			LineItemID:       l.ID(),
			TaxonomyCode:     "IME.RECORDS_REVIEW.PROF_FEE",
			BillingComponent: "PROF_FEE",
			Scope:            mapping.ScopeGlobal,
		}, admin(t), t0)

		require.NoError(t, err)
		assert.Equal(t, services.RuleUpdated, res.Outcome)
		assert.Same(t, existing, res.Retired)
		assert.False(t, existing.IsActive())
		assert.Equal(t, 2, res.Rule.Version())
		assert.True(t, res.Rule.SupersedesRuleID().IsEqual(existing.ID()))
	})

	t.Run("the source exception must belong to the line", func(t *testing.T) {
		inv, exc := inReview(t, kernel.NewUUID())
		other := lineByNumber(t, inv, 2)
		excID := exc.ID()

		_, err := resolver.Override(inv, nil, services.OverrideRequest{
			LineItemID:        other.ID(),
			TaxonomyCode:      "IME.PHY_EXAM.MILEAGE",
			BillingComponent:  "MILEAGE",
			Scope:             mapping.ScopeLine,
			SourceExceptionID: &excID,
		}, admin(t), t0)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.False(t, other.IsOverridden())
	})

	t.Run("overrides are refused while processing", func(t *testing.T) {
		inv := processing(t, kernel.NewUUID(), line(1, "Mileage", "78.00"))

		_, err := resolver.Override(inv, nil, services.OverrideRequest{
			LineItemID:       lineByNumber(t, inv, 1).ID(),
			TaxonomyCode:     "IME.PHY_EXAM.MILEAGE",
			BillingComponent: "MILEAGE",
			Scope:            mapping.ScopeGlobal,
		}, admin(t), t0)

		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}
