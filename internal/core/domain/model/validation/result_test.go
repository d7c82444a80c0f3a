package validation_test

import (
	"testing"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_RaisesException(t *testing.T) {
	tests := []struct {
		name   string
		status validation.Status
		action validation.RequiredAction
		want   bool
	}{
		{"pass never raises", validation.StatusPass, validation.RequiredActionAttachDoc, false},
		{"failure raises", validation.StatusFail, validation.RequiredActionAcceptReduction, true},
		{"failure without action still raises", validation.StatusFail, validation.RequiredActionNone, true},
		{"warning with action raises", validation.StatusWarning, validation.RequiredActionAttachDoc, true},
		{"warning without action does not", validation.StatusWarning, validation.RequiredActionNone, false},
		{"warning with empty action does not", validation.StatusWarning, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validation.Result{Type: validation.TypeRate, Status: tt.status, RequiredAction: tt.action}
			assert.Equal(t, tt.want, r.RaisesException())
		})
	}
}

func TestResult_Validate(t *testing.T) {
	ok := validation.Result{
		Type:     validation.TypeGuideline,
		Status:   validation.StatusWarning,
		Severity: validation.SeverityWarning,
	}
	require.NoError(t, ok.Validate())

	bad := validation.Result{Type: "PRICE", Status: "MAYBE", Severity: "LOUD", RequiredAction: "PANIC"}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.ErrorContains(t, err, "validation type")
	assert.ErrorContains(t, err, "required action")
}

func TestNewContractTerms(t *testing.T) {
	contractID := kernel.NewUUID()
	terms := []validation.ContractTerm{
		{TaxonomyCode: "IME.PHY_EXAM.PROF_FEE", Rate: decimal.RequireFromString("450.00"), Unit: "EA"},
		{
			TaxonomyCode: "IME.PHY_EXAM.MILEAGE", Rate: decimal.RequireFromString("0.60"), Unit: "MI",
			MaxUnits: decimal.NewNullDecimal(decimal.NewFromInt(100)),
		},
		{TaxonomyCode: "REC.MED_RECORDS.RUSH_PREMIUM", Rate: decimal.RequireFromString("25"), RequiresDocumentation: true},
	}

	card, guides, err := validation.NewContractTerms(contractID, terms)

	require.NoError(t, err)
	assert.Equal(t, 3, card.Len())
	rate, ok := card.Rate("IME.PHY_EXAM.MILEAGE")
	require.True(t, ok)
	assert.True(t, rate.Amount.Equal(decimal.RequireFromString("0.6")))
	assert.Equal(t, "MI", rate.Unit)

	g, ok := guides.Guideline("IME.PHY_EXAM.MILEAGE")
	require.True(t, ok)
	assert.True(t, g.MaxUnits.Decimal.Equal(decimal.NewFromInt(100)))
	_, ok = guides.Guideline("IME.PHY_EXAM.PROF_FEE")
	assert.False(t, ok)
	g, ok = guides.Guideline("REC.MED_RECORDS.RUSH_PREMIUM")
	require.True(t, ok)
	assert.True(t, g.RequiresDocumentation)

	t.Run("should reject negative rates", func(t *testing.T) {
		_, _, err := validation.NewContractTerms(contractID, []validation.ContractTerm{
			{TaxonomyCode: "X", Rate: decimal.NewFromInt(-1)},
		})
		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}
