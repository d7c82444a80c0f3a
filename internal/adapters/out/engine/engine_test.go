package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/engine"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/taxonomy"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *engine.RuleEngine {
	t.Helper()
	e, err := engine.NewRuleEngine(taxonomy.NewSeededCatalog(), nil)
	require.NoError(t, err)
	return e
}

func terms(t *testing.T, list ...validation.ContractTerm) (validation.RateCard, validation.GuidelineSet) {
	t.Helper()
	rates, guidelines, err := validation.NewContractTerms(kernel.NewUUID(), list)
	require.NoError(t, err)
	return rates, guidelines
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewRuleEngine_RequiresCatalog(t *testing.T) {
	_, err := engine.NewRuleEngine(nil, nil)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestClassify(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		line       validation.LineInput
		code       string
		component  string
		confidence validation.Confidence
		recognized bool
	}{
		{
			name:       "billed taxonomy code wins",
			line:       validation.LineInput{RawCode: " ime.phy_exam.mileage ", RawDescription: "surveillance"},
			code:       "IME.PHY_EXAM.MILEAGE",
			component:  "MILEAGE",
			confidence: validation.ConfidenceHigh,
			recognized: true,
		},
		{
			name:       "unknown code falls back to the description",
			line:       validation.LineInput{RawCode: "99213", RawDescription: "Surveillance - 8 hrs"},
			code:       "INV.SURVEILLANCE.PROF_FEE",
			component:  "PROF_FEE",
			confidence: validation.ConfidenceHigh,
			recognized: true,
		},
		{
			name:       "medium weight rule",
			line:       validation.LineInput{RawDescription: "IME physician exam, ortho"},
			code:       "IME.PHY_EXAM.PROF_FEE",
			component:  "PROF_FEE",
			confidence: validation.ConfidenceMedium,
			recognized: true,
		},
		{
			name:       "highest weight rule wins",
			line:       validation.LineInput{RawDescription: "Records review, no exam"},
			code:       "IME.RECORDS_REVIEW.PROF_FEE",
			component:  "PROF_FEE",
			confidence: validation.ConfidenceHigh,
			recognized: true,
		},
		{
			name:       "travel heuristics are low confidence",
			line:       validation.LineInput{RawDescription: "Round trip 42 miles"},
			code:       "IME.PHY_EXAM.MILEAGE",
			component:  "MILEAGE",
			confidence: validation.ConfidenceLow,
			recognized: true,
		},
		{
			name:       "loose keyword matches without punctuation",
			line:       validation.LineInput{RawDescription: "Noshow fee 3/14"},
			code:       "IME.NO_SHOW.NO_SHOW_FEE",
			component:  "NO_SHOW_FEE",
			confidence: validation.ConfidenceHigh,
			recognized: true,
		},
		{
			name:       "nothing matches",
			line:       validation.LineInput{RawDescription: "Misc services rendered"},
			confidence: validation.ConfidenceUnrecognized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Classify(ctx, tt.line)

			require.NoError(t, err)
			assert.Equal(t, tt.code, got.TaxonomyCode)
			assert.Equal(t, tt.component, got.BillingComponent)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, tt.recognized, got.Recognized())
			assert.Nil(t, got.RuleID)
		})
	}
}

type failingCatalog struct{}

func (failingCatalog) Lookup(context.Context, string) (ports.TaxonomyEntry, error) {
	return ports.TaxonomyEntry{}, errors.New("catalog down")
}

func (failingCatalog) Entries(context.Context) ([]ports.TaxonomyEntry, error) {
	return nil, errors.New("catalog down")
}

func TestClassify_CatalogFailure(t *testing.T) {
	e, err := engine.NewRuleEngine(failingCatalog{}, nil)
	require.NoError(t, err)

	_, err = e.Classify(context.Background(), validation.LineInput{RawCode: "IME.PHY_EXAM.PROF_FEE"})

	assert.EqualError(t, err, "catalog down")
}

func TestValidate_Rate(t *testing.T) {
	e := newEngine(t)
	rates, guidelines := terms(t,
		validation.ContractTerm{TaxonomyCode: "IME.PHY_EXAM.PROF_FEE", Rate: dec("600.00"), Unit: "EA"},
		validation.ContractTerm{TaxonomyCode: "IME.PHY_EXAM.MILEAGE", Rate: dec("0.655"), Unit: "MI"},
	)

	tests := []struct {
		name     string
		code     string
		qty      string
		amount   string
		status   validation.Status
		severity validation.Severity
		action   validation.RequiredAction
		expected string
	}{
		{"exact amount passes", "IME.PHY_EXAM.PROF_FEE", "1", "600.00", validation.StatusPass, validation.SeverityInfo, validation.RequiredActionNone, "600.00"},
		{"within tolerance passes", "IME.PHY_EXAM.MILEAGE", "42", "27.53", validation.StatusPass, validation.SeverityInfo, validation.RequiredActionNone, "27.51"},
		{"overbilled fails", "IME.PHY_EXAM.PROF_FEE", "1", "750.00", validation.StatusFail, validation.SeverityError, validation.RequiredActionAcceptReduction, "600.00"},
		{"one cent past tolerance fails", "IME.PHY_EXAM.PROF_FEE", "1", "600.03", validation.StatusFail, validation.SeverityError, validation.RequiredActionAcceptReduction, "600.00"},
		{"underbilled warns", "IME.PHY_EXAM.PROF_FEE", "1", "550.00", validation.StatusWarning, validation.SeverityWarning, validation.RequiredActionNone, "600.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := e.Validate(context.Background(), validation.LineInput{
				TaxonomyCode: tt.code,
				Quantity:     dec(tt.qty),
				RawAmount:    dec(tt.amount),
			}, rates, guidelines)

			require.NoError(t, err)
			require.Len(t, results, 1)
			r := results[0]
			assert.Equal(t, validation.TypeRate, r.Type)
			assert.Equal(t, tt.status, r.Status)
			assert.Equal(t, tt.severity, r.Severity)
			assert.Equal(t, tt.action, r.RequiredAction)
			require.True(t, r.ExpectedAmount.Valid)
			assert.Equal(t, tt.expected, r.ExpectedAmount.Decimal.StringFixed(2))
			assert.NotEmpty(t, r.Message)
			require.NoError(t, r.Validate())
		})
	}
}

func TestValidate_NoContractedRate(t *testing.T) {
	e := newEngine(t)
	rates, guidelines := terms(t)

	results, err := e.Validate(context.Background(), validation.LineInput{
		TaxonomyCode: "ENG.CAUSE_ORIGIN.PROF_FEE",
		Quantity:     dec("1"),
		RawAmount:    dec("1200"),
	}, rates, guidelines)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, validation.TypeRate, results[0].Type)
	assert.Equal(t, validation.StatusWarning, results[0].Status)
	assert.False(t, results[0].RaisesException())
	assert.False(t, results[0].ExpectedAmount.Valid)
}

func TestValidate_Unclassified(t *testing.T) {
	e := newEngine(t)
	rates, guidelines := terms(t)

	results, err := e.Validate(context.Background(), validation.LineInput{RawDescription: "???"}, rates, guidelines)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, validation.TypeClassification, results[0].Type)
	assert.Equal(t, validation.StatusFail, results[0].Status)
	assert.Equal(t, validation.RequiredActionRequestReclassification, results[0].RequiredAction)
	assert.True(t, results[0].RaisesException())
}

func TestValidate_Guidelines(t *testing.T) {
	e := newEngine(t)
	rates, guidelines := terms(t,
		validation.ContractTerm{
			TaxonomyCode: "IME.PHY_EXAM.MILEAGE", Rate: dec("0.50"), Unit: "MI",
			MaxUnits: decimal.NewNullDecimal(dec("100")),
		},
		validation.ContractTerm{TaxonomyCode: "REC.MED_RECORDS.RUSH_PREMIUM", Rate: dec("25"), RequiresDocumentation: true},
	)

	t.Run("should fail quantity over the maximum", func(t *testing.T) {
		results, err := e.Validate(context.Background(), validation.LineInput{
			TaxonomyCode: "IME.PHY_EXAM.MILEAGE",
			Quantity:     dec("120"),
			RawAmount:    dec("60.00"),
		}, rates, guidelines)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, validation.StatusPass, results[0].Status)
		assert.Equal(t, validation.TypeGuideline, results[1].Type)
		assert.Equal(t, validation.StatusFail, results[1].Status)
		assert.Equal(t, validation.RequiredActionAttachDoc, results[1].RequiredAction)
	})

	t.Run("should pass quantity at the maximum", func(t *testing.T) {
		results, err := e.Validate(context.Background(), validation.LineInput{
			TaxonomyCode: "IME.PHY_EXAM.MILEAGE",
			Quantity:     dec("100"),
			RawAmount:    dec("50.00"),
		}, rates, guidelines)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, validation.TypeRate, results[0].Type)
	})

	t.Run("should warn when documentation is required", func(t *testing.T) {
		results, err := e.Validate(context.Background(), validation.LineInput{
			TaxonomyCode: "REC.MED_RECORDS.RUSH_PREMIUM",
			Quantity:     dec("1"),
			RawAmount:    dec("25"),
		}, rates, guidelines)

		require.NoError(t, err)
		require.Len(t, results, 2)
		doc := results[1]
		assert.Equal(t, validation.TypeGuideline, doc.Type)
		assert.Equal(t, validation.StatusWarning, doc.Status)
		assert.Equal(t, validation.RequiredActionAttachDoc, doc.RequiredAction)
		assert.True(t, doc.RaisesException())
	})
}

func TestValidate_IsDeterministic(t *testing.T) {
	e := newEngine(t)
	rates, guidelines := terms(t,
		validation.ContractTerm{TaxonomyCode: "IME.PHY_EXAM.PROF_FEE", Rate: dec("600.00")},
	)
	line := validation.LineInput{TaxonomyCode: "IME.PHY_EXAM.PROF_FEE", Quantity: dec("1"), RawAmount: dec("700")}

	first, err := e.Validate(context.Background(), line, rates, guidelines)
	require.NoError(t, err)
	second, err := e.Validate(context.Background(), line, rates, guidelines)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
