package mapping_test

import (
	"testing"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignature(t *testing.T) {
	tests := []struct {
		raw  string
		want mapping.Signature
	}{
		{"IME Physician Exam", "ime physician exam"},
		{"  IME   Physician\tExam \n", "ime physician exam"},
		{"MILEAGE", "mileage"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			sig, err := mapping.NewSignature(tt.raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, sig)
		})
	}

	t.Run("should reject blank descriptions", func(t *testing.T) {
		_, err := mapping.NewSignature(" \t ")

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestParseScope(t *testing.T) {
	for _, in := range []string{"line", "SUPPLIER", " Global "} {
		_, err := mapping.ParseScope(in)
		require.NoError(t, err, in)
	}

	_, err := mapping.ParseScope("REGION")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	assert.False(t, mapping.ScopeLine.Persisted())
	assert.True(t, mapping.ScopeSupplier.Persisted())
	assert.True(t, mapping.ScopeGlobal.Persisted())
}
