package invoice_test

import (
	"testing"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoredException(t *testing.T, status invoice.ExceptionStatus, action invoice.ResolutionAction) *invoice.Exception {
	t.Helper()
	r := rateFail("10.00")
	e, err := invoice.RestoreException(invoice.ExceptionState{
		ID:               kernel.NewUUID(),
		LineItemID:       kernel.NewUUID(),
		ValidationType:   r.Type,
		Status:           status,
		Severity:         r.Severity,
		RequiredAction:   r.RequiredAction,
		ResolutionAction: action,
		CreatedAt:        t0,
	})
	require.NoError(t, err)
	return e
}

func TestReduceLineStatus(t *testing.T) {
	open := restoredException(t, invoice.ExceptionOpen, "")
	responded := restoredException(t, invoice.ExceptionSupplierResponded, "")
	resolved := restoredException(t, invoice.ExceptionResolved, invoice.ResolutionHeldContractRate)
	waived := restoredException(t, invoice.ExceptionWaived, invoice.ResolutionWaived)
	denied := restoredException(t, invoice.ExceptionResolved, invoice.ResolutionDenied)

	all := invoice.LineFacts{Classified: true, Validated: true, Overridden: true}

	tests := []struct {
		name       string
		facts      invoice.LineFacts
		exceptions []*invoice.Exception
		want       invoice.LineStatus
	}{
		{"nothing happened", invoice.LineFacts{}, nil, invoice.LinePending},
		{"classified", invoice.LineFacts{Classified: true}, nil, invoice.LineClassified},
		{"validated clean", invoice.LineFacts{Classified: true, Validated: true}, nil, invoice.LineValidated},
		{"open exception", invoice.LineFacts{Classified: true, Validated: true}, []*invoice.Exception{open}, invoice.LineException},
		{"responded exception is still in dispute", invoice.LineFacts{Validated: true}, []*invoice.Exception{responded}, invoice.LineException},
		{"all closed", invoice.LineFacts{Validated: true}, []*invoice.Exception{resolved, waived}, invoice.LineResolved},
		{"one closed one open", invoice.LineFacts{Validated: true}, []*invoice.Exception{resolved, open}, invoice.LineException},
		{"override beats exception", all, []*invoice.Exception{open}, invoice.LineOverride},
		{"denied beats override", all, []*invoice.Exception{open, denied}, invoice.LineDenied},
		{"denied beats everything closed", invoice.LineFacts{}, []*invoice.Exception{waived, denied}, invoice.LineDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invoice.ReduceLineStatus(tt.facts, tt.exceptions))
		})
	}
}

func TestLineStatus_StringAndParse(t *testing.T) {
	for _, s := range []invoice.LineStatus{
		invoice.LinePending, invoice.LineClassified, invoice.LineValidated, invoice.LineException,
		invoice.LineOverride, invoice.LineResolved, invoice.LineDenied,
	} {
		parsed, err := invoice.ParseLineStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	assert.Error(t, invoice.LineStatusUnknown.Validate())
	assert.Equal(t, "UNKNOWN", invoice.LineStatus(42).String())
}
