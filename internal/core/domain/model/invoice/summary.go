package invoice

import (
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"

	"github.com/shopspring/decimal"
)

// Summary totals one version of an invoice. Amounts are exact; rounding to cents
// happens only where they are presented.
type Summary struct {
	TotalBilled    decimal.Decimal
	TotalPayable   decimal.Decimal
	TotalInDispute decimal.Decimal
	TotalDenied    decimal.Decimal

	TotalLines          int
	LinesValidated      int
	LinesWithExceptions int
	LinesPendingReview  int
	LinesDenied         int
}

// SummaryLine is the part of a line the summary needs. Queries build it straight
// from stored columns; the aggregate builds it from LineItem.SummaryLine.
type SummaryLine struct {
	Status        LineStatus
	Confidence    validation.Confidence
	Validated     bool
	InDispute     bool
	RawAmount     decimal.Decimal
	PayableAmount decimal.Decimal
}

// SummaryLine projects the line for Summarize.
func (l *LineItem) SummaryLine() SummaryLine {
	return SummaryLine{
		Status:        l.status,
		Confidence:    l.confidence,
		Validated:     l.facts.Validated,
		InDispute:     l.InDispute(),
		RawAmount:     l.rawAmount,
		PayableAmount: l.PayableAmount(),
	}
}

// Summarize puts every line in exactly one bucket: denied lines count toward
// TotalDenied, lines with unresolved exceptions toward TotalInDispute, and
// everything else toward TotalPayable at its payable amount.
func Summarize(lines []SummaryLine) Summary {
	s := Summary{
		TotalBilled:    decimal.Zero,
		TotalPayable:   decimal.Zero,
		TotalInDispute: decimal.Zero,
		TotalDenied:    decimal.Zero,
	}

	for _, l := range lines {
		s.TotalLines++
		s.TotalBilled = s.TotalBilled.Add(l.RawAmount)
		if l.Validated {
			s.LinesValidated++
		}

		switch {
		case l.Status == LineDenied:
			s.LinesDenied++
			s.TotalDenied = s.TotalDenied.Add(l.RawAmount)
		case l.InDispute:
			s.LinesWithExceptions++
			s.TotalInDispute = s.TotalInDispute.Add(l.RawAmount)
		default:
			s.TotalPayable = s.TotalPayable.Add(l.PayableAmount)
			if l.Confidence == validation.ConfidenceLow || l.Confidence == validation.ConfidenceMedium {
				s.LinesPendingReview++
			}
		}
	}

	return s
}
