package validation

import "github.com/shopspring/decimal"

// LineInput is the view of a line item handed to the engine.
type LineInput struct {
	LineNumber       int
	RawDescription   string
	RawCode          string
	Unit             string
	Quantity         decimal.Decimal
	RawAmount        decimal.Decimal
	TaxonomyCode     string
	BillingComponent string
}
