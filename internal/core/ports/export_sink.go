package ports

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// PaymentExport is the payable view of an approved invoice.
type PaymentExport struct {
	InvoiceID     kernel.UUID
	InvoiceNumber string
	SupplierID    kernel.UUID
	ContractID    kernel.UUID
	Version       int
	ExportedAt    time.Time
	Lines         []PaymentExportLine
}

type PaymentExportLine struct {
	LineItemID       kernel.UUID
	LineNumber       int
	TaxonomyCode     string
	BillingComponent string
	Quantity         decimal.Decimal
	BilledAmount     decimal.Decimal
	PayableAmount    decimal.Decimal
}

// ExportSink writes a payment export and returns where it was written.
type ExportSink interface {
	Write(ctx context.Context, export PaymentExport) (location string, err error)
}
