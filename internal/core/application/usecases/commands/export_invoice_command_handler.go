package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

// ExportInvoiceCommandHandler hands an APPROVED invoice to payment.
//
// The sink is written inside the transaction after the transition is accepted,
// so a second export fails with AlreadyExported before anything reaches the sink,
// and a sink failure leaves the invoice APPROVED.
type ExportInvoiceCommandHandler struct {
	deps Dependencies
	sink ports.ExportSink
}

func NewExportInvoiceCommandHandler(deps Dependencies, sink ports.ExportSink) ExportInvoiceCommandHandler {
	return ExportInvoiceCommandHandler{
		deps: deps,
		sink: sink,
	}
}

func (h ExportInvoiceCommandHandler) Handle(
	ctx context.Context,
	command ExportInvoiceCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("export_invoice", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionExportInvoice); err != nil {
		return invoice.Snapshot{}, err
	}

	return h.deps.mutateInvoice(ctx, command.InvoiceID(),
		func(ctx context.Context, _ UoW, inv *invoice.Invoice, now time.Time) error {
			if markErr := inv.MarkExported(command.Actor(), now); markErr != nil {
				return markErr
			}

			export := PaymentExportOf(inv, now)
			location, writeErr := h.sink.Write(ctx, export)
			if writeErr != nil {
				return fmt.Errorf("write payment export: %w", writeErr)
			}

			inv.RecordExport(location, len(export.Lines), command.Actor(), now)
			return nil
		})
}

// PaymentExportOf builds the payable view of inv: every current line that was not
// denied, with its payable amount rounded to cents.
func PaymentExportOf(inv *invoice.Invoice, exportedAt time.Time) ports.PaymentExport {
	export := ports.PaymentExport{
		InvoiceID:     inv.ID(),
		InvoiceNumber: inv.InvoiceNumber(),
		SupplierID:    inv.SupplierID(),
		ContractID:    inv.ContractID(),
		Version:       inv.CurrentVersion(),
		ExportedAt:    exportedAt,
	}

	for _, line := range inv.CurrentLines() {
		if line.IsDenied() {
			continue
		}
		export.Lines = append(export.Lines, ports.PaymentExportLine{
			LineItemID:       line.ID(),
			LineNumber:       line.LineNumber(),
			TaxonomyCode:     line.TaxonomyCode(),
			BillingComponent: line.BillingComponent(),
			Quantity:         line.Quantity(),
			BilledAmount:     line.RawAmount(),
			PayableAmount:    line.PayableAmount().Round(2),
		})
	}

	return export
}
