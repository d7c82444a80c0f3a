package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

// SubmitInvoiceCommandHandler moves a DRAFT or REVIEW_REQUIRED invoice to SUBMITTED.
// Validation runs separately, either through RunValidationCommand or the retry job.
//
// Example:
//
//	cmd, _ := NewSubmitInvoiceCommand(supplier, invoiceID, lines)
//	snapshot, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrStaleVersion):
//	    // the carrier already moved past the version the supplier was editing
//	case err != nil:
//	    return err
//	}
type SubmitInvoiceCommandHandler struct {
	deps Dependencies
}

func NewSubmitInvoiceCommandHandler(deps Dependencies) SubmitInvoiceCommandHandler {
	return SubmitInvoiceCommandHandler{deps: deps}
}

func (h SubmitInvoiceCommandHandler) Handle(
	ctx context.Context,
	command SubmitInvoiceCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("submit_invoice", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionSubmitInvoice); err != nil {
		return invoice.Snapshot{}, err
	}

	return h.deps.mutateInvoice(ctx, command.InvoiceID(),
		func(_ context.Context, _ UoW, inv *invoice.Invoice, now time.Time) error {
			return inv.Submit(command.Actor(), command.Lines(), now)
		})
}
