package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

// ApproveInvoiceCommandHandler approves an invoice and waives every exception still
// open on it. The waivers, their audit events and the transition commit together.
//
// Example:
//
//	cmd, _ := NewApproveInvoiceCommand(carrier, invoiceID, "ok to pay")
//	snapshot, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrAuditWriteFailure) {
//	    // nothing was written; the invoice is still awaiting approval
//	}
type ApproveInvoiceCommandHandler struct {
	deps Dependencies
}

func NewApproveInvoiceCommandHandler(deps Dependencies) ApproveInvoiceCommandHandler {
	return ApproveInvoiceCommandHandler{deps: deps}
}

func (h ApproveInvoiceCommandHandler) Handle(
	ctx context.Context,
	command ApproveInvoiceCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("approve_invoice", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionApproveInvoice); err != nil {
		return invoice.Snapshot{}, err
	}

	return h.deps.mutateInvoice(ctx, command.InvoiceID(),
		func(_ context.Context, _ UoW, inv *invoice.Invoice, now time.Time) error {
			_, approveErr := inv.Approve(command.Actor(), command.Notes(), now)
			return approveErr
		})
}
