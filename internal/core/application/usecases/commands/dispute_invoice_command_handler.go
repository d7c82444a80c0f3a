package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

type DisputeInvoiceCommandHandler struct {
	deps Dependencies
}

func NewDisputeInvoiceCommandHandler(deps Dependencies) DisputeInvoiceCommandHandler {
	return DisputeInvoiceCommandHandler{deps: deps}
}

func (h DisputeInvoiceCommandHandler) Handle(
	ctx context.Context,
	command DisputeInvoiceCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("dispute_invoice", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionDisputeInvoice); err != nil {
		return invoice.Snapshot{}, err
	}

	return h.deps.mutateInvoice(ctx, command.InvoiceID(),
		func(_ context.Context, _ UoW, inv *invoice.Invoice, now time.Time) error {
			return inv.Dispute(command.Actor(), command.Reason(), now)
		})
}
