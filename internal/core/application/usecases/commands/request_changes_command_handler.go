package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

// RequestChangesCommandHandler moves an invoice under carrier review back to REVIEW_REQUIRED.
type RequestChangesCommandHandler struct {
	deps Dependencies
}

func NewRequestChangesCommandHandler(deps Dependencies) RequestChangesCommandHandler {
	return RequestChangesCommandHandler{deps: deps}
}

func (h RequestChangesCommandHandler) Handle(
	ctx context.Context,
	command RequestChangesCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("request_changes", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionRequestChanges); err != nil {
		return invoice.Snapshot{}, err
	}

	return h.deps.mutateInvoice(ctx, command.InvoiceID(),
		func(_ context.Context, _ UoW, inv *invoice.Invoice, now time.Time) error {
			return inv.RequestChanges(command.Actor(), command.Notes(), now)
		})
}
