package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

// ResolveExceptionCommandHandler applies a carrier's resolution. Resolving the last
// blocker of a REVIEW_REQUIRED invoice does not move it: the supplier still resubmits.
type ResolveExceptionCommandHandler struct {
	deps Dependencies
}

func NewResolveExceptionCommandHandler(deps Dependencies) ResolveExceptionCommandHandler {
	return ResolveExceptionCommandHandler{deps: deps}
}

func (h ResolveExceptionCommandHandler) Handle(
	ctx context.Context,
	command ResolveExceptionCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("resolve_exception", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionResolveException); err != nil {
		return invoice.Snapshot{}, err
	}

	invoiceID, err := h.deps.invoiceIDByException(ctx, command.ExceptionID())
	if err != nil {
		return invoice.Snapshot{}, err
	}

	return h.deps.mutateInvoice(ctx, invoiceID,
		func(_ context.Context, _ UoW, inv *invoice.Invoice, now time.Time) error {
			return inv.ResolveException(command.ExceptionID(), command.Action(), command.Notes(), command.Actor(), now)
		})
}
