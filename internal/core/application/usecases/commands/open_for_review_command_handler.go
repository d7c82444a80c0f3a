package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

type OpenForReviewCommandHandler struct {
	deps Dependencies
}

func NewOpenForReviewCommandHandler(deps Dependencies) OpenForReviewCommandHandler {
	return OpenForReviewCommandHandler{deps: deps}
}

func (h OpenForReviewCommandHandler) Handle(
	ctx context.Context,
	command OpenForReviewCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("open_for_review", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionOpenForReview); err != nil {
		return invoice.Snapshot{}, err
	}

	return h.deps.mutateInvoice(ctx, command.InvoiceID(),
		func(_ context.Context, _ UoW, inv *invoice.Invoice, now time.Time) error {
			return inv.OpenForReview(command.Actor(), now)
		})
}
