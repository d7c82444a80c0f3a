package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/services"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

// RespondToExceptionCommandHandler records a supplier response. When the response
// clears the last blocking exception of a REVIEW_REQUIRED invoice, the invoice is
// validated again and settled in the same transaction.
type RespondToExceptionCommandHandler struct {
	deps Dependencies
	pass services.ValidationPass
}

func NewRespondToExceptionCommandHandler(
	deps Dependencies,
	engine ports.ValidationEngine,
) RespondToExceptionCommandHandler {
	return RespondToExceptionCommandHandler{
		deps: deps,
		pass: services.NewValidationPass(engine),
	}
}

func (h RespondToExceptionCommandHandler) Handle(
	ctx context.Context,
	command RespondToExceptionCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("respond_to_exception", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionRespondException); err != nil {
		return invoice.Snapshot{}, err
	}

	invoiceID, err := h.deps.invoiceIDByException(ctx, command.ExceptionID())
	if err != nil {
		return invoice.Snapshot{}, err
	}

	return h.deps.mutateInvoice(ctx, invoiceID,
		func(ctx context.Context, uow UoW, inv *invoice.Invoice, now time.Time) error {
			revalidate, respondErr := inv.RespondToException(command.ExceptionID(), command.Text(), command.Actor(), now)
			if respondErr != nil || !revalidate {
				return respondErr
			}
			return validateAndSettle(ctx, h.pass, uow, inv, kernel.SystemActor(), now)
		})
}
