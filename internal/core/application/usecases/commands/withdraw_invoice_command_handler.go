package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

type WithdrawInvoiceCommandHandler struct {
	deps Dependencies
}

func NewWithdrawInvoiceCommandHandler(deps Dependencies) WithdrawInvoiceCommandHandler {
	return WithdrawInvoiceCommandHandler{deps: deps}
}

func (h WithdrawInvoiceCommandHandler) Handle(
	ctx context.Context,
	command WithdrawInvoiceCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("withdraw_invoice", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	if err = h.deps.authorize(ctx, command.Actor(), ports.ActionWithdrawInvoice); err != nil {
		return invoice.Snapshot{}, err
	}

	reason := command.Reason()
	if reason == "" {
		reason = "withdrawn by supplier"
	}

	return h.deps.mutateInvoice(ctx, command.InvoiceID(),
		func(_ context.Context, _ UoW, inv *invoice.Invoice, now time.Time) error {
			return inv.Withdraw(command.Actor(), reason, now)
		})
}
