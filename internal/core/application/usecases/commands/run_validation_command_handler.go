package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/services"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
)

// RunValidationCommandHandler runs the validation pipeline for one invoice.
//
// The run uses two transactions under one lock. The first commits
// SUBMITTED to PROCESSING, so a crash afterwards leaves the invoice where the
// retry job finds it. The second writes classifications and exceptions and
// settles the invoice into REVIEW_REQUIRED or PENDING_CARRIER_REVIEW.
type RunValidationCommandHandler struct {
	deps Dependencies
	pass services.ValidationPass
}

func NewRunValidationCommandHandler(deps Dependencies, engine ports.ValidationEngine) RunValidationCommandHandler {
	return RunValidationCommandHandler{
		deps: deps,
		pass: services.NewValidationPass(engine),
	}
}

func (h RunValidationCommandHandler) Handle(
	ctx context.Context,
	command RunValidationCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("run_validation", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	actor := command.Actor()
	if err = h.deps.authorize(ctx, actor, ports.ActionRunValidation); err != nil {
		return invoice.Snapshot{}, err
	}

	unlock, err := h.deps.Locker.Lock(ctx, command.InvoiceID())
	if err != nil {
		return invoice.Snapshot{}, err
	}
	defer unlock()

	_, err = h.deps.inTransaction(ctx, command.InvoiceID(),
		func(_ context.Context, _ UoW, inv *invoice.Invoice, now time.Time) error {
			_, beginErr := inv.BeginValidation(actor, now)
			return beginErr
		})
	if err != nil {
		return invoice.Snapshot{}, err
	}

	return h.deps.inTransaction(ctx, command.InvoiceID(),
		func(ctx context.Context, uow UoW, inv *invoice.Invoice, now time.Time) error {
			return validateAndSettle(ctx, h.pass, uow, inv, actor, now)
		})
}

// validateAndSettle runs the pass against the contract's terms and the supplier's
// rules, then derives the invoice status from the outcome.
func validateAndSettle(
	ctx context.Context,
	pass services.ValidationPass,
	uow UoW,
	inv *invoice.Invoice,
	actor kernel.Actor,
	now time.Time,
) error {
	rates, guidelines, err := uow.ContractTermsRepository().Terms(ctx, inv.ContractID())
	if err != nil {
		return err
	}

	rules, err := uow.MappingRuleRepository().ListCandidates(ctx, inv.SupplierID())
	if err != nil {
		return err
	}

	if _, err = pass.Run(ctx, inv, mapping.NewRuleBook(rules), rates, guidelines, now); err != nil {
		return err
	}

	return inv.SettleValidation(actor, now)
}
