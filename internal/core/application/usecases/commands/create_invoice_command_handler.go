package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// CreateInvoiceCommandHandler persists a new DRAFT invoice and its INVOICE_CREATED event.
// No lock is taken: nobody else can know the new id yet.
type CreateInvoiceCommandHandler struct {
	deps Dependencies
}

func NewCreateInvoiceCommandHandler(deps Dependencies) CreateInvoiceCommandHandler {
	return CreateInvoiceCommandHandler{deps: deps}
}

func (h CreateInvoiceCommandHandler) Handle(
	ctx context.Context,
	command CreateInvoiceCommand,
) (snapshot invoice.Snapshot, err error) {
	defer h.deps.observe("create_invoice", time.Now(), &err)

	if err = command.Validate(); err != nil {
		return invoice.Snapshot{}, err
	}
	actor := command.Actor()
	if err = h.deps.authorize(ctx, actor, ports.ActionCreateInvoice); err != nil {
		return invoice.Snapshot{}, err
	}
	if !actor.ActsFor(command.SupplierID()) {
		return invoice.Snapshot{}, errs.NewUnauthorizedErrorWithCause(actor.Role().String(), "create",
			fmt.Errorf("supplier %s is not the actor's supplier", command.SupplierID()))
	}

	inv, err := invoice.NewInvoice(
		command.InvoiceID(),
		command.SupplierID(),
		command.ContractID(),
		command.InvoiceNumber(),
		command.InvoiceDate(),
		actor,
		h.deps.now(),
	)
	if err != nil {
		return invoice.Snapshot{}, err
	}

	uow := h.deps.UoWFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return invoice.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.InvoiceRepository().Add(ctx, inv); err != nil {
		return invoice.Snapshot{}, err
	}

	events, err := appendEvents(ctx, uow.AuditSink(), inv)
	if err != nil {
		return invoice.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return invoice.Snapshot{}, err
	}

	h.deps.notify(events)
	return inv.Snapshot(), nil
}
