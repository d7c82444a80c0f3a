package commands

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// Dependencies are the collaborators shared by every invoice command handler.
// Recorder and Clock are optional.
type Dependencies struct {
	UoWFactory UoWFactory
	Locker     ports.InvoiceLocker
	Authorizer ports.Authorizer
	Recorder   ports.EventRecorder
	Clock      func() time.Time
}

// invoiceMutation applies one domain operation to a loaded invoice.
type invoiceMutation func(ctx context.Context, uow UoW, inv *invoice.Invoice, now time.Time) error

func (d Dependencies) now() time.Time {
	if d.Clock == nil {
		return time.Now().UTC()
	}
	return d.Clock().UTC()
}

func (d Dependencies) authorize(ctx context.Context, actor kernel.Actor, action ports.Action) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	return d.Authorizer.Authorize(ctx, actor, action)
}

// observe reports a finished command. errp is read when the deferred call runs.
func (d Dependencies) observe(command string, started time.Time, errp *error) {
	if d.Recorder == nil {
		return
	}
	d.Recorder.CommandHandled(command, *errp, time.Since(started))
}

// mutateInvoice runs fn under the invoice lock in a single transaction.
func (d Dependencies) mutateInvoice(
	ctx context.Context,
	invoiceID kernel.UUID,
	fn invoiceMutation,
) (invoice.Snapshot, error) {
	unlock, err := d.Locker.Lock(ctx, invoiceID)
	if err != nil {
		return invoice.Snapshot{}, err
	}
	defer unlock()

	return d.inTransaction(ctx, invoiceID, fn)
}

// inTransaction loads the invoice, applies fn, persists the aggregate with its
// audit events and commits. The caller must hold the invoice lock.
func (d Dependencies) inTransaction(
	ctx context.Context,
	invoiceID kernel.UUID,
	fn invoiceMutation,
) (invoice.Snapshot, error) {
	uow := d.UoWFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return invoice.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	inv, err := uow.InvoiceRepository().Get(ctx, invoiceID)
	if err != nil {
		return invoice.Snapshot{}, err
	}

	if err = fn(ctx, uow, inv, d.now()); err != nil {
		return invoice.Snapshot{}, err
	}

	if err = uow.InvoiceRepository().Update(ctx, inv); err != nil {
		return invoice.Snapshot{}, err
	}

	events, err := appendEvents(ctx, uow.AuditSink(), inv)
	if err != nil {
		return invoice.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return invoice.Snapshot{}, err
	}

	d.notify(events)
	return inv.Snapshot(), nil
}

// invoiceIDByLineItem resolves the owning invoice outside any transaction.
func (d Dependencies) invoiceIDByLineItem(ctx context.Context, lineItemID kernel.UUID) (kernel.UUID, error) {
	return d.UoWFactory.Create().InvoiceRepository().InvoiceIDByLineItem(ctx, lineItemID)
}

// invoiceIDByException resolves the owning invoice outside any transaction.
func (d Dependencies) invoiceIDByException(ctx context.Context, exceptionID kernel.UUID) (kernel.UUID, error) {
	return d.UoWFactory.Create().InvoiceRepository().InvoiceIDByException(ctx, exceptionID)
}

func (d Dependencies) notify(events []audit.Event) {
	if d.Recorder == nil {
		return
	}
	for _, ev := range events {
		switch ev.EventType {
		case audit.EventInvoiceTransitioned:
			d.Recorder.InvoiceTransitioned(ev.FromState, ev.ToState)
		case audit.EventExceptionRaised:
			validationType, _ := ev.Payload["validation_type"].(string)
			d.Recorder.ExceptionsRaised(validationType, 1)
		case audit.EventInvoiceExported:
			d.Recorder.InvoiceExported()
		default:
		}
	}
}

// appendEvents writes the invoice's pending events to sink in order. The first
// failure aborts with AuditWriteFailure and leaves the events pending.
func appendEvents(ctx context.Context, sink ports.AuditSink, inv *invoice.Invoice) ([]audit.Event, error) {
	events := inv.PendingEvents()
	for _, ev := range events {
		if err := sink.Append(ctx, ev); err != nil {
			return nil, errs.NewAuditWriteFailureError(string(ev.EventType), err)
		}
	}
	inv.ClearPendingEvents()
	return events, nil
}
