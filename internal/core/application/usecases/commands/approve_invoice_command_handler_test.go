package commands_test

import (
	"errors"
	"testing"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/commands"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func eventOfType(eventType audit.EventType) any {
	return mock.MatchedBy(func(e audit.Event) bool { return e.EventType == eventType })
}

func TestApproveInvoiceCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	inv := pendingReview(t)
	actor := carrier(t)
	cmd, err := commands.NewApproveInvoiceCommand(actor, inv.ID(), "ok to pay")
	require.NoError(t, err)

	repo := new(MockInvoiceRepository)
	sink := new(MockAuditSink)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	locker := new(MockLocker)
	authz := new(MockAuthorizer)
	recorder := new(MockEventRecorder)

	mock.InOrder(
		authz.On("Authorize", ctx, actor, ports.ActionApproveInvoice).Return(nil).Once(),
		locker.On("Lock", ctx, inv.ID()).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("InvoiceRepository").Return(repo).Once(),
		repo.On("Get", ctx, inv.ID()).Return(inv, nil).Once(),
		uow.On("InvoiceRepository").Return(repo).Once(),
		repo.On("Update", ctx, inv).Return(nil).Once(),
		uow.On("AuditSink").Return(sink).Once(),
		sink.On("Append", ctx, eventOfType(audit.EventExceptionWaived)).Return(nil).Once(),
		sink.On("Append", ctx, eventOfType(audit.EventInvoiceTransitioned)).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	recorder.On("InvoiceTransitioned", "PENDING_CARRIER_REVIEW", "APPROVED").Once()
	recorder.On("CommandHandled", "approve_invoice", nil, mock.Anything).Once()

	h := commands.NewApproveInvoiceCommandHandler(commands.Dependencies{
		UoWFactory: factory,
		Locker:     locker,
		Authorizer: authz,
		Recorder:   recorder,
		Clock:      fixedClock,
	})
	snapshot, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, invoice.Approved, snapshot.Status)
	assert.Empty(t, inv.PendingEvents())
	assert.Equal(t, 1, locker.released)
	for _, l := range inv.CurrentLines() {
		for _, exc := range l.Exceptions() {
			assert.Equal(t, invoice.ExceptionWaived, exc.Status())
		}
	}
	authz.AssertExpectations(t)
	repo.AssertExpectations(t)
	sink.AssertExpectations(t)
	uow.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestApproveInvoiceCommandHandler_Handle_AuditFailureRollsBack(t *testing.T) {
	ctx := t.Context()
	inv := pendingReview(t)
	actor := carrier(t)
	cmd, err := commands.NewApproveInvoiceCommand(actor, inv.ID(), "")
	require.NoError(t, err)

	repo := new(MockInvoiceRepository)
	sink := new(MockAuditSink)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	locker := new(MockLocker)
	authz := new(MockAuthorizer)
	sinkErr := errors.New("audit table unavailable")

	mock.InOrder(
		authz.On("Authorize", ctx, actor, ports.ActionApproveInvoice).Return(nil).Once(),
		locker.On("Lock", ctx, inv.ID()).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("InvoiceRepository").Return(repo).Once(),
		repo.On("Get", ctx, inv.ID()).Return(inv, nil).Once(),
		uow.On("InvoiceRepository").Return(repo).Once(),
		repo.On("Update", ctx, inv).Return(nil).Once(),
		uow.On("AuditSink").Return(sink).Once(),
		sink.On("Append", ctx, eventOfType(audit.EventExceptionWaived)).Return(sinkErr).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	h := commands.NewApproveInvoiceCommandHandler(commands.Dependencies{
		UoWFactory: factory,
		Locker:     locker,
		Authorizer: authz,
		Clock:      fixedClock,
	})
	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrAuditWriteFailure)
	var auditErr *errs.AuditWriteFailureError
	require.ErrorAs(t, err, &auditErr)
	assert.ErrorIs(t, auditErr.Cause, sinkErr)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	uow.AssertExpectations(t)
	sink.AssertNumberOfCalls(t, "Append", 1)
	assert.Equal(t, 1, locker.released)
}

func TestApproveInvoiceCommandHandler_Handle_Unauthorized(t *testing.T) {
	ctx := t.Context()
	inv := pendingReview(t)
	actor := supplierFor(t, inv.SupplierID())
	cmd, err := commands.NewApproveInvoiceCommand(actor, inv.ID(), "")
	require.NoError(t, err)

	authz := new(MockAuthorizer)
	authz.On("Authorize", ctx, actor, ports.ActionApproveInvoice).
		Return(errs.NewUnauthorizedError("SUPPLIER", ports.ActionApproveInvoice.String())).Once()
	factory := new(MockUoWFactory)
	locker := new(MockLocker)

	h := commands.NewApproveInvoiceCommandHandler(commands.Dependencies{
		UoWFactory: factory,
		Locker:     locker,
		Authorizer: authz,
	})
	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrUnauthorized)
	locker.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything)
	factory.AssertNotCalled(t, "Create")
}

func TestApproveInvoiceCommandHandler_Handle_ValidationError(t *testing.T) {
	h := commands.NewApproveInvoiceCommandHandler(commands.Dependencies{})
	_, err := h.Handle(t.Context(), commands.ApproveInvoiceCommand{})
	require.ErrorIs(t, err, commands.ErrApproveInvoiceCommandIsNotConstructed)
}
