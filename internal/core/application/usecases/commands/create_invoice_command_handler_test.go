package commands_test

import (
	"testing"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/commands"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoiceCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	supplierID := kernel.NewUUID()
	actor := supplierFor(t, supplierID)
	cmd, err := commands.NewCreateInvoiceCommand(actor, kernel.NewUUID(), supplierID, kernel.NewUUID(), " INV-1001 ", t0)
	require.NoError(t, err)

	repo := new(MockInvoiceRepository)
	sink := new(MockAuditSink)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)
	authz := new(MockAuthorizer)

	mock.InOrder(
		authz.On("Authorize", ctx, actor, ports.ActionCreateInvoice).Return(nil).Once(),
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("InvoiceRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil).Once(),
		uow.On("AuditSink").Return(sink).Once(),
		sink.On("Append", ctx, eventOfType(audit.EventInvoiceCreated)).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	h := commands.NewCreateInvoiceCommandHandler(commands.Dependencies{
		UoWFactory: factory,
		Authorizer: authz,
		Clock:      fixedClock,
	})
	snapshot, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, snapshot.InvoiceID.IsEqual(cmd.InvoiceID()))
	assert.Equal(t, invoice.Draft, snapshot.Status)
	assert.Equal(t, 1, snapshot.Version)
	assert.Empty(t, snapshot.Lines)
	assert.Equal(t, "INV-1001", cmd.InvoiceNumber())
	repo.AssertExpectations(t)
	sink.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCreateInvoiceCommandHandler_Handle_OtherSupplier(t *testing.T) {
	ctx := t.Context()
	actor := supplierFor(t, kernel.NewUUID())
	cmd, err := commands.NewCreateInvoiceCommand(actor, kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), "INV-1", t0)
	require.NoError(t, err)

	authz := new(MockAuthorizer)
	authz.On("Authorize", ctx, actor, ports.ActionCreateInvoice).Return(nil).Once()
	factory := new(MockUoWFactory)

	h := commands.NewCreateInvoiceCommandHandler(commands.Dependencies{UoWFactory: factory, Authorizer: authz})
	_, err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrUnauthorized)
	factory.AssertNotCalled(t, "Create")
}

func TestNewCreateInvoiceCommand_InvalidInput(t *testing.T) {
	actor := carrier(t)

	_, err := commands.NewCreateInvoiceCommand(actor, kernel.UUID{}, kernel.NewUUID(), kernel.NewUUID(), "  ", t0)

	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}
