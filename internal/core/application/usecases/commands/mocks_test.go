package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/commands"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

type MockInvoiceRepository struct{ mock.Mock }

func (m *MockInvoiceRepository) Add(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}
func (m *MockInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}
func (m *MockInvoiceRepository) Get(ctx context.Context, id kernel.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}
func (m *MockInvoiceRepository) InvoiceIDByLineItem(ctx context.Context, id kernel.UUID) (kernel.UUID, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(kernel.UUID), args.Error(1)
}
func (m *MockInvoiceRepository) InvoiceIDByException(ctx context.Context, id kernel.UUID) (kernel.UUID, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(kernel.UUID), args.Error(1)
}
func (m *MockInvoiceRepository) ListIDsByStatus(ctx context.Context, statuses ...invoice.Status) ([]kernel.UUID, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockMappingRuleRepository struct{ mock.Mock }

func (m *MockMappingRuleRepository) Add(ctx context.Context, rule *mapping.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}
func (m *MockMappingRuleRepository) Update(ctx context.Context, rule *mapping.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}
func (m *MockMappingRuleRepository) FindActive(ctx context.Context, key mapping.Key) (*mapping.Rule, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mapping.Rule), args.Error(1)
}
func (m *MockMappingRuleRepository) ListCandidates(ctx context.Context, supplierID kernel.UUID) ([]*mapping.Rule, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).([]*mapping.Rule), args.Error(1)
}

type MockContractTermsRepository struct{ mock.Mock }

func (m *MockContractTermsRepository) Terms(
	ctx context.Context,
	contractID kernel.UUID,
) (validation.RateCard, validation.GuidelineSet, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(validation.RateCard), args.Get(1).(validation.GuidelineSet), args.Error(2)
}
func (m *MockContractTermsRepository) ReplaceTerms(
	ctx context.Context,
	contractID kernel.UUID,
	terms []validation.ContractTerm,
) error {
	args := m.Called(ctx, contractID, terms)
	return args.Error(0)
}

type MockAuditSink struct{ mock.Mock }

func (m *MockAuditSink) Append(ctx context.Context, event audit.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockUoW) InvoiceRepository() ports.InvoiceRepository {
	args := m.Called()
	return args.Get(0).(ports.InvoiceRepository)
}
func (m *MockUoW) MappingRuleRepository() ports.MappingRuleRepository {
	args := m.Called()
	return args.Get(0).(ports.MappingRuleRepository)
}
func (m *MockUoW) ContractTermsRepository() ports.ContractTermsRepository {
	args := m.Called()
	return args.Get(0).(ports.ContractTermsRepository)
}
func (m *MockUoW) AuditSink() ports.AuditSink {
	args := m.Called()
	return args.Get(0).(ports.AuditSink)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockContractUoWFactory struct{ mock.Mock }

func (m *MockContractUoWFactory) Create() commands.ContractUoW {
	args := m.Called()
	return args.Get(0).(commands.ContractUoW)
}

type MockLocker struct {
	mock.Mock
	released int
}

func (m *MockLocker) Lock(ctx context.Context, invoiceID kernel.UUID) (func(), error) {
	args := m.Called(ctx, invoiceID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() { m.released++ }, nil
}

type MockAuthorizer struct{ mock.Mock }

func (m *MockAuthorizer) Authorize(ctx context.Context, actor kernel.Actor, action ports.Action) error {
	args := m.Called(ctx, actor, action)
	return args.Error(0)
}

type MockExportSink struct{ mock.Mock }

func (m *MockExportSink) Write(ctx context.Context, export ports.PaymentExport) (string, error) {
	args := m.Called(ctx, export)
	return args.String(0), args.Error(1)
}

type MockTaxonomyCatalog struct{ mock.Mock }

func (m *MockTaxonomyCatalog) Lookup(ctx context.Context, code string) (ports.TaxonomyEntry, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(ports.TaxonomyEntry), args.Error(1)
}
func (m *MockTaxonomyCatalog) Entries(ctx context.Context) ([]ports.TaxonomyEntry, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ports.TaxonomyEntry), args.Error(1)
}

type MockEventRecorder struct{ mock.Mock }

func (m *MockEventRecorder) InvoiceTransitioned(from, to string) { m.Called(from, to) }
func (m *MockEventRecorder) ExceptionsRaised(validationType string, n int) {
	m.Called(validationType, n)
}
func (m *MockEventRecorder) CommandHandled(command string, err error, elapsed time.Duration) {
	m.Called(command, err, elapsed)
}
func (m *MockEventRecorder) InvoiceExported() { m.Called() }

func fixedClock() time.Time { return t0 }

func carrier(t *testing.T) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.RoleCarrier, "reviewer-1")
	require.NoError(t, err)
	return a
}

func supplierFor(t *testing.T, supplierID kernel.UUID) kernel.Actor {
	t.Helper()
	a, err := kernel.NewSupplierActor("supplier-user", supplierID)
	require.NoError(t, err)
	return a
}

func parsedLine(n int, description, amount string) invoice.ParsedLine {
	return invoice.ParsedLine{
		LineNumber:     n,
		RawDescription: description,
		Quantity:       decimal.NewFromInt(1),
		RawAmount:      decimal.RequireFromString(amount),
	}
}

// pendingReview returns an invoice in PENDING_CARRIER_REVIEW whose first line
// carries one open, non-blocking RATE exception. Pending events are cleared.
func pendingReview(t *testing.T) *invoice.Invoice {
	t.Helper()
	supplierID := kernel.NewUUID()
	supplier := supplierFor(t, supplierID)
	inv, err := invoice.NewInvoice(kernel.NewUUID(), supplierID, kernel.NewUUID(), "INV-7", t0, supplier, t0)
	require.NoError(t, err)
	require.NoError(t, inv.Submit(supplier, []invoice.ParsedLine{
		parsedLine(1, "IME physician exam", "450.00"),
		parsedLine(2, "Records review", "200.00"),
	}, t0))
	_, err = inv.BeginValidation(kernel.SystemActor(), t0)
	require.NoError(t, err)

	first := inv.CurrentLines()[0]
	_, err = inv.RaiseException(first.ID(), validation.Result{
		Type:           validation.TypeRate,
		Status:         validation.StatusFail,
		Severity:       validation.SeverityWarning,
		RequiredAction: validation.RequiredActionNone,
		Message:        "rate variance within review threshold",
	}, t0)
	require.NoError(t, err)
	require.NoError(t, inv.SettleValidation(kernel.SystemActor(), t0))
	require.Equal(t, invoice.PendingCarrierReview, inv.Status())

	inv.ClearPendingEvents()
	return inv
}

// approved returns pendingReview's invoice after approval, events cleared.
func approved(t *testing.T) *invoice.Invoice {
	t.Helper()
	inv := pendingReview(t)
	_, err := inv.Approve(carrier(t), "ok", t0)
	require.NoError(t, err)
	inv.ClearPendingEvents()
	return inv
}
