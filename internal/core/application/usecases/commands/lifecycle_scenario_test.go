package commands_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/engine"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/locking"
	postgres_adapter "github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/postgres"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/postgres/auditrepo"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/postgres/invoicerepo"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/rbac"
	"github.com/mzemanski-eng/claims-ebilling/internal/adapters/out/taxonomy"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/commands"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type uowFactory struct{ inner *postgres_adapter.GormUnitOfWorkFactory }

func (f uowFactory) Create() commands.UoW { return f.inner.Create() }

type contractUoWFactory struct{ inner *postgres_adapter.GormUnitOfWorkFactory }

func (f contractUoWFactory) Create() commands.ContractUoW { return f.inner.Create() }

// countingEngine counts Classify calls per raw description.
type countingEngine struct {
	ports.ValidationEngine
	mu       sync.Mutex
	classify map[string]int
}

func (e *countingEngine) Classify(ctx context.Context, line validation.LineInput) (validation.MappingSuggestion, error) {
	e.mu.Lock()
	e.classify[line.RawDescription]++
	e.mu.Unlock()
	return e.ValidationEngine.Classify(ctx, line)
}

func (e *countingEngine) calls(description string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classify[description]
}

// countingSink accepts every export and counts the writes.
type countingSink struct{ writes int }

func (s *countingSink) Write(_ context.Context, export ports.PaymentExport) (string, error) {
	s.writes++
	return "memory://" + export.InvoiceID.String(), nil
}

// LifecycleTestSuite drives whole invoices through the command handlers against
// SQLite with the real engine, catalog, lock and policy.
type LifecycleTestSuite struct {
	suite.Suite
	ctx        context.Context
	db         *gorm.DB
	deps       commands.Dependencies
	engine     *countingEngine
	sink       *countingSink
	supplierID kernel.UUID
	contractID kernel.UUID
}

func (suite *LifecycleTestSuite) SetupTest() {
	suite.ctx = context.Background()

	db, err := gorm.Open(sqlite.Open(filepath.Join(suite.T().TempDir(), "lifecycle.db")), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.db = db

	enforcer, err := rbac.NewEnforcer()
	suite.Require().NoError(err)
	ruleEngine, err := engine.NewRuleEngine(taxonomy.NewSeededCatalog(), nil)
	suite.Require().NoError(err)

	factory := postgres_adapter.NewGormUnitOfWorkFactory(db)
	suite.engine = &countingEngine{ValidationEngine: ruleEngine, classify: make(map[string]int)}
	suite.sink = &countingSink{}
	suite.deps = commands.Dependencies{
		UoWFactory: uowFactory{inner: factory},
		Locker:     locking.NewKeyedMutex(),
		Authorizer: rbac.NewCasbinAuthorizer(enforcer, nil),
		Clock:      fixedClock,
	}
	suite.supplierID = kernel.NewUUID()
	suite.contractID = kernel.NewUUID()

	admin, err := kernel.NewActor(kernel.RoleAdmin, "admin-1")
	suite.Require().NoError(err)
	setTerms, err := commands.NewSetContractTermsCommand(admin, suite.contractID, []validation.ContractTerm{
		{TaxonomyCode: "IME.PHY_EXAM.PROF_FEE", Rate: decimal.RequireFromString("600.00"), Unit: "EACH"},
		{TaxonomyCode: "IME.PHY_EXAM.MILEAGE", Rate: decimal.RequireFromString("0.655"), Unit: "MILE"},
		{TaxonomyCode: "IME.RECORDS_REVIEW.PROF_FEE", Rate: decimal.RequireFromString("350.00"), Unit: "EACH"},
	})
	suite.Require().NoError(err)
	handler := commands.NewSetContractTermsCommandHandler(contractUoWFactory{inner: factory}, suite.deps.Authorizer, fixedClock)
	suite.Require().NoError(handler.Handle(suite.ctx, setTerms))
}

func (suite *LifecycleTestSuite) supplier() kernel.Actor {
	return supplierFor(suite.T(), suite.supplierID)
}

func (suite *LifecycleTestSuite) admin() kernel.Actor {
	a, err := kernel.NewActor(kernel.RoleAdmin, "admin-1")
	suite.Require().NoError(err)
	return a
}

func codedLine(n int, code, description, quantity, amount string) invoice.ParsedLine {
	return invoice.ParsedLine{
		LineNumber:     n,
		RawDescription: description,
		RawCode:        code,
		Quantity:       decimal.RequireFromString(quantity),
		RawAmount:      decimal.RequireFromString(amount),
	}
}

// submitAndValidate creates, submits and validates an invoice with lines.
func (suite *LifecycleTestSuite) submitAndValidate(number string, lines ...invoice.ParsedLine) invoice.Snapshot {
	invoiceID := kernel.NewUUID()

	create, err := commands.NewCreateInvoiceCommand(suite.supplier(), invoiceID, suite.supplierID, suite.contractID, number, t0)
	suite.Require().NoError(err)
	_, err = commands.NewCreateInvoiceCommandHandler(suite.deps).Handle(suite.ctx, create)
	suite.Require().NoError(err)

	submit, err := commands.NewSubmitInvoiceCommand(suite.supplier(), invoiceID, lines)
	suite.Require().NoError(err)
	snapshot, err := commands.NewSubmitInvoiceCommandHandler(suite.deps).Handle(suite.ctx, submit)
	suite.Require().NoError(err)
	suite.Require().Equal(invoice.Submitted, snapshot.Status)

	run, err := commands.NewRunValidationCommand(kernel.SystemActor(), invoiceID)
	suite.Require().NoError(err)
	snapshot, err = commands.NewRunValidationCommandHandler(suite.deps, suite.engine).Handle(suite.ctx, run)
	suite.Require().NoError(err)
	return snapshot
}

func (suite *LifecycleTestSuite) load(id kernel.UUID) *invoice.Invoice {
	inv, err := suite.deps.UoWFactory.Create().InvoiceRepository().Get(suite.ctx, id)
	suite.Require().NoError(err)
	return inv
}

func (suite *LifecycleTestSuite) exceptionsOf(inv *invoice.Invoice) []*invoice.Exception {
	var out []*invoice.Exception
	for _, line := range inv.CurrentLines() {
		out = append(out, line.Exceptions()...)
	}
	return out
}

func (suite *LifecycleTestSuite) approve(id kernel.UUID) invoice.Snapshot {
	cmd, err := commands.NewApproveInvoiceCommand(carrier(suite.T()), id, "approved after review")
	suite.Require().NoError(err)
	snapshot, err := commands.NewApproveInvoiceCommandHandler(suite.deps).Handle(suite.ctx, cmd)
	suite.Require().NoError(err)
	return snapshot
}

func (suite *LifecycleTestSuite) auditCount() int64 {
	var n int64
	suite.Require().NoError(suite.db.Model(&auditrepo.AuditEventDTO{}).Count(&n).Error)
	return n
}

func (suite *LifecycleTestSuite) TestRateFailure_RespondThenApprove() {
	snapshot := suite.submitAndValidate("INV-100",
		codedLine(1, "IME.PHY_EXAM.MILEAGE", "Mileage to exam site", "42", "27.51"),
		codedLine(2, "IME.PHY_EXAM.PROF_FEE", "IME physician exam", "1", "750.00"),
		codedLine(3, "IME.RECORDS_REVIEW.PROF_FEE", "Records review no exam", "1", "350.00"),
	)
	suite.Require().Equal(invoice.ReviewRequired, snapshot.Status)

	inv := suite.load(snapshot.InvoiceID)
	excs := suite.exceptionsOf(inv)
	suite.Require().Len(excs, 1)
	rateExc := excs[0]
	suite.Equal(validation.TypeRate, rateExc.ValidationType())
	suite.Equal(validation.RequiredActionAcceptReduction, rateExc.RequiredAction())
	line, err := inv.Line(rateExc.LineItemID())
	suite.Require().NoError(err)
	suite.Equal(2, line.LineNumber())

	respond, err := commands.NewRespondToExceptionCommand(suite.supplier(), rateExc.ID(), "clerical error")
	suite.Require().NoError(err)
	snapshot, err = commands.NewRespondToExceptionCommandHandler(suite.deps, suite.engine).Handle(suite.ctx, respond)
	suite.Require().NoError(err)
	suite.Equal(invoice.PendingCarrierReview, snapshot.Status)

	excs = suite.exceptionsOf(suite.load(snapshot.InvoiceID))
	suite.Require().Len(excs, 1)
	suite.Equal(invoice.ExceptionSupplierResponded, excs[0].Status())
	suite.Equal("clerical error", excs[0].SupplierResponse())

	snapshot = suite.approve(snapshot.InvoiceID)
	suite.Equal(invoice.Approved, snapshot.Status)

	excs = suite.exceptionsOf(suite.load(snapshot.InvoiceID))
	suite.Require().Len(excs, 1)
	suite.Equal(invoice.ExceptionWaived, excs[0].Status())
	suite.Equal(invoice.ResolutionWaived, excs[0].ResolutionAction())
}

func (suite *LifecycleTestSuite) TestResubmitWhilePendingCarrierReview_StaleVersion() {
	snapshot := suite.submitAndValidate("INV-101",
		codedLine(1, "IME.PHY_EXAM.PROF_FEE", "IME physician exam", "1", "600.00"),
	)
	suite.Require().Equal(invoice.PendingCarrierReview, snapshot.Status)

	submit, err := commands.NewSubmitInvoiceCommand(suite.supplier(), snapshot.InvoiceID, []invoice.ParsedLine{
		codedLine(1, "IME.PHY_EXAM.PROF_FEE", "IME physician exam", "1", "550.00"),
	})
	suite.Require().NoError(err)
	_, err = commands.NewSubmitInvoiceCommandHandler(suite.deps).Handle(suite.ctx, submit)

	suite.Require().ErrorIs(err, errs.ErrStaleVersion)
	inv := suite.load(snapshot.InvoiceID)
	suite.Equal(invoice.PendingCarrierReview, inv.Status())
	suite.Equal(1, inv.CurrentVersion())
}

func (suite *LifecycleTestSuite) TestExportTwice_AlreadyExported() {
	snapshot := suite.submitAndValidate("INV-102",
		codedLine(1, "IME.PHY_EXAM.PROF_FEE", "IME physician exam", "1", "600.00"),
	)
	suite.approve(snapshot.InvoiceID)

	export, err := commands.NewExportInvoiceCommand(carrier(suite.T()), snapshot.InvoiceID)
	suite.Require().NoError(err)
	handler := commands.NewExportInvoiceCommandHandler(suite.deps, suite.sink)

	snapshot, err = handler.Handle(suite.ctx, export)
	suite.Require().NoError(err)
	suite.Equal(invoice.Exported, snapshot.Status)
	suite.Equal(1, suite.sink.writes)
	audited := suite.auditCount()

	_, err = handler.Handle(suite.ctx, export)

	suite.Require().ErrorIs(err, errs.ErrAlreadyExported)
	suite.Equal(1, suite.sink.writes)
	suite.Equal(audited, suite.auditCount())
	suite.Equal(invoice.Exported, suite.load(snapshot.InvoiceID).Status())
}

func (suite *LifecycleTestSuite) TestApprove_WaivesEveryAnsweredException() {
	snapshot := suite.submitAndValidate("INV-103",
		codedLine(1, "IME.PHY_EXAM.PROF_FEE", "IME physician exam", "1", "700.00"),
		codedLine(2, "IME.RECORDS_REVIEW.PROF_FEE", "Records review no exam", "1", "400.00"),
	)
	suite.Require().Equal(invoice.ReviewRequired, snapshot.Status)
	excs := suite.exceptionsOf(suite.load(snapshot.InvoiceID))
	suite.Require().Len(excs, 2)

	respond := commands.NewRespondToExceptionCommandHandler(suite.deps, suite.engine)
	for i, exc := range excs {
		cmd, err := commands.NewRespondToExceptionCommand(suite.supplier(), exc.ID(), "rate per fee schedule")
		suite.Require().NoError(err)
		snapshot, err = respond.Handle(suite.ctx, cmd)
		suite.Require().NoError(err)
		if i == 0 {
			suite.Equal(invoice.ReviewRequired, snapshot.Status)
		}
	}
	suite.Require().Equal(invoice.PendingCarrierReview, snapshot.Status)

	snapshot = suite.approve(snapshot.InvoiceID)

	suite.Equal(invoice.Approved, snapshot.Status)
	excs = suite.exceptionsOf(suite.load(snapshot.InvoiceID))
	suite.Require().Len(excs, 2)
	for _, exc := range excs {
		suite.Equal(invoice.ExceptionWaived, exc.Status())
	}
}

func (suite *LifecycleTestSuite) TestGlobalOverride_ClassifiesNextInvoiceWithoutEngine() {
	const description = "Interpreter services Spanish"

	snapshot := suite.submitAndValidate("INV-104",
		codedLine(1, "", description, "1", "120.00"),
	)
	suite.Require().Equal(invoice.ReviewRequired, snapshot.Status)
	suite.Require().Equal(1, suite.engine.calls(description))

	override, err := commands.NewOverrideMappingCommand(suite.admin(), snapshot.Lines[0].ID,
		"XDOMAIN.PASS_THROUGH.THIRD_PARTY_COST", "", mapping.ScopeGlobal, nil, "interpreter is a pass-through cost")
	suite.Require().NoError(err)
	result, err := commands.NewOverrideMappingCommandHandler(suite.deps, taxonomy.NewSeededCatalog()).Handle(suite.ctx, override)
	suite.Require().NoError(err)
	suite.Require().NotNil(result.RuleID)

	next := suite.submitAndValidate("INV-105",
		codedLine(1, "", "  interpreter   SERVICES spanish ", "1", "120.00"),
	)

	suite.Equal(1, suite.engine.calls(description))
	line := suite.load(next.InvoiceID).CurrentLines()[0]
	suite.Equal("XDOMAIN.PASS_THROUGH.THIRD_PARTY_COST", line.TaxonomyCode())
	suite.Equal(validation.ConfidenceHigh, line.MappingConfidence())
	suite.Require().NotNil(line.MappingRuleID())
	suite.Equal(*result.RuleID, *line.MappingRuleID())
}

func (suite *LifecycleTestSuite) TestLargeInvoice_SubmitValidateApprove() {
	const lineCount = 5000
	lines := make([]invoice.ParsedLine, 0, lineCount)
	for n := 1; n <= lineCount; n++ {
		lines = append(lines, codedLine(n, "IME.PHY_EXAM.PROF_FEE", fmt.Sprintf("IME physician exam %d", n), "1", "600.00"))
	}

	snapshot := suite.submitAndValidate("INV-106", lines...)

	suite.Require().Equal(invoice.PendingCarrierReview, snapshot.Status)
	suite.Len(snapshot.Lines, lineCount)
	var stored int64
	suite.Require().NoError(suite.db.Model(&invoicerepo.LineItemDTO{}).
		Where("invoice_id = ?", snapshot.InvoiceID.Bytes()).Count(&stored).Error)
	suite.Equal(int64(lineCount), stored)

	snapshot = suite.approve(snapshot.InvoiceID)

	suite.Equal(invoice.Approved, snapshot.Status)
	inv := suite.load(snapshot.InvoiceID)
	suite.Len(inv.CurrentLines(), lineCount)
	suite.True(inv.Summary().TotalPayable.Equal(decimal.RequireFromString("3000000.00")))
}

func (suite *LifecycleTestSuite) TestResolveTwice_NotOpen() {
	snapshot := suite.submitAndValidate("INV-107",
		codedLine(1, "IME.PHY_EXAM.PROF_FEE", "IME physician exam", "1", "750.00"),
	)
	suite.Require().Equal(invoice.ReviewRequired, snapshot.Status)
	excs := suite.exceptionsOf(suite.load(snapshot.InvoiceID))
	suite.Require().Len(excs, 1)

	resolve, err := commands.NewResolveExceptionCommand(carrier(suite.T()), excs[0].ID(), invoice.ResolutionHeldContractRate, "paid at contract")
	suite.Require().NoError(err)
	handler := commands.NewResolveExceptionCommandHandler(suite.deps)
	_, err = handler.Handle(suite.ctx, resolve)
	suite.Require().NoError(err)
	audited := suite.auditCount()

	_, err = handler.Handle(suite.ctx, resolve)

	suite.Require().ErrorIs(err, errs.ErrNotOpen)
	suite.NotErrorIs(err, errs.ErrInvalidTransition)
	suite.Equal(audited, suite.auditCount())
	excs = suite.exceptionsOf(suite.load(snapshot.InvoiceID))
	suite.Equal(invoice.ExceptionResolved, excs[0].Status())
}

func (suite *LifecycleTestSuite) TestSupersededVersionExceptions_StaleVersion() {
	snapshot := suite.submitAndValidate("INV-108",
		codedLine(1, "IME.PHY_EXAM.PROF_FEE", "IME physician exam", "1", "750.00"),
	)
	suite.Require().Equal(invoice.ReviewRequired, snapshot.Status)
	excs := suite.exceptionsOf(suite.load(snapshot.InvoiceID))
	suite.Require().Len(excs, 1)
	stale := excs[0]

	submit, err := commands.NewSubmitInvoiceCommand(suite.supplier(), snapshot.InvoiceID, []invoice.ParsedLine{
		codedLine(1, "IME.PHY_EXAM.PROF_FEE", "IME physician exam", "1", "720.00"),
	})
	suite.Require().NoError(err)
	_, err = commands.NewSubmitInvoiceCommandHandler(suite.deps).Handle(suite.ctx, submit)
	suite.Require().NoError(err)
	run, err := commands.NewRunValidationCommand(kernel.SystemActor(), snapshot.InvoiceID)
	suite.Require().NoError(err)
	snapshot, err = commands.NewRunValidationCommandHandler(suite.deps, suite.engine).Handle(suite.ctx, run)
	suite.Require().NoError(err)
	suite.Require().Equal(invoice.ReviewRequired, snapshot.Status)
	suite.Require().Equal(2, snapshot.Version)

	respond, err := commands.NewRespondToExceptionCommand(suite.supplier(), stale.ID(), "clerical error")
	suite.Require().NoError(err)
	_, err = commands.NewRespondToExceptionCommandHandler(suite.deps, suite.engine).Handle(suite.ctx, respond)
	suite.Require().ErrorIs(err, errs.ErrStaleVersion)

	resolve, err := commands.NewResolveExceptionCommand(carrier(suite.T()), stale.ID(), invoice.ResolutionDenied, "")
	suite.Require().NoError(err)
	_, err = commands.NewResolveExceptionCommandHandler(suite.deps).Handle(suite.ctx, resolve)
	suite.Require().ErrorIs(err, errs.ErrStaleVersion)

	inv := suite.load(snapshot.InvoiceID)
	old, _, err := inv.Exception(stale.ID())
	suite.Require().NoError(err)
	suite.Equal(invoice.ExceptionOpen, old.Status())
	suite.Empty(old.SupplierResponse())
	suite.Len(inv.LinesForVersion(1), 1)
}

func TestLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(LifecycleTestSuite))
}
