package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/commands"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/queries"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Headers identifying the caller. Authentication happens upstream; the
// service only trusts what the gateway forwards.
const (
	HeaderActorRole  = "X-Actor-Role"
	HeaderActorID    = "X-Actor-ID"
	HeaderSupplierID = "X-Supplier-ID"
)

var errMissingActor = errors.New("actor headers are missing or invalid")

var _ ServerInterface = (*Server)(nil)

// CommandHandlers groups the write side used by the API.
type CommandHandlers struct {
	CreateInvoice      commands.CreateInvoiceCommandHandler
	SubmitInvoice      commands.SubmitInvoiceCommandHandler
	RunValidation      commands.RunValidationCommandHandler
	OpenForReview      commands.OpenForReviewCommandHandler
	ApproveInvoice     commands.ApproveInvoiceCommandHandler
	RequestChanges     commands.RequestChangesCommandHandler
	DisputeInvoice     commands.DisputeInvoiceCommandHandler
	ExportInvoice      commands.ExportInvoiceCommandHandler
	WithdrawInvoice    commands.WithdrawInvoiceCommandHandler
	RespondToException commands.RespondToExceptionCommandHandler
	ResolveException   commands.ResolveExceptionCommandHandler
	OverrideMapping    commands.OverrideMappingCommandHandler
	SetContractTerms   commands.SetContractTermsCommandHandler
}

// QueryHandlers groups the read side used by the API.
type QueryHandlers struct {
	GetInvoice      queries.GetInvoiceQueryHandler
	ListInvoices    queries.ListInvoicesQueryHandler
	ListLines       queries.ListLinesQueryHandler
	ListExceptions  queries.ListExceptionsQueryHandler
	ListAuditEvents queries.ListAuditEventsQueryHandler
}

// Server implements ServerInterface on top of the application use cases.
type Server struct {
	commands CommandHandlers
	queries  QueryHandlers
	catalog  ports.TaxonomyCatalog
	log      *zap.Logger
}

func NewServer(cmds CommandHandlers, qs QueryHandlers, catalog ports.TaxonomyCatalog, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		commands: cmds,
		queries:  qs,
		catalog:  catalog,
		log:      log.Named("http"),
	}
}

// ListInvoices handles GET /api/v1/invoices. Suppliers only ever see their own.
func (s *Server) ListInvoices(ctx echo.Context, params ListInvoicesParams) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var supplierID *kernel.UUID
	if params.SupplierId != nil {
		id, err := toKernel(*params.SupplierId)
		if err != nil {
			return s.fail(ctx, err)
		}
		supplierID = &id
	}
	if own, ok := actor.SupplierID(); ok {
		supplierID = &own
	}

	var status string
	if params.Status != nil {
		status = *params.Status
	}

	query, err := queries.NewListInvoicesQuery(status, supplierID)
	if err != nil {
		return s.fail(ctx, err)
	}
	items, err := s.queries.ListInvoices.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]InvoiceListItem, len(items))
	for i, item := range items {
		response[i] = toInvoiceListItem(item)
	}
	return ctx.JSON(http.StatusOK, response)
}

// CreateInvoice handles POST /api/v1/invoices.
func (s *Server) CreateInvoice(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body NewInvoice
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}

	invoiceID := kernel.NewUUID()
	if body.InvoiceId != nil {
		if invoiceID, err = toKernel(*body.InvoiceId); err != nil {
			return s.fail(ctx, err)
		}
	}
	supplierID, err := toKernel(body.SupplierId)
	if err != nil {
		return s.fail(ctx, err)
	}
	contractID, err := toKernel(body.ContractId)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCreateInvoiceCommand(
		actor, invoiceID, supplierID, contractID, body.InvoiceNumber, body.InvoiceDate.Time,
	)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.CreateInvoice.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toSnapshot(snapshot))
}

// GetInvoice handles GET /api/v1/invoices/{id}.
func (s *Server) GetInvoice(ctx echo.Context, id openapi_types.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}

	view, err := s.visibleInvoice(ctx, actor, id)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toInvoice(view))
}

// ListLines handles GET /api/v1/invoices/{id}/lines.
func (s *Server) ListLines(ctx echo.Context, id openapi_types.UUID, params ListLinesParams) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	view, err := s.visibleInvoice(ctx, actor, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var version int
	if params.Version != nil {
		version = *params.Version
	}
	query, err := queries.NewListLinesQuery(view.ID, version)
	if err != nil {
		return s.fail(ctx, err)
	}
	lines, err := s.queries.ListLines.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]LineItem, len(lines))
	for i, line := range lines {
		response[i] = toLineItem(line)
	}
	return ctx.JSON(http.StatusOK, response)
}

// ListAuditEvents handles GET /api/v1/invoices/{id}/audit.
func (s *Server) ListAuditEvents(ctx echo.Context, id openapi_types.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return s.fail(ctx, err)
	}
	view, err := s.visibleInvoice(ctx, actor, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewListAuditEventsQuery(view.ID)
	if err != nil {
		return s.fail(ctx, err)
	}
	events, err := s.queries.ListAuditEvents.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]AuditEvent, len(events))
	for i, event := range events {
		response[i] = toAuditEvent(event)
	}
	return ctx.JSON(http.StatusOK, response)
}

// SubmitInvoice handles POST /api/v1/invoices/{id}/submit.
func (s *Server) SubmitInvoice(ctx echo.Context, id openapi_types.UUID) error {
	actor, invoiceID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body Submission
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}
	lines := make([]invoice.ParsedLine, len(body.Lines))
	for i, l := range body.Lines {
		lines[i] = invoice.ParsedLine{
			LineNumber:     l.LineNumber,
			RawDescription: l.Description,
			RawCode:        l.Code,
			Unit:           l.Unit,
			Quantity:       l.Quantity,
			RawAmount:      l.Amount,
		}
	}

	cmd, err := commands.NewSubmitInvoiceCommand(actor, invoiceID, lines)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.SubmitInvoice.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// RunValidation handles POST /api/v1/invoices/{id}/validate.
func (s *Server) RunValidation(ctx echo.Context, id openapi_types.UUID) error {
	actor, invoiceID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRunValidationCommand(actor, invoiceID)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.RunValidation.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// OpenForReview handles POST /api/v1/invoices/{id}/review.
func (s *Server) OpenForReview(ctx echo.Context, id openapi_types.UUID) error {
	actor, invoiceID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewOpenForReviewCommand(actor, invoiceID)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.OpenForReview.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// ApproveInvoice handles POST /api/v1/invoices/{id}/approve.
func (s *Server) ApproveInvoice(ctx echo.Context, id openapi_types.UUID) error {
	actor, invoiceID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body Notes
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}
	cmd, err := commands.NewApproveInvoiceCommand(actor, invoiceID, body.Notes)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.ApproveInvoice.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// RequestChanges handles POST /api/v1/invoices/{id}/request-changes.
func (s *Server) RequestChanges(ctx echo.Context, id openapi_types.UUID) error {
	actor, invoiceID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body Notes
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}
	cmd, err := commands.NewRequestChangesCommand(actor, invoiceID, body.Notes)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.RequestChanges.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// DisputeInvoice handles POST /api/v1/invoices/{id}/dispute.
func (s *Server) DisputeInvoice(ctx echo.Context, id openapi_types.UUID) error {
	actor, invoiceID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body Reason
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}
	cmd, err := commands.NewDisputeInvoiceCommand(actor, invoiceID, body.Reason)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.DisputeInvoice.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// ExportInvoice handles POST /api/v1/invoices/{id}/export.
func (s *Server) ExportInvoice(ctx echo.Context, id openapi_types.UUID) error {
	actor, invoiceID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewExportInvoiceCommand(actor, invoiceID)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.ExportInvoice.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// WithdrawInvoice handles POST /api/v1/invoices/{id}/withdraw.
func (s *Server) WithdrawInvoice(ctx echo.Context, id openapi_types.UUID) error {
	actor, invoiceID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body Notes
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}
	cmd, err := commands.NewWithdrawInvoiceCommand(actor, invoiceID, body.Notes)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.WithdrawInvoice.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// ListExceptions handles GET /api/v1/lines/{id}/exceptions.
func (s *Server) ListExceptions(ctx echo.Context, id openapi_types.UUID) error {
	actor, lineID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewListExceptionsQuery(lineID)
	if err != nil {
		return s.fail(ctx, err)
	}
	if own, ok := actor.SupplierID(); ok {
		query = query.ForSupplier(own)
	}
	exceptions, err := s.queries.ListExceptions.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]Exception, len(exceptions))
	for i, e := range exceptions {
		response[i] = toException(e)
	}
	return ctx.JSON(http.StatusOK, response)
}

// OverrideMapping handles POST /api/v1/lines/{id}/override.
func (s *Server) OverrideMapping(ctx echo.Context, id openapi_types.UUID) error {
	actor, lineID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body Override
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}
	scope, err := mapping.ParseScope(body.Scope)
	if err != nil {
		return s.fail(ctx, err)
	}
	var sourceExceptionID *kernel.UUID
	if body.SourceExceptionId != nil {
		exceptionID, err := toKernel(*body.SourceExceptionId)
		if err != nil {
			return s.fail(ctx, err)
		}
		sourceExceptionID = &exceptionID
	}

	cmd, err := commands.NewOverrideMappingCommand(
		actor, lineID, body.TaxonomyCode, body.BillingComponent, scope, sourceExceptionID, body.Notes,
	)
	if err != nil {
		return s.fail(ctx, err)
	}
	result, err := s.commands.OverrideMapping.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := OverrideResult{
		Snapshot:    toSnapshot(result.Snapshot),
		RuleOutcome: result.Outcome.String(),
	}
	if result.RuleID != nil {
		ruleID := openapi_types.UUID(result.RuleID.Bytes())
		response.RuleId = &ruleID
	}
	return ctx.JSON(http.StatusOK, response)
}

// RespondToException handles POST /api/v1/exceptions/{id}/respond.
func (s *Server) RespondToException(ctx echo.Context, id openapi_types.UUID) error {
	actor, exceptionID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body Response
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}
	cmd, err := commands.NewRespondToExceptionCommand(actor, exceptionID, body.Text)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.RespondToException.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// ResolveException handles POST /api/v1/exceptions/{id}/resolve.
func (s *Server) ResolveException(ctx echo.Context, id openapi_types.UUID) error {
	actor, exceptionID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body Resolution
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}
	action, err := invoice.ParseResolutionAction(body.Action)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewResolveExceptionCommand(actor, exceptionID, action, body.Notes)
	if err != nil {
		return s.fail(ctx, err)
	}
	snapshot, err := s.commands.ResolveException.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toSnapshot(snapshot))
}

// SetContractTerms handles PUT /api/v1/contracts/{id}/terms.
func (s *Server) SetContractTerms(ctx echo.Context, id openapi_types.UUID) error {
	actor, contractID, err := s.target(ctx, id)
	if err != nil {
		return s.fail(ctx, err)
	}

	var body ContractTerms
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx)
	}
	terms := make([]validation.ContractTerm, len(body.Terms))
	for i, t := range body.Terms {
		terms[i] = validation.ContractTerm{
			TaxonomyCode:          strings.ToUpper(strings.TrimSpace(t.TaxonomyCode)),
			Rate:                  t.Rate,
			Unit:                  t.Unit,
			RequiresDocumentation: t.RequiresDocumentation,
		}
		if t.MaxUnits != nil {
			terms[i].MaxUnits = decimal.NewNullDecimal(*t.MaxUnits)
		}
	}

	cmd, err := commands.NewSetContractTermsCommand(actor, contractID, terms)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.commands.SetContractTerms.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ListTaxonomy handles GET /api/v1/taxonomy.
func (s *Server) ListTaxonomy(ctx echo.Context) error {
	if _, err := actorFrom(ctx); err != nil {
		return s.fail(ctx, err)
	}

	entries, err := s.catalog.Entries(ctx.Request().Context())
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]TaxonomyEntry, len(entries))
	for i, e := range entries {
		response[i] = TaxonomyEntry{
			Code:             e.Code,
			Domain:           e.Domain,
			ServiceItem:      e.ServiceItem,
			BillingComponent: e.BillingComponent,
			Label:            e.Label,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// target resolves the caller and the path identifier shared by every mutation.
func (s *Server) target(ctx echo.Context, id openapi_types.UUID) (kernel.Actor, kernel.UUID, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, err
	}
	targetID, err := toKernel(id)
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, err
	}
	return actor, targetID, nil
}

// visibleInvoice loads an invoice header. Another supplier's invoice is reported as not found.
func (s *Server) visibleInvoice(
	ctx echo.Context,
	actor kernel.Actor,
	id openapi_types.UUID,
) (queries.GetInvoiceQueryResponse, error) {
	invoiceID, err := toKernel(id)
	if err != nil {
		return queries.GetInvoiceQueryResponse{}, err
	}
	query, err := queries.NewGetInvoiceQuery(invoiceID)
	if err != nil {
		return queries.GetInvoiceQueryResponse{}, err
	}
	view, err := s.queries.GetInvoice.Handle(ctx.Request().Context(), query)
	if err != nil {
		return queries.GetInvoiceQueryResponse{}, err
	}
	if actor.Role() == kernel.RoleSupplier && !actor.ActsFor(view.SupplierID) {
		return queries.GetInvoiceQueryResponse{}, errs.NewObjectNotFoundError("invoice", invoiceID.String())
	}
	return view, nil
}

func actorFrom(ctx echo.Context) (kernel.Actor, error) {
	headers := ctx.Request().Header
	role, err := kernel.ParseRole(headers.Get(HeaderActorRole))
	if err != nil {
		return kernel.Actor{}, errMissingActor
	}

	id := headers.Get(HeaderActorID)
	if role != kernel.RoleSupplier {
		actor, err := kernel.NewActor(role, id)
		if err != nil {
			return kernel.Actor{}, errMissingActor
		}
		return actor, nil
	}

	supplierID, err := kernel.UUIDFromString(headers.Get(HeaderSupplierID))
	if err != nil {
		return kernel.Actor{}, errMissingActor
	}
	actor, err := kernel.NewSupplierActor(id, supplierID)
	if err != nil {
		return kernel.Actor{}, errMissingActor
	}
	return actor, nil
}

// fail writes err as an Error body. Unexpected errors are logged and hidden from the caller.
func (s *Server) fail(ctx echo.Context, err error) error {
	status := statusFor(err)
	message := err.Error()
	if errors.Is(err, errs.ErrForeignSupplier) {
		// Same answer as for an id that does not exist.
		message = errs.ErrObjectNotFound.Error()
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", ctx.Request().Method),
			zap.String("path", ctx.Path()),
			zap.Error(err),
		)
		message = "Internal server error"
	}

	return ctx.JSON(status, Error{
		Code:    status,
		Message: message,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errMissingActor):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForeignSupplier):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrNotOpen),
		errors.Is(err, errs.ErrAlreadyExported),
		errors.Is(err, errs.ErrStaleVersion):
		return http.StatusConflict
	case errors.Is(err, errs.ErrAuditWriteFailure):
		return http.StatusInternalServerError
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(ctx echo.Context) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: "Invalid request body",
	})
}
