package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Wire types of the API described by openapi.json.
type (
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	NewInvoice struct {
		InvoiceId     *openapi_types.UUID `json:"invoice_id,omitempty"`
		SupplierId    openapi_types.UUID  `json:"supplier_id"`
		ContractId    openapi_types.UUID  `json:"contract_id"`
		InvoiceNumber string              `json:"invoice_number"`
		InvoiceDate   openapi_types.Date  `json:"invoice_date"`
	}

	ParsedLine struct {
		LineNumber  int             `json:"line_number"`
		Description string          `json:"description"`
		Code        string          `json:"code,omitempty"`
		Unit        string          `json:"unit,omitempty"`
		Quantity    decimal.Decimal `json:"quantity"`
		Amount      decimal.Decimal `json:"amount"`
	}

	Submission struct {
		Lines []ParsedLine `json:"lines"`
	}

	Notes struct {
		Notes string `json:"notes,omitempty"`
	}

	Reason struct {
		Reason string `json:"reason"`
	}

	Response struct {
		Text string `json:"text"`
	}

	Resolution struct {
		Action string `json:"action"`
		Notes  string `json:"notes,omitempty"`
	}

	Override struct {
		TaxonomyCode      string              `json:"taxonomy_code"`
		BillingComponent  string              `json:"billing_component,omitempty"`
		Scope             string              `json:"scope"`
		SourceExceptionId *openapi_types.UUID `json:"source_exception_id,omitempty"`
		Notes             string              `json:"notes,omitempty"`
	}

	OverrideResult struct {
		Snapshot    Snapshot            `json:"snapshot"`
		RuleOutcome string              `json:"rule_outcome"`
		RuleId      *openapi_types.UUID `json:"rule_id,omitempty"`
	}

	ContractTerm struct {
		TaxonomyCode          string           `json:"taxonomy_code"`
		Rate                  decimal.Decimal  `json:"rate"`
		Unit                  string           `json:"unit,omitempty"`
		MaxUnits              *decimal.Decimal `json:"max_units,omitempty"`
		RequiresDocumentation bool             `json:"requires_documentation,omitempty"`
	}

	ContractTerms struct {
		Terms []ContractTerm `json:"terms"`
	}

	LineSnapshot struct {
		Id         openapi_types.UUID `json:"id"`
		LineNumber int                `json:"line_number"`
		Status     string             `json:"status"`
	}

	Snapshot struct {
		InvoiceId openapi_types.UUID `json:"invoice_id"`
		Status    string             `json:"status"`
		Version   int                `json:"version"`
		Lines     []LineSnapshot     `json:"lines"`
	}

	Summary struct {
		TotalBilled         string `json:"total_billed"`
		TotalPayable        string `json:"total_payable"`
		TotalInDispute      string `json:"total_in_dispute"`
		TotalDenied         string `json:"total_denied"`
		TotalLines          int    `json:"total_lines"`
		LinesValidated      int    `json:"lines_validated"`
		LinesWithExceptions int    `json:"lines_with_exceptions"`
		LinesPendingReview  int    `json:"lines_pending_review"`
		LinesDenied         int    `json:"lines_denied"`
	}

	Invoice struct {
		Id             openapi_types.UUID `json:"id"`
		SupplierId     openapi_types.UUID `json:"supplier_id"`
		ContractId     openapi_types.UUID `json:"contract_id"`
		InvoiceNumber  string             `json:"invoice_number"`
		InvoiceDate    openapi_types.Date `json:"invoice_date"`
		Status         string             `json:"status"`
		CurrentVersion int                `json:"current_version"`
		SubmittedAt    *time.Time         `json:"submitted_at,omitempty"`
		Notes          string             `json:"notes,omitempty"`
		CreatedAt      time.Time          `json:"created_at"`
		UpdatedAt      time.Time          `json:"updated_at"`
		Summary        Summary            `json:"summary"`
	}

	InvoiceListItem struct {
		Id             openapi_types.UUID `json:"id"`
		SupplierId     openapi_types.UUID `json:"supplier_id"`
		InvoiceNumber  string             `json:"invoice_number"`
		Status         string             `json:"status"`
		CurrentVersion int                `json:"current_version"`
		UpdatedAt      time.Time          `json:"updated_at"`
	}

	LineItem struct {
		Id               openapi_types.UUID  `json:"id"`
		Version          int                 `json:"version"`
		LineNumber       int                 `json:"line_number"`
		Description      string              `json:"description"`
		Code             string              `json:"code,omitempty"`
		Unit             string              `json:"unit,omitempty"`
		Quantity         string              `json:"quantity"`
		Amount           string              `json:"amount"`
		ExpectedAmount   *string             `json:"expected_amount,omitempty"`
		TaxonomyCode     string              `json:"taxonomy_code,omitempty"`
		BillingComponent string              `json:"billing_component,omitempty"`
		Confidence       string              `json:"confidence,omitempty"`
		MappingRuleId    *openapi_types.UUID `json:"mapping_rule_id,omitempty"`
		Status           string              `json:"status"`
		PayableAmount    string              `json:"payable_amount"`
		InDispute        bool                `json:"in_dispute"`
	}

	Exception struct {
		Id               openapi_types.UUID `json:"id"`
		LineItemId       openapi_types.UUID `json:"line_item_id"`
		ValidationType   string             `json:"validation_type"`
		Status           string             `json:"status"`
		Severity         string             `json:"severity"`
		RequiredAction   string             `json:"required_action"`
		Message          string             `json:"message"`
		SupplierResponse string             `json:"supplier_response,omitempty"`
		ResolutionAction string             `json:"resolution_action,omitempty"`
		ResolutionNotes  string             `json:"resolution_notes,omitempty"`
		ResolvedBy       string             `json:"resolved_by,omitempty"`
		ResolvedAt       *time.Time         `json:"resolved_at,omitempty"`
		CreatedAt        time.Time          `json:"created_at"`
	}

	AuditEvent struct {
		Id         openapi_types.UUID `json:"id"`
		EntityType string             `json:"entity_type"`
		EntityId   openapi_types.UUID `json:"entity_id"`
		EventType  string             `json:"event_type"`
		ActorRole  string             `json:"actor_role"`
		ActorId    string             `json:"actor_id"`
		FromState  string             `json:"from_state,omitempty"`
		ToState    string             `json:"to_state,omitempty"`
		Reason     string             `json:"reason,omitempty"`
		Payload    map[string]any     `json:"payload,omitempty"`
		OccurredAt time.Time          `json:"occurred_at"`
	}

	TaxonomyEntry struct {
		Code             string `json:"code"`
		Domain           string `json:"domain"`
		ServiceItem      string `json:"service_item"`
		BillingComponent string `json:"billing_component"`
		Label            string `json:"label"`
	}

	ListInvoicesParams struct {
		Status     *string             `form:"status,omitempty" json:"status,omitempty"`
		SupplierId *openapi_types.UUID `form:"supplier_id,omitempty" json:"supplier_id,omitempty"`
	}

	ListLinesParams struct {
		Version *int `form:"version,omitempty" json:"version,omitempty"`
	}
)

// ServerInterface is implemented by Server. Paths are relative to /api/v1.
type ServerInterface interface {
	// (GET /invoices)
	ListInvoices(ctx echo.Context, params ListInvoicesParams) error
	// (POST /invoices)
	CreateInvoice(ctx echo.Context) error
	// (GET /invoices/{id})
	GetInvoice(ctx echo.Context, id openapi_types.UUID) error
	// (GET /invoices/{id}/lines)
	ListLines(ctx echo.Context, id openapi_types.UUID, params ListLinesParams) error
	// (GET /invoices/{id}/audit)
	ListAuditEvents(ctx echo.Context, id openapi_types.UUID) error
	// (POST /invoices/{id}/submit)
	SubmitInvoice(ctx echo.Context, id openapi_types.UUID) error
	// (POST /invoices/{id}/validate)
	RunValidation(ctx echo.Context, id openapi_types.UUID) error
	// (POST /invoices/{id}/review)
	OpenForReview(ctx echo.Context, id openapi_types.UUID) error
	// (POST /invoices/{id}/approve)
	ApproveInvoice(ctx echo.Context, id openapi_types.UUID) error
	// (POST /invoices/{id}/request-changes)
	RequestChanges(ctx echo.Context, id openapi_types.UUID) error
	// (POST /invoices/{id}/dispute)
	DisputeInvoice(ctx echo.Context, id openapi_types.UUID) error
	// (POST /invoices/{id}/export)
	ExportInvoice(ctx echo.Context, id openapi_types.UUID) error
	// (POST /invoices/{id}/withdraw)
	WithdrawInvoice(ctx echo.Context, id openapi_types.UUID) error
	// (GET /lines/{id}/exceptions)
	ListExceptions(ctx echo.Context, id openapi_types.UUID) error
	// (POST /lines/{id}/override)
	OverrideMapping(ctx echo.Context, id openapi_types.UUID) error
	// (POST /exceptions/{id}/respond)
	RespondToException(ctx echo.Context, id openapi_types.UUID) error
	// (POST /exceptions/{id}/resolve)
	ResolveException(ctx echo.Context, id openapi_types.UUID) error
	// (PUT /contracts/{id}/terms)
	SetContractTerms(ctx echo.Context, id openapi_types.UUID) error
	// (GET /taxonomy)
	ListTaxonomy(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds every API route to router under baseURL.
func RegisterHandlers(router EchoRouter, si ServerInterface, baseURL string) {
	w := ServerInterfaceWrapper{Handler: si}

	router.GET(baseURL+"/invoices", w.ListInvoices)
	router.POST(baseURL+"/invoices", w.CreateInvoice)
	router.GET(baseURL+"/invoices/:id", w.withID(si.GetInvoice))
	router.GET(baseURL+"/invoices/:id/lines", w.ListLines)
	router.GET(baseURL+"/invoices/:id/audit", w.withID(si.ListAuditEvents))
	router.POST(baseURL+"/invoices/:id/submit", w.withID(si.SubmitInvoice))
	router.POST(baseURL+"/invoices/:id/validate", w.withID(si.RunValidation))
	router.POST(baseURL+"/invoices/:id/review", w.withID(si.OpenForReview))
	router.POST(baseURL+"/invoices/:id/approve", w.withID(si.ApproveInvoice))
	router.POST(baseURL+"/invoices/:id/request-changes", w.withID(si.RequestChanges))
	router.POST(baseURL+"/invoices/:id/dispute", w.withID(si.DisputeInvoice))
	router.POST(baseURL+"/invoices/:id/export", w.withID(si.ExportInvoice))
	router.POST(baseURL+"/invoices/:id/withdraw", w.withID(si.WithdrawInvoice))
	router.GET(baseURL+"/lines/:id/exceptions", w.withID(si.ListExceptions))
	router.POST(baseURL+"/lines/:id/override", w.withID(si.OverrideMapping))
	router.POST(baseURL+"/exceptions/:id/respond", w.withID(si.RespondToException))
	router.POST(baseURL+"/exceptions/:id/resolve", w.withID(si.ResolveException))
	router.PUT(baseURL+"/contracts/:id/terms", w.withID(si.SetContractTerms))
	router.GET(baseURL+"/taxonomy", w.ListTaxonomy)
}

func (w *ServerInterfaceWrapper) withID(h func(echo.Context, openapi_types.UUID) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := bindID(ctx)
		if err != nil {
			return err
		}
		return h(ctx, id)
	}
}

func (w *ServerInterfaceWrapper) ListInvoices(ctx echo.Context) error {
	var params ListInvoicesParams

	err := runtime.BindQueryParameter("form", true, false, "status", ctx.QueryParams(), &params.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter status: %s", err))
	}
	err = runtime.BindQueryParameter("form", true, false, "supplier_id", ctx.QueryParams(), &params.SupplierId)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter supplier_id: %s", err))
	}

	return w.Handler.ListInvoices(ctx, params)
}

func (w *ServerInterfaceWrapper) CreateInvoice(ctx echo.Context) error {
	return w.Handler.CreateInvoice(ctx)
}

func (w *ServerInterfaceWrapper) ListLines(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}

	var params ListLinesParams
	err = runtime.BindQueryParameter("form", true, false, "version", ctx.QueryParams(), &params.Version)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter version: %s", err))
	}

	return w.Handler.ListLines(ctx, id, params)
}

func (w *ServerInterfaceWrapper) ListTaxonomy(ctx echo.Context) error {
	return w.Handler.ListTaxonomy(ctx)
}

func bindID(ctx echo.Context) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}
	return id, nil
}
