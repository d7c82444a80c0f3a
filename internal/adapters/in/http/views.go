package http

import (
	"github.com/mzemanski-eng/claims-ebilling/internal/core/application/usecases/queries"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Money leaves the API as a string with two decimals.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toKernel(id openapi_types.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

func toOpenAPI(id kernel.UUID) openapi_types.UUID {
	return id.Bytes()
}

func toSnapshot(s invoice.Snapshot) Snapshot {
	lines := make([]LineSnapshot, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = LineSnapshot{
			Id:         toOpenAPI(l.ID),
			LineNumber: l.LineNumber,
			Status:     l.Status.String(),
		}
	}

	return Snapshot{
		InvoiceId: toOpenAPI(s.InvoiceID),
		Status:    s.Status.String(),
		Version:   s.Version,
		Lines:     lines,
	}
}

func toSummary(s invoice.Summary) Summary {
	return Summary{
		TotalBilled:         money(s.TotalBilled),
		TotalPayable:        money(s.TotalPayable),
		TotalInDispute:      money(s.TotalInDispute),
		TotalDenied:         money(s.TotalDenied),
		TotalLines:          s.TotalLines,
		LinesValidated:      s.LinesValidated,
		LinesWithExceptions: s.LinesWithExceptions,
		LinesPendingReview:  s.LinesPendingReview,
		LinesDenied:         s.LinesDenied,
	}
}

func toInvoice(v queries.GetInvoiceQueryResponse) Invoice {
	return Invoice{
		Id:             toOpenAPI(v.ID),
		SupplierId:     toOpenAPI(v.SupplierID),
		ContractId:     toOpenAPI(v.ContractID),
		InvoiceNumber:  v.InvoiceNumber,
		InvoiceDate:    openapi_types.Date{Time: v.InvoiceDate},
		Status:         v.Status.String(),
		CurrentVersion: v.CurrentVersion,
		SubmittedAt:    v.SubmittedAt,
		Notes:          v.Notes,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
		Summary:        toSummary(v.Summary),
	}
}

func toInvoiceListItem(v queries.InvoiceListItem) InvoiceListItem {
	return InvoiceListItem{
		Id:             toOpenAPI(v.ID),
		SupplierId:     toOpenAPI(v.SupplierID),
		InvoiceNumber:  v.InvoiceNumber,
		Status:         v.Status.String(),
		CurrentVersion: v.CurrentVersion,
		UpdatedAt:      v.UpdatedAt,
	}
}

func toLineItem(v queries.LineItemView) LineItem {
	item := LineItem{
		Id:               toOpenAPI(v.ID),
		Version:          v.Version,
		LineNumber:       v.LineNumber,
		Description:      v.RawDescription,
		Code:             v.RawCode,
		Unit:             v.Unit,
		Quantity:         v.Quantity.String(),
		Amount:           money(v.RawAmount),
		TaxonomyCode:     v.TaxonomyCode,
		BillingComponent: v.BillingComponent,
		Confidence:       string(v.Confidence),
		Status:           v.Status.String(),
		PayableAmount:    money(v.PayableAmount),
		InDispute:        v.InDispute,
	}
	if v.ExpectedAmount.Valid {
		expected := money(v.ExpectedAmount.Decimal)
		item.ExpectedAmount = &expected
	}
	if v.MappingRuleID != nil {
		ruleID := toOpenAPI(*v.MappingRuleID)
		item.MappingRuleId = &ruleID
	}
	return item
}

func toException(v queries.ExceptionView) Exception {
	return Exception{
		Id:               toOpenAPI(v.ID),
		LineItemId:       toOpenAPI(v.LineItemID),
		ValidationType:   string(v.ValidationType),
		Status:           v.Status.String(),
		Severity:         string(v.Severity),
		RequiredAction:   string(v.RequiredAction),
		Message:          v.Message,
		SupplierResponse: v.SupplierResponse,
		ResolutionAction: v.ResolutionAction.String(),
		ResolutionNotes:  v.ResolutionNotes,
		ResolvedBy:       v.ResolvedBy,
		ResolvedAt:       v.ResolvedAt,
		CreatedAt:        v.CreatedAt,
	}
}

func toAuditEvent(v queries.AuditEventView) AuditEvent {
	return AuditEvent{
		Id:         toOpenAPI(v.ID),
		EntityType: string(v.EntityType),
		EntityId:   toOpenAPI(v.EntityID),
		EventType:  string(v.EventType),
		ActorRole:  v.ActorRole.String(),
		ActorId:    v.ActorID,
		FromState:  v.FromState,
		ToState:    v.ToState,
		Reason:     v.Reason,
		Payload:    v.Payload,
		OccurredAt: v.OccurredAt,
	}
}
