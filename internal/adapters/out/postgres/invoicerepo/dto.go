// Package invoicerepo persists the invoice aggregate: the header row, every
// version of its line items and the exceptions raised on them. Rows are only
// ever inserted or updated, never deleted.
package invoicerepo

import (
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceDTO is the invoice header.
type InvoiceDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID     uuid.UUID `gorm:"type:uuid;index"`
	ContractID     uuid.UUID `gorm:"type:uuid;index"`
	InvoiceNumber  string    `gorm:"size:64"`
	InvoiceDate    time.Time
	Status         string `gorm:"size:32;index"`
	CurrentVersion int
	SubmittedAt    *time.Time
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time     `gorm:"index"`
	Lines          []LineItemDTO `gorm:"foreignKey:InvoiceID"`
}

func (InvoiceDTO) TableName() string {
	return "invoices"
}

// LineItemDTO is one line of one invoice version. Status, PayableAmount and
// InDispute are derived values stored for the read side; they are recomputed on load.
type LineItemDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID        uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_line_items_version_number,priority:1"`
	Version          int       `gorm:"uniqueIndex:idx_line_items_version_number,priority:2"`
	LineNumber       int       `gorm:"uniqueIndex:idx_line_items_version_number,priority:3"`
	RawDescription   string
	RawCode          string              `gorm:"size:64"`
	Unit             string              `gorm:"size:32"`
	Quantity         decimal.Decimal     `gorm:"type:numeric(18,4)"`
	RawAmount        decimal.Decimal     `gorm:"type:numeric(18,4)"`
	ExpectedAmount   decimal.NullDecimal `gorm:"type:numeric(18,4)"`
	TaxonomyCode     string              `gorm:"size:64;index"`
	BillingComponent string              `gorm:"size:32"`
	Confidence       string              `gorm:"size:16"`
	MappingRuleID    *uuid.UUID          `gorm:"type:uuid"`
	Classified       bool
	Validated        bool
	Overridden       bool
	Status           string          `gorm:"size:16"`
	PayableAmount    decimal.Decimal `gorm:"type:numeric(18,4)"`
	InDispute        bool
	Exceptions       []ExceptionDTO `gorm:"foreignKey:LineItemID"`
}

func (LineItemDTO) TableName() string {
	return "line_items"
}

// ExceptionDTO is one validation exception. A line carries at most one per validation type.
type ExceptionDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	LineItemID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_exceptions_line_type,priority:1"`
	ValidationType   string    `gorm:"size:16;uniqueIndex:idx_exceptions_line_type,priority:2"`
	Status           string    `gorm:"size:32;index"`
	Severity         string    `gorm:"size:16"`
	RequiredAction   string    `gorm:"size:32"`
	Message          string
	SupplierResponse string
	ResolutionAction string `gorm:"size:32"`
	ResolutionNotes  string
	ResolvedBy       string `gorm:"size:128"`
	ResolvedAt       *time.Time
	CreatedAt        time.Time
}

func (ExceptionDTO) TableName() string {
	return "invoice_exceptions"
}

// fromDomain maps the header and the given lines of aggregate.
func fromDomain(aggregate *invoice.Invoice, lines []*invoice.LineItem) InvoiceDTO {
	s := aggregate.State()
	dto := InvoiceDTO{
		ID:             s.ID.Bytes(),
		SupplierID:     s.SupplierID.Bytes(),
		ContractID:     s.ContractID.Bytes(),
		InvoiceNumber:  s.InvoiceNumber,
		InvoiceDate:    s.InvoiceDate,
		Status:         s.Status.String(),
		CurrentVersion: s.CurrentVersion,
		SubmittedAt:    s.SubmittedAt,
		Notes:          s.Notes,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}

	for _, line := range lines {
		dto.Lines = append(dto.Lines, lineFromDomain(line))
	}
	return dto
}

// changedLines returns the lines created or modified since the aggregate was loaded.
func changedLines(aggregate *invoice.Invoice) []*invoice.LineItem {
	var lines []*invoice.LineItem
	for _, line := range aggregate.Lines() {
		if line.HasChanges() {
			lines = append(lines, line)
		}
	}
	return lines
}

func lineFromDomain(line *invoice.LineItem) LineItemDTO {
	s := line.State()
	dto := LineItemDTO{
		ID:               s.ID.Bytes(),
		InvoiceID:        s.InvoiceID.Bytes(),
		Version:          s.Version,
		LineNumber:       s.LineNumber,
		RawDescription:   s.RawDescription,
		RawCode:          s.RawCode,
		Unit:             s.Unit,
		Quantity:         s.Quantity,
		RawAmount:        s.RawAmount,
		ExpectedAmount:   s.ExpectedAmount,
		TaxonomyCode:     s.TaxonomyCode,
		BillingComponent: s.BillingComponent,
		Confidence:       string(s.Confidence),
		MappingRuleID:    optionalBytes(s.MappingRuleID),
		Classified:       s.Classified,
		Validated:        s.Validated,
		Overridden:       s.Overridden,
		Status:           line.Status().String(),
		PayableAmount:    line.PayableAmount(),
		InDispute:        line.InDispute(),
	}

	for _, exc := range line.Exceptions() {
		dto.Exceptions = append(dto.Exceptions, exceptionFromDomain(exc))
	}
	return dto
}

func exceptionFromDomain(exc *invoice.Exception) ExceptionDTO {
	return ExceptionDTO{
		ID:               exc.ID().Bytes(),
		LineItemID:       exc.LineItemID().Bytes(),
		ValidationType:   string(exc.ValidationType()),
		Status:           exc.Status().String(),
		Severity:         string(exc.Severity()),
		RequiredAction:   string(exc.RequiredAction()),
		Message:          exc.Message(),
		SupplierResponse: exc.SupplierResponse(),
		ResolutionAction: exc.ResolutionAction().String(),
		ResolutionNotes:  exc.ResolutionNotes(),
		ResolvedBy:       exc.ResolvedBy(),
		ResolvedAt:       exc.ResolvedAt(),
		CreatedAt:        exc.CreatedAt(),
	}
}

func toDomain(dto InvoiceDTO) (*invoice.Invoice, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	supplierID, err := kernel.UUIDFromBytes(dto.SupplierID[:])
	if err != nil {
		return nil, err
	}
	contractID, err := kernel.UUIDFromBytes(dto.ContractID[:])
	if err != nil {
		return nil, err
	}
	status, err := invoice.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	lines := make([]*invoice.LineItem, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		line, lineErr := lineToDomain(l)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return invoice.RestoreInvoice(invoice.InvoiceState{
		ID:             id,
		SupplierID:     supplierID,
		ContractID:     contractID,
		InvoiceNumber:  dto.InvoiceNumber,
		InvoiceDate:    dto.InvoiceDate,
		Status:         status,
		CurrentVersion: dto.CurrentVersion,
		SubmittedAt:    dto.SubmittedAt,
		Notes:          dto.Notes,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
	}, lines)
}

func lineToDomain(dto LineItemDTO) (*invoice.LineItem, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	invoiceID, err := kernel.UUIDFromBytes(dto.InvoiceID[:])
	if err != nil {
		return nil, err
	}
	ruleID, err := optionalUUID(dto.MappingRuleID)
	if err != nil {
		return nil, err
	}

	exceptions := make([]*invoice.Exception, 0, len(dto.Exceptions))
	for _, e := range dto.Exceptions {
		exc, excErr := exceptionToDomain(e)
		if excErr != nil {
			return nil, excErr
		}
		exceptions = append(exceptions, exc)
	}

	return invoice.RestoreLineItem(invoice.LineItemState{
		ID:               id,
		InvoiceID:        invoiceID,
		Version:          dto.Version,
		LineNumber:       dto.LineNumber,
		RawDescription:   dto.RawDescription,
		RawCode:          dto.RawCode,
		Unit:             dto.Unit,
		Quantity:         dto.Quantity,
		RawAmount:        dto.RawAmount,
		ExpectedAmount:   dto.ExpectedAmount,
		TaxonomyCode:     dto.TaxonomyCode,
		BillingComponent: dto.BillingComponent,
		Confidence:       validation.Confidence(dto.Confidence),
		MappingRuleID:    ruleID,
		Classified:       dto.Classified,
		Validated:        dto.Validated,
		Overridden:       dto.Overridden,
	}, exceptions)
}

func exceptionToDomain(dto ExceptionDTO) (*invoice.Exception, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	lineItemID, err := kernel.UUIDFromBytes(dto.LineItemID[:])
	if err != nil {
		return nil, err
	}
	status, err := invoice.ParseExceptionStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return invoice.RestoreException(invoice.ExceptionState{
		ID:               id,
		LineItemID:       lineItemID,
		ValidationType:   validation.Type(dto.ValidationType),
		Status:           status,
		Severity:         validation.Severity(dto.Severity),
		RequiredAction:   validation.RequiredAction(dto.RequiredAction),
		Message:          dto.Message,
		SupplierResponse: dto.SupplierResponse,
		ResolutionAction: invoice.ResolutionAction(dto.ResolutionAction),
		ResolutionNotes:  dto.ResolutionNotes,
		ResolvedBy:       dto.ResolvedBy,
		ResolvedAt:       dto.ResolvedAt,
		CreatedAt:        dto.CreatedAt,
	})
}

func optionalBytes(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func optionalUUID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
