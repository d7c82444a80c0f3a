package queries

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListExceptionsQueryHandler struct {
	db *gorm.DB
}

func NewListExceptionsQueryHandler(db *gorm.DB) ListExceptionsQueryHandler {
	return ListExceptionsQueryHandler{db: db}
}

// Handle returns the line's exceptions oldest first. An unknown line is ObjectNotFound.
func (h ListExceptionsQueryHandler) Handle(ctx context.Context, query ListExceptionsQuery) ([]ExceptionView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	lookup := h.db.WithContext(ctx).
		Table("line_items").
		Joins("JOIN invoices ON invoices.id = line_items.invoice_id").
		Where("line_items.id = ?", query.LineItemID().Bytes())
	if supplierID := query.SupplierID(); supplierID != nil {
		lookup = lookup.Where("invoices.supplier_id = ?", supplierID.Bytes())
	}

	var lines int64
	err := lookup.Count(&lines).Error
	if err != nil {
		return nil, err
	}
	if lines == 0 {
		return nil, errs.NewObjectNotFoundError("lineItem", query.LineItemID().String())
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			line_item_id,
			validation_type,
			status,
			severity,
			required_action,
			message,
			supplier_response,
			resolution_action,
			resolution_notes,
			resolved_by,
			resolved_at,
			created_at
		FROM invoice_exceptions
		WHERE line_item_id = ?
		ORDER BY created_at, validation_type
	`, query.LineItemID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exceptions := make([]ExceptionView, 0)
	for rows.Next() {
		var (
			view                                     ExceptionView
			id, lineItemID                           uuid.UUID
			validationType, status, severity, action string
			resolution                               string
			resolvedAt                               *time.Time
		)
		err = rows.Scan(
			&id,
			&lineItemID,
			&validationType,
			&status,
			&severity,
			&action,
			&view.Message,
			&view.SupplierResponse,
			&resolution,
			&view.ResolutionNotes,
			&view.ResolvedBy,
			&resolvedAt,
			&view.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if view.ID, err = kernelID(id); err != nil {
			return nil, err
		}
		if view.LineItemID, err = kernelID(lineItemID); err != nil {
			return nil, err
		}
		if view.Status, err = invoice.ParseExceptionStatus(status); err != nil {
			return nil, err
		}
		view.ValidationType = validation.Type(validationType)
		view.Severity = validation.Severity(severity)
		view.RequiredAction = validation.RequiredAction(action)
		view.ResolutionAction = invoice.ResolutionAction(resolution)
		view.ResolvedAt = resolvedAt
		exceptions = append(exceptions, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return exceptions, nil
}
