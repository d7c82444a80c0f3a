package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListLinesQueryHandler struct {
	db *gorm.DB
}

func NewListLinesQueryHandler(db *gorm.DB) ListLinesQueryHandler {
	return ListLinesQueryHandler{db: db}
}

// Handle returns the lines ordered by line number. An unknown invoice is
// ObjectNotFound; a version with no lines is an empty slice.
func (h ListLinesQueryHandler) Handle(ctx context.Context, query ListLinesQuery) ([]LineItemView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var current int
	err := h.db.WithContext(ctx).
		Raw(`SELECT current_version FROM invoices WHERE id = ?`, query.InvoiceID().Bytes()).
		Row().
		Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewObjectNotFoundError("invoice", query.InvoiceID().String())
		}
		return nil, err
	}

	version := query.Version()
	if version == 0 {
		version = current
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			version,
			line_number,
			raw_description,
			raw_code,
			unit,
			quantity,
			raw_amount,
			expected_amount,
			taxonomy_code,
			billing_component,
			confidence,
			mapping_rule_id,
			status,
			payable_amount,
			in_dispute
		FROM line_items
		WHERE invoice_id = ? AND version = ?
		ORDER BY line_number
	`, query.InvoiceID().Bytes(), version).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]LineItemView, 0)
	for rows.Next() {
		var (
			line               LineItemView
			id                 uuid.UUID
			ruleID             *uuid.UUID
			confidence, status string
		)
		err = rows.Scan(
			&id,
			&line.Version,
			&line.LineNumber,
			&line.RawDescription,
			&line.RawCode,
			&line.Unit,
			&line.Quantity,
			&line.RawAmount,
			&line.ExpectedAmount,
			&line.TaxonomyCode,
			&line.BillingComponent,
			&confidence,
			&ruleID,
			&status,
			&line.PayableAmount,
			&line.InDispute,
		)
		if err != nil {
			return nil, err
		}

		if line.ID, err = kernelID(id); err != nil {
			return nil, err
		}
		if line.MappingRuleID, err = optionalKernelID(ruleID); err != nil {
			return nil, err
		}
		if line.Status, err = invoice.ParseLineStatus(status); err != nil {
			return nil, err
		}
		line.Confidence = validation.Confidence(confidence)
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
