package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetInvoiceQueryHandler reads the invoice header and totals its current lines.
// The totals come from the stored line status, payable amount and dispute flag,
// which the invoice repository refreshes on every write.
type GetInvoiceQueryHandler struct {
	db *gorm.DB
}

func NewGetInvoiceQueryHandler(db *gorm.DB) GetInvoiceQueryHandler {
	return GetInvoiceQueryHandler{db: db}
}

func (h GetInvoiceQueryHandler) Handle(ctx context.Context, query GetInvoiceQuery) (GetInvoiceQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetInvoiceQueryResponse{}, err
	}

	resp, err := h.header(ctx, query)
	if err != nil {
		return GetInvoiceQueryResponse{}, err
	}

	lines, err := h.summaryLines(ctx, query, resp.CurrentVersion)
	if err != nil {
		return GetInvoiceQueryResponse{}, err
	}
	resp.Summary = invoice.Summarize(lines)

	return resp, nil
}

func (h GetInvoiceQueryHandler) header(ctx context.Context, query GetInvoiceQuery) (GetInvoiceQueryResponse, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			supplier_id,
			contract_id,
			invoice_number,
			invoice_date,
			status,
			current_version,
			submitted_at,
			notes,
			created_at,
			updated_at
		FROM invoices
		WHERE id = ?
	`, query.InvoiceID().Bytes()).Row()

	var (
		resp                       GetInvoiceQueryResponse
		id, supplierID, contractID uuid.UUID
		status                     string
		submittedAt                *time.Time
	)
	err := row.Scan(
		&id,
		&supplierID,
		&contractID,
		&resp.InvoiceNumber,
		&resp.InvoiceDate,
		&status,
		&resp.CurrentVersion,
		&submittedAt,
		&resp.Notes,
		&resp.CreatedAt,
		&resp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetInvoiceQueryResponse{}, errs.NewObjectNotFoundError("invoice", query.InvoiceID().String())
		}
		return GetInvoiceQueryResponse{}, err
	}
	resp.SubmittedAt = submittedAt

	if resp.ID, err = kernelID(id); err != nil {
		return GetInvoiceQueryResponse{}, err
	}
	if resp.SupplierID, err = kernelID(supplierID); err != nil {
		return GetInvoiceQueryResponse{}, err
	}
	if resp.ContractID, err = kernelID(contractID); err != nil {
		return GetInvoiceQueryResponse{}, err
	}
	if resp.Status, err = invoice.ParseStatus(status); err != nil {
		return GetInvoiceQueryResponse{}, err
	}

	return resp, nil
}

func (h GetInvoiceQueryHandler) summaryLines(
	ctx context.Context,
	query GetInvoiceQuery,
	version int,
) ([]invoice.SummaryLine, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			confidence,
			validated,
			in_dispute,
			raw_amount,
			payable_amount
		FROM line_items
		WHERE invoice_id = ? AND version = ?
		ORDER BY line_number
	`, query.InvoiceID().Bytes(), version).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]invoice.SummaryLine, 0)
	for rows.Next() {
		var (
			status, confidence string
			line               invoice.SummaryLine
			raw, payable       decimal.Decimal
		)
		if err = rows.Scan(&status, &confidence, &line.Validated, &line.InDispute, &raw, &payable); err != nil {
			return nil, err
		}
		if line.Status, err = invoice.ParseLineStatus(status); err != nil {
			return nil, err
		}
		line.Confidence = validation.Confidence(confidence)
		line.RawAmount = raw
		line.PayableAmount = payable
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
