package queries

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListInvoicesQueryHandler struct {
	db *gorm.DB
}

func NewListInvoicesQueryHandler(db *gorm.DB) ListInvoicesQueryHandler {
	return ListInvoicesQueryHandler{db: db}
}

func (h ListInvoicesQueryHandler) Handle(ctx context.Context, query ListInvoicesQuery) ([]InvoiceListItem, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	tx := h.db.WithContext(ctx).
		Table("invoices").
		Select("id, supplier_id, invoice_number, status, current_version, updated_at")
	if status := query.Status(); status != nil {
		tx = tx.Where("status = ?", status.String())
	}
	if supplierID := query.SupplierID(); supplierID != nil {
		tx = tx.Where("supplier_id = ?", supplierID.Bytes())
	}

	rows, err := tx.Order("updated_at DESC").Order("id").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]InvoiceListItem, 0)
	for rows.Next() {
		var (
			item           InvoiceListItem
			id, supplierID uuid.UUID
			status         string
		)
		if err = rows.Scan(&id, &supplierID, &item.InvoiceNumber, &status, &item.CurrentVersion, &item.UpdatedAt); err != nil {
			return nil, err
		}

		if item.ID, err = kernelID(id); err != nil {
			return nil, err
		}
		if item.SupplierID, err = kernelID(supplierID); err != nil {
			return nil, err
		}
		if item.Status, err = invoice.ParseStatus(status); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
