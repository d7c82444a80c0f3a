package invoicerepo

import (
	"context"
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/invoice"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// writeBatchSize keeps one INSERT of line or exception rows well below the
// bind-parameter limits of both sqlite and postgres.
const writeBatchSize = 500

// GormInvoiceRepository implements ports.InvoiceRepository using GORM.
type GormInvoiceRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormInvoiceRepository creates a new GORM invoice repository.
func NewGormInvoiceRepository(db *gorm.DB, tracker aggregateTracker) *GormInvoiceRepository {
	return &GormInvoiceRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new invoice with whatever lines it already has.
func (r *GormInvoiceRepository) Add(ctx context.Context, aggregate *invoice.Invoice) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate, aggregate.Lines())
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&dto).Error; err != nil {
		return err
	}
	if err := r.saveChildren(ctx, dto.Lines); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the header and upserts, by id, the lines changed since Get along
// with their exceptions. Rows of superseded versions are left as they are.
func (r *GormInvoiceRepository) Update(ctx context.Context, aggregate *invoice.Invoice) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate, changedLines(aggregate))
	result := r.db.WithContext(ctx).Model(&dto).Select("*").Omit(clause.Associations).Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := r.saveChildren(ctx, dto.Lines); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get loads an invoice with every line version and all exceptions.
func (r *GormInvoiceRepository) Get(ctx context.Context, id kernel.UUID) (*invoice.Invoice, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto InvoiceDTO
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("version, line_number") }).
		Preload("Lines.Exceptions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("invoice", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// InvoiceIDByLineItem resolves the invoice owning a line item of any version.
func (r *GormInvoiceRepository) InvoiceIDByLineItem(ctx context.Context, lineItemID kernel.UUID) (kernel.UUID, error) {
	if err := lineItemID.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	var dto LineItemDTO
	err := r.db.WithContext(ctx).Select("id", "invoice_id").First(&dto, "id = ?", lineItemID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kernel.UUID{}, errs.NewObjectNotFoundError("lineItem", lineItemID.String())
		}
		return kernel.UUID{}, err
	}

	return kernel.UUIDFromBytes(dto.InvoiceID[:])
}

// InvoiceIDByException resolves the invoice owning an exception.
func (r *GormInvoiceRepository) InvoiceIDByException(ctx context.Context, exceptionID kernel.UUID) (kernel.UUID, error) {
	if err := exceptionID.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	var row struct {
		InvoiceID uuid.UUID
	}
	result := r.db.WithContext(ctx).
		Table(ExceptionDTO{}.TableName()+" AS e").
		Select("l.invoice_id").
		Joins("JOIN "+LineItemDTO{}.TableName()+" AS l ON l.id = e.line_item_id").
		Where("e.id = ?", exceptionID.Bytes()).
		Limit(1).
		Scan(&row)
	if result.Error != nil {
		return kernel.UUID{}, result.Error
	}
	if result.RowsAffected == 0 {
		return kernel.UUID{}, errs.NewObjectNotFoundError("exception", exceptionID.String())
	}

	return kernel.UUIDFromBytes(row.InvoiceID[:])
}

// ListIDsByStatus returns matching invoice ids, least recently updated first.
func (r *GormInvoiceRepository) ListIDsByStatus(ctx context.Context, statuses ...invoice.Status) ([]kernel.UUID, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}

	var raw []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&InvoiceDTO{}).
		Where("status IN ?", names).
		Order("updated_at").
		Pluck("id", &raw).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(raw))
	for _, id := range raw {
		kid, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		ids = append(ids, kid)
	}
	return ids, nil
}

func (r *GormInvoiceRepository) saveChildren(ctx context.Context, lines []LineItemDTO) error {
	if len(lines) == 0 {
		return nil
	}

	var exceptions []ExceptionDTO
	for _, l := range lines {
		exceptions = append(exceptions, l.Exceptions...)
	}

	db := r.db.WithContext(ctx)
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}

	if err := db.Clauses(upsert).Omit(clause.Associations).CreateInBatches(&lines, writeBatchSize).Error; err != nil {
		return err
	}
	if len(exceptions) == 0 {
		return nil
	}
	return db.Clauses(upsert).CreateInBatches(&exceptions, writeBatchSize).Error
}
