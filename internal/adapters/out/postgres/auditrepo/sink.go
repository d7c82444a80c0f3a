package auditrepo

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

// GormAuditSink implements ports.AuditSink. Handed out by the unit of work it
// writes inside the command's transaction.
type GormAuditSink struct {
	db *gorm.DB
}

func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

func (s *GormAuditSink) Append(ctx context.Context, event audit.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	dto := fromDomain(event)
	return s.db.WithContext(ctx).Create(&dto).Error
}

// ListByInvoice replays an invoice's events in write order.
func (s *GormAuditSink) ListByInvoice(ctx context.Context, invoiceID kernel.UUID) ([]audit.Event, error) {
	if err := invoiceID.Validate(); err != nil {
		return nil, err
	}

	var dtos []AuditEventDTO
	err := s.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID.Bytes()).
		Order("seq").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]audit.Event, 0, len(dtos))
	for _, dto := range dtos {
		ev, evErr := toDomain(dto)
		if evErr != nil {
			return nil, evErr
		}
		events = append(events, ev)
	}
	return events, nil
}
