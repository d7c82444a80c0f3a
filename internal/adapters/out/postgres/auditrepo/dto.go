// Package auditrepo is the append-only audit log. Seq orders events in the
// order they were written, which is the order readers replay them.
package auditrepo

import (
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditEventDTO struct {
	Seq        uint64     `gorm:"primaryKey;autoIncrement"`
	EventID    uuid.UUID  `gorm:"type:uuid;uniqueIndex"`
	InvoiceID  *uuid.UUID `gorm:"type:uuid;index"`
	EntityType string     `gorm:"size:32;index:idx_audit_events_entity,priority:1"`
	EntityID   uuid.UUID  `gorm:"type:uuid;index:idx_audit_events_entity,priority:2"`
	EventType  string     `gorm:"size:64;index"`
	ActorRole  string     `gorm:"size:16"`
	ActorID    string     `gorm:"size:128"`
	FromState  string     `gorm:"size:32"`
	ToState    string     `gorm:"size:32"`
	Reason     string
	Payload    datatypes.JSONMap
	OccurredAt time.Time `gorm:"index"`
}

func (AuditEventDTO) TableName() string {
	return "audit_events"
}

func fromDomain(ev audit.Event) AuditEventDTO {
	dto := AuditEventDTO{
		EventID:    ev.ID.Bytes(),
		EntityType: string(ev.EntityType),
		EntityID:   ev.EntityID.Bytes(),
		EventType:  string(ev.EventType),
		ActorRole:  ev.ActorRole.String(),
		ActorID:    ev.ActorID,
		FromState:  ev.FromState,
		ToState:    ev.ToState,
		Reason:     ev.Reason,
		OccurredAt: ev.OccurredAt,
	}
	if ev.InvoiceID != nil {
		invoiceID := ev.InvoiceID.Bytes()
		dto.InvoiceID = &invoiceID
	}
	if len(ev.Payload) > 0 {
		dto.Payload = datatypes.JSONMap(ev.Payload)
	}
	return dto
}

func toDomain(dto AuditEventDTO) (audit.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.EventID[:])
	if err != nil {
		return audit.Event{}, err
	}
	entityID, err := kernel.UUIDFromBytes(dto.EntityID[:])
	if err != nil {
		return audit.Event{}, err
	}
	role, err := kernel.ParseRole(dto.ActorRole)
	if err != nil {
		return audit.Event{}, err
	}

	ev := audit.Event{
		ID:         id,
		EntityType: audit.EntityType(dto.EntityType),
		EntityID:   entityID,
		EventType:  audit.EventType(dto.EventType),
		ActorRole:  role,
		ActorID:    dto.ActorID,
		FromState:  dto.FromState,
		ToState:    dto.ToState,
		Reason:     dto.Reason,
		Payload:    map[string]any(dto.Payload),
		OccurredAt: dto.OccurredAt,
	}
	if dto.InvoiceID != nil {
		invoiceID, idErr := kernel.UUIDFromBytes(dto.InvoiceID[:])
		if idErr != nil {
			return audit.Event{}, idErr
		}
		ev.InvoiceID = &invoiceID
	}
	return ev, nil
}
