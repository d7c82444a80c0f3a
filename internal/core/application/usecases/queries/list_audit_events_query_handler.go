package queries

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ListAuditEventsQueryHandler struct {
	db *gorm.DB
}

func NewListAuditEventsQueryHandler(db *gorm.DB) ListAuditEventsQueryHandler {
	return ListAuditEventsQueryHandler{db: db}
}

// Handle returns the invoice's events ordered by write sequence. An invoice
// with no events, known or not, yields an empty slice.
func (h ListAuditEventsQueryHandler) Handle(ctx context.Context, query ListAuditEventsQuery) ([]AuditEventView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			event_id,
			entity_type,
			entity_id,
			event_type,
			actor_role,
			actor_id,
			from_state,
			to_state,
			reason,
			payload,
			occurred_at
		FROM audit_events
		WHERE invoice_id = ?
		ORDER BY seq
	`, query.InvoiceID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]AuditEventView, 0)
	for rows.Next() {
		var (
			view                             AuditEventView
			id, entityID                     uuid.UUID
			entityType, eventType, actorRole string
			payload                          datatypes.JSONMap
		)
		err = rows.Scan(
			&id,
			&entityType,
			&entityID,
			&eventType,
			&actorRole,
			&view.ActorID,
			&view.FromState,
			&view.ToState,
			&view.Reason,
			&payload,
			&view.OccurredAt,
		)
		if err != nil {
			return nil, err
		}

		if view.ID, err = kernelID(id); err != nil {
			return nil, err
		}
		if view.EntityID, err = kernelID(entityID); err != nil {
			return nil, err
		}
		if view.ActorRole, err = kernel.ParseRole(actorRole); err != nil {
			return nil, err
		}
		view.EntityType = audit.EntityType(entityType)
		view.EventType = audit.EventType(eventType)
		view.Payload = map[string]any(payload)
		events = append(events, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
