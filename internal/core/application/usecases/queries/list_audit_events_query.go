package queries

import (
	"errors"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

var ErrListAuditEventsQueryIsNotConstructed = errors.New(
	"ListAuditEventsQuery must be created via NewListAuditEventsQuery constructor",
)

// ListAuditEventsQuery replays the audit trail of one invoice in write order.
type ListAuditEventsQuery struct {
	invoiceID kernel.UUID
	guard     guard.ConstructorGuard
}

func NewListAuditEventsQuery(invoiceID kernel.UUID) (ListAuditEventsQuery, error) {
	if err := invoiceID.Validate(); err != nil {
		return ListAuditEventsQuery{}, err
	}
	return ListAuditEventsQuery{
		invoiceID: invoiceID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q ListAuditEventsQuery) Validate() error {
	return q.guard.Validate(ErrListAuditEventsQueryIsNotConstructed)
}

func (q ListAuditEventsQuery) InvoiceID() kernel.UUID {
	return q.invoiceID
}

type AuditEventView struct {
	ID         kernel.UUID
	EntityType audit.EntityType
	EntityID   kernel.UUID
	EventType  audit.EventType
	ActorRole  kernel.Role
	ActorID    string
	FromState  string
	ToState    string
	Reason     string
	Payload    map[string]any
	OccurredAt time.Time
}
