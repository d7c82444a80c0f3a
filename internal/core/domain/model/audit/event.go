package audit

import (
	"errors"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// EntityType names the kind of record an event is about.
type EntityType string

const (
	EntityInvoice     EntityType = "INVOICE"
	EntityLineItem    EntityType = "LINE_ITEM"
	EntityException   EntityType = "EXCEPTION"
	EntityMappingRule EntityType = "MAPPING_RULE"
	EntityContract    EntityType = "CONTRACT"
)

// EventType names what happened.
type EventType string

const (
	EventInvoiceCreated       EventType = "INVOICE_CREATED"
	EventInvoiceTransitioned  EventType = "INVOICE_TRANSITIONED"
	EventLinesAttached        EventType = "LINES_ATTACHED"
	EventLineClassified       EventType = "LINE_CLASSIFIED"
	EventExceptionRaised      EventType = "EXCEPTION_RAISED"
	EventExceptionResponded   EventType = "EXCEPTION_RESPONDED"
	EventExceptionResolved    EventType = "EXCEPTION_RESOLVED"
	EventExceptionWaived      EventType = "EXCEPTION_WAIVED"
	EventMappingOverridden    EventType = "MAPPING_OVERRIDDEN"
	EventMappingRuleCreated   EventType = "MAPPING_RULE_CREATED"
	EventMappingRuleUpdated   EventType = "MAPPING_RULE_UPDATED"
	EventInvoiceExported      EventType = "INVOICE_EXPORTED"
	EventContractTermsUpdated EventType = "CONTRACT_TERMS_UPDATED"
)

// Event is one immutable audit record. InvoiceID is nil only for events that
// are not scoped to an invoice, such as contract maintenance.
type Event struct {
	ID         kernel.UUID
	InvoiceID  *kernel.UUID
	EntityType EntityType
	EntityID   kernel.UUID
	EventType  EventType
	ActorRole  kernel.Role
	ActorID    string
	FromState  string
	ToState    string
	Reason     string
	Payload    map[string]any
	OccurredAt time.Time
}

// NewEvent stamps a fresh identifier on an event about entityID, performed by actor.
func NewEvent(
	invoiceID *kernel.UUID,
	entityType EntityType,
	entityID kernel.UUID,
	eventType EventType,
	actor kernel.Actor,
	occurredAt time.Time,
) Event {
	return Event{
		ID:         kernel.NewUUID(),
		InvoiceID:  invoiceID,
		EntityType: entityType,
		EntityID:   entityID,
		EventType:  eventType,
		ActorRole:  actor.Role(),
		ActorID:    actor.ID(),
		OccurredAt: occurredAt,
	}
}

// WithStates records a from/to pair.
func (e Event) WithStates(from, to string) Event {
	e.FromState = from
	e.ToState = to
	return e
}

func (e Event) WithReason(reason string) Event {
	e.Reason = reason
	return e
}

// WithPayload merges kv into the payload, copying so the caller's map is never shared.
func (e Event) WithPayload(kv map[string]any) Event {
	merged := make(map[string]any, len(e.Payload)+len(kv))
	for k, v := range e.Payload {
		merged[k] = v
	}
	for k, v := range kv {
		merged[k] = v
	}
	e.Payload = merged
	return e
}

func (e Event) Validate() error {
	var errList []error
	if err := e.ID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := e.EntityID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if e.EntityType == "" {
		errList = append(errList, errs.NewValueIsRequiredError("entityType"))
	}
	if e.EventType == "" {
		errList = append(errList, errs.NewValueIsRequiredError("eventType"))
	}
	if e.ActorRole == "" {
		errList = append(errList, errs.NewValueIsRequiredError("actorRole"))
	}
	if e.OccurredAt.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("occurredAt"))
	}
	return errors.Join(errList...)
}
