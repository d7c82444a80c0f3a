package invoice

import (
	"errors"
	"strings"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// ErrExceptionIsNotConstructed is returned for a zero-value Exception.
var ErrExceptionIsNotConstructed = errors.New("Exception must be created via NewException or RestoreException")

// Exception is a validation finding raised against exactly one line item.
// Exceptions are never deleted; they only change status.
type Exception struct {
	id               kernel.UUID
	lineItemID       kernel.UUID
	validationType   validation.Type
	status           ExceptionStatus
	severity         validation.Severity
	requiredAction   validation.RequiredAction
	message          string
	supplierResponse string
	resolutionAction ResolutionAction
	resolutionNotes  string
	resolvedBy       string
	resolvedAt       *time.Time
	createdAt        time.Time
	isConstructed    bool
}

// NewException opens an exception for a result that raises one.
func NewException(id, lineItemID kernel.UUID, result validation.Result, createdAt time.Time) (*Exception, error) {
	if !result.RaisesException() {
		return nil, errs.NewValueIsInvalidError("result does not raise an exception")
	}

	action := result.RequiredAction
	if action == "" {
		action = validation.RequiredActionNone
	}

	e := &Exception{
		id:             id,
		lineItemID:     lineItemID,
		validationType: result.Type,
		status:         ExceptionOpen,
		severity:       result.Severity,
		requiredAction: action,
		message:        result.Message,
		createdAt:      createdAt,
		isConstructed:  true,
	}
	if err := errors.Join(
		id.Validate(),
		lineItemID.Validate(),
		result.Validate(),
	); err != nil {
		return nil, err
	}

	return e, nil
}

// ExceptionState is the persisted form of an Exception.
type ExceptionState struct {
	ID               kernel.UUID
	LineItemID       kernel.UUID
	ValidationType   validation.Type
	Status           ExceptionStatus
	Severity         validation.Severity
	RequiredAction   validation.RequiredAction
	Message          string
	SupplierResponse string
	ResolutionAction ResolutionAction
	ResolutionNotes  string
	ResolvedBy       string
	ResolvedAt       *time.Time
	CreatedAt        time.Time
}

// RestoreException rebuilds an exception loaded from storage.
func RestoreException(s ExceptionState) (*Exception, error) {
	errList := []error{
		s.ID.Validate(),
		s.LineItemID.Validate(),
		s.ValidationType.Validate(),
		s.Status.Validate(),
		s.Severity.Validate(),
		s.RequiredAction.Validate(),
	}
	if s.ResolutionAction != "" {
		errList = append(errList, s.ResolutionAction.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return &Exception{
		id:               s.ID,
		lineItemID:       s.LineItemID,
		validationType:   s.ValidationType,
		status:           s.Status,
		severity:         s.Severity,
		requiredAction:   s.RequiredAction,
		message:          s.Message,
		supplierResponse: s.SupplierResponse,
		resolutionAction: s.ResolutionAction,
		resolutionNotes:  s.ResolutionNotes,
		resolvedBy:       s.ResolvedBy,
		resolvedAt:       s.ResolvedAt,
		createdAt:        s.CreatedAt,
		isConstructed:    true,
	}, nil
}

func (e *Exception) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrExceptionIsNotConstructed
	}
	return nil
}

func (e *Exception) ID() kernel.UUID                           { return e.id }
func (e *Exception) LineItemID() kernel.UUID                   { return e.lineItemID }
func (e *Exception) ValidationType() validation.Type           { return e.validationType }
func (e *Exception) Status() ExceptionStatus                   { return e.status }
func (e *Exception) Severity() validation.Severity             { return e.severity }
func (e *Exception) RequiredAction() validation.RequiredAction { return e.requiredAction }
func (e *Exception) Message() string                           { return e.message }
func (e *Exception) SupplierResponse() string                  { return e.supplierResponse }
func (e *Exception) ResolutionAction() ResolutionAction        { return e.resolutionAction }
func (e *Exception) ResolutionNotes() string                   { return e.resolutionNotes }
func (e *Exception) ResolvedBy() string                        { return e.resolvedBy }
func (e *Exception) ResolvedAt() *time.Time                    { return e.resolvedAt }
func (e *Exception) CreatedAt() time.Time                      { return e.createdAt }

// IsBlocking reports whether the exception holds the invoice in REVIEW_REQUIRED:
// it is OPEN and asks the supplier to do something.
func (e *Exception) IsBlocking() bool {
	return e.status == ExceptionOpen && e.requiredAction.NeedsSupplier()
}

func (e *Exception) IsTerminal() bool {
	return e.status.IsTerminal()
}

// IsDenied reports whether the exception was resolved by denying the line.
func (e *Exception) IsDenied() bool {
	return e.status == ExceptionResolved && e.resolutionAction == ResolutionDenied
}

func (e *Exception) respond(text string) error {
	if e.status != ExceptionOpen {
		return errs.NewNotOpenError(e.id.String(), e.status.String())
	}
	if strings.TrimSpace(text) == "" {
		return errs.NewValueIsRequiredError("response")
	}
	next, err := e.status.TransitionTo(ExceptionSupplierResponded)
	if err != nil {
		return err
	}
	e.status = next
	e.supplierResponse = text
	return nil
}

func (e *Exception) resolve(action ResolutionAction, notes string, actor kernel.Actor, at time.Time) error {
	if err := action.Validate(); err != nil {
		return err
	}
	if e.status.IsTerminal() {
		return errs.NewNotOpenError(e.id.String(), e.status.String())
	}
	next, err := e.status.TransitionTo(ExceptionResolved)
	if err != nil {
		return err
	}
	e.close(next, action, notes, actor, at)
	return nil
}

func (e *Exception) waive(notes string, actor kernel.Actor, at time.Time) error {
	next, err := e.status.TransitionTo(ExceptionWaived)
	if err != nil {
		return err
	}
	e.close(next, ResolutionWaived, notes, actor, at)
	return nil
}

func (e *Exception) close(status ExceptionStatus, action ResolutionAction, notes string, actor kernel.Actor, at time.Time) {
	e.status = status
	e.resolutionAction = action
	e.resolutionNotes = notes
	e.resolvedBy = actor.String()
	e.resolvedAt = &at
}
