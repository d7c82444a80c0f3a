package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotOpen           = errors.New("exception is not open")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForeignSupplier   = errors.New("invoice belongs to another supplier")
	ErrAlreadyExported   = errors.New("invoice already exported")
	ErrStaleVersion      = errors.New("stale invoice version")
	ErrAuditWriteFailure = errors.New("audit write failure")
)

// ObjectNotFoundError reports a lookup by identifier that found nothing.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
	}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
		Cause:     cause,
	}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %s)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that failed a business rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{
		ParamName: paramName,
	}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside an inclusive [Min, Max] window.
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
	}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
		Cause:     cause,
	}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %s)", msg, e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{
		ParamName: paramName,
	}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// InvalidTransitionError reports a state change the entity's state machine forbids.
// Entity names the machine ("invoice", "exception"); Current and Requested are state names.
type InvalidTransitionError struct {
	Entity    string
	Current   string
	Requested string
}

func NewInvalidTransitionError(entity, current, requested string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Entity:    entity,
		Current:   current,
		Requested: requested,
	}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot move from %s to %s", ErrInvalidTransition, e.Entity, e.Current, e.Requested)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NotOpenError reports a respond or resolve on an exception that is already past that step.
type NotOpenError struct {
	ExceptionID string
	Current     string
}

func NewNotOpenError(exceptionID, current string) *NotOpenError {
	return &NotOpenError{
		ExceptionID: exceptionID,
		Current:     current,
	}
}

func (e *NotOpenError) Error() string {
	return fmt.Sprintf("%s: %s is %s", ErrNotOpen, e.ExceptionID, e.Current)
}

func (e *NotOpenError) Unwrap() error {
	return ErrNotOpen
}

// UnauthorizedError reports a role that is not allowed to perform an action.
type UnauthorizedError struct {
	Role   string
	Action string
	Cause  error
}

func NewUnauthorizedError(role, action string) *UnauthorizedError {
	return &UnauthorizedError{
		Role:   role,
		Action: action,
	}
}

func NewUnauthorizedErrorWithCause(role, action string, cause error) *UnauthorizedError {
	return &UnauthorizedError{
		Role:   role,
		Action: action,
		Cause:  cause,
	}
}

func (e *UnauthorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: role %s may not %s (cause: %s)", ErrUnauthorized, e.Role, e.Action, e.Cause)
	}
	return fmt.Sprintf("%s: role %s may not %s", ErrUnauthorized, e.Role, e.Action)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// ForeignSupplierError reports a supplier acting on an invoice it does not own.
// It is an Unauthorized error; transports may report it as not found.
type ForeignSupplierError struct {
	Role      string
	Action    string
	InvoiceID string
}

func NewForeignSupplierError(role, action, invoiceID string) *ForeignSupplierError {
	return &ForeignSupplierError{
		Role:      role,
		Action:    action,
		InvoiceID: invoiceID,
	}
}

func (e *ForeignSupplierError) Error() string {
	return fmt.Sprintf("%s: role %s may not %s (cause: %s: %s)",
		ErrUnauthorized, e.Role, e.Action, ErrForeignSupplier, e.InvoiceID)
}

func (e *ForeignSupplierError) Unwrap() []error {
	return []error{ErrUnauthorized, ErrForeignSupplier}
}

// AlreadyExportedError reports a second export of the same invoice.
type AlreadyExportedError struct {
	InvoiceID string
}

func NewAlreadyExportedError(invoiceID string) *AlreadyExportedError {
	return &AlreadyExportedError{InvoiceID: invoiceID}
}

func (e *AlreadyExportedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyExported, e.InvoiceID)
}

func (e *AlreadyExportedError) Unwrap() error {
	return ErrAlreadyExported
}

// StaleVersionError reports a resubmission attempted outside the changes-requested state,
// or an action on a line row of a superseded version.
type StaleVersionError struct {
	InvoiceID string
	Current   string
	Version   int
}

func NewStaleVersionError(invoiceID, current string, version int) *StaleVersionError {
	return &StaleVersionError{
		InvoiceID: invoiceID,
		Current:   current,
		Version:   version,
	}
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("%s: invoice %s is %s at version %d", ErrStaleVersion, e.InvoiceID, e.Current, e.Version)
}

func (e *StaleVersionError) Unwrap() error {
	return ErrStaleVersion
}

// AuditWriteFailureError wraps the sink error that aborted a mutation.
// It unwraps to the sentinel; the underlying sink error stays in Cause.
type AuditWriteFailureError struct {
	EventType string
	Cause     error
}

func NewAuditWriteFailureError(eventType string, cause error) *AuditWriteFailureError {
	return &AuditWriteFailureError{
		EventType: eventType,
		Cause:     cause,
	}
}

func (e *AuditWriteFailureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrAuditWriteFailure, e.EventType, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrAuditWriteFailure, e.EventType)
}

func (e *AuditWriteFailureError) Unwrap() error {
	return ErrAuditWriteFailure
}

func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}
