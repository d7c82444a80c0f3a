// Package guard holds the constructor guard shared by domain objects, commands
// and queries. A zero-value struct carrying a guard fails Validate, so values
// that skipped their constructor cannot reach a handler or a repository.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes no error of its own.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks a value as built by its constructor.
//
// Example:
//
//	type SubmitInvoiceCommand struct {
//	    invoiceID kernel.UUID
//	    guard     guard.ConstructorGuard
//	}
//
//	func (c SubmitInvoiceCommand) Validate() error {
//	    return c.guard.Validate(ErrSubmitInvoiceCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that validates successfully.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
