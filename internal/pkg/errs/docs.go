// Package errs provides standardized error types for the e-billing service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ObjectNotFoundError: For when an object cannot be found
//   - InvalidTransitionError, NotOpenError, AlreadyExportedError, StaleVersionError:
//     lifecycle violations on invoices and exceptions
//   - UnauthorizedError: the acting role lacks the permission for a command
//   - ForeignSupplierError: a supplier acting on another supplier's invoice; it
//     matches both ErrUnauthorized and ErrForeignSupplier
//   - AuditWriteFailureError: the audit trail could not be appended, the mutation is aborted
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Callers classify failures with errors.Is against the sentinels, or errors.As
// against the struct types when they need the details.
package errs
