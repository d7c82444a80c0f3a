// Package kernel provides the domain primitives shared by every aggregate of the
// e-billing core.
//
// The package includes:
//   - UUID: the identifier value object used by invoices, lines, exceptions and rules
//   - Role and Actor: who issued a command, carried into authorization and the audit trail
//
// Both types reject their zero value through Validate, so identifiers and actors
// that skipped their constructors cannot reach the lifecycle code.
package kernel
