// Package invoice is the billing aggregate: an Invoice owns every version of its
// line items, and each line item owns the exceptions raised against it.
//
// Three state machines live here:
//
//   - Status, the invoice lifecycle. It only moves through TransitionTo, driven by an
//     explicit transition table, and its post-validation value is derived by DeriveStatus.
//   - LineStatus, a read model recomputed by ReduceLineStatus after every mutation.
//   - ExceptionStatus, forward only: OPEN, SUPPLIER_RESPONDED, then RESOLVED or WAIVED.
//
// Every mutation appends audit events to the aggregate; the application layer drains
// them with PendingEvents and must append all of them before committing.
package invoice
