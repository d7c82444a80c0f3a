// Package services holds the domain services that work across the invoice
// aggregate and the mapping rules:
//
//   - ValidationPass runs classification and validation over the current lines
//     of an invoice and feeds the findings into its exception ledger.
//   - MappingOverrideResolver applies a reviewer's reclassification to a line and
//     turns it into a stored SUPPLIER or GLOBAL rule when asked to.
//
// Neither service persists anything; command handlers load the aggregate, call a
// service and save the result inside one unit of work.
package services
