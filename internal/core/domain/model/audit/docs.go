// Package audit defines the append-only event record written for every mutation
// of an invoice, its lines, its exceptions and the mapping rules derived from them.
package audit
