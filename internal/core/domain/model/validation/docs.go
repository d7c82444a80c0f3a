// Package validation holds the vocabulary shared with the validation engine:
// the per-line input it receives, the results and mapping suggestions it returns,
// and the contract rate card and guideline set it validates against.
//
// The engine itself is an external collaborator; these are plain value types
// that cross that boundary in both directions.
package validation
