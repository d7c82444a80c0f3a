package invoice

import "github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

// Snapshot is what every command returns: where the invoice ended up and the
// status of each current line.
type Snapshot struct {
	InvoiceID kernel.UUID
	Status    Status
	Version   int
	Lines     []LineSnapshot
}

type LineSnapshot struct {
	ID         kernel.UUID
	LineNumber int
	Status     LineStatus
}

// LineStatus returns the status of the line with the given number.
func (s Snapshot) LineStatus(lineNumber int) (LineStatus, bool) {
	for _, l := range s.Lines {
		if l.LineNumber == lineNumber {
			return l.Status, true
		}
	}
	return LineStatusUnknown, false
}
