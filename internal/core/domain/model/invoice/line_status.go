package invoice

import (
	"fmt"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// LineStatus is the cached state of a line item. It is never set directly;
// ReduceLineStatus recomputes it from the line's facts and exceptions.
type LineStatus int

const (
	LineStatusUnknown LineStatus = iota
	LinePending
	LineClassified
	LineValidated
	LineException
	LineOverride
	LineResolved
	LineDenied
)

func getLineStatusStrings() map[LineStatus]string {
	return map[LineStatus]string{
		LineStatusUnknown: "UNKNOWN",
		LinePending:       "PENDING",
		LineClassified:    "CLASSIFIED",
		LineValidated:     "VALIDATED",
		LineException:     "EXCEPTION",
		LineOverride:      "OVERRIDE",
		LineResolved:      "RESOLVED",
		LineDenied:        "DENIED",
	}
}

func ParseLineStatus(s string) (LineStatus, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getLineStatusStrings() {
		if status != LineStatusUnknown && str == want {
			return status, nil
		}
	}
	return LineStatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"line status is invalid", fmt.Errorf("%q is not a valid line status", s))
}

func (s LineStatus) Validate() error {
	if s <= LineStatusUnknown || s > LineDenied {
		return errs.NewValueIsInvalidErrorWithCause("line status is invalid", fmt.Errorf("%d is not a valid line status", s))
	}
	return nil
}

func (s LineStatus) String() string {
	if str, ok := getLineStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// LineFacts are the progress flags a validation pass or an override sets on a line.
type LineFacts struct {
	Classified bool
	Validated  bool
	Overridden bool
}

// ReduceLineStatus derives a line's status. The first matching rule wins:
//
//	DENIED      an exception was resolved as DENIED
//	OVERRIDE    a reviewer rewrote the classification
//	EXCEPTION   an exception is still OPEN or SUPPLIER_RESPONDED
//	RESOLVED    exceptions were raised and all are closed
//	VALIDATED   validated without findings
//	CLASSIFIED  mapped to a taxonomy code
//	PENDING     nothing has happened yet
func ReduceLineStatus(facts LineFacts, exceptions []*Exception) LineStatus {
	var anyOpen, anyDenied bool
	for _, e := range exceptions {
		if e.IsDenied() {
			anyDenied = true
		}
		if !e.IsTerminal() {
			anyOpen = true
		}
	}

	switch {
	case anyDenied:
		return LineDenied
	case facts.Overridden:
		return LineOverride
	case anyOpen:
		return LineException
	case len(exceptions) > 0:
		return LineResolved
	case facts.Validated:
		return LineValidated
	case facts.Classified:
		return LineClassified
	default:
		return LinePending
	}
}
