package invoice

import (
	"fmt"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// ExceptionStatus moves forward only. RESOLVED and WAIVED are terminal.
type ExceptionStatus int

const (
	ExceptionStatusUnknown ExceptionStatus = iota
	ExceptionOpen
	ExceptionSupplierResponded
	ExceptionResolved
	ExceptionWaived
)

func getExceptionStatusStrings() map[ExceptionStatus]string {
	return map[ExceptionStatus]string{
		ExceptionStatusUnknown:     "UNKNOWN",
		ExceptionOpen:              "OPEN",
		ExceptionSupplierResponded: "SUPPLIER_RESPONDED",
		ExceptionResolved:          "RESOLVED",
		ExceptionWaived:            "WAIVED",
	}
}

func getExceptionTransitions() map[ExceptionStatus][]ExceptionStatus {
	//nolint:exhaustive // terminal statuses have no outgoing edges
	return map[ExceptionStatus][]ExceptionStatus{
		ExceptionOpen:              {ExceptionSupplierResponded, ExceptionResolved, ExceptionWaived},
		ExceptionSupplierResponded: {ExceptionResolved, ExceptionWaived},
	}
}

func ParseExceptionStatus(s string) (ExceptionStatus, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getExceptionStatusStrings() {
		if status != ExceptionStatusUnknown && str == want {
			return status, nil
		}
	}
	return ExceptionStatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"exception status is invalid", fmt.Errorf("%q is not a valid exception status", s))
}

func (s ExceptionStatus) Validate() error {
	if s <= ExceptionStatusUnknown || s > ExceptionWaived {
		return errs.NewValueIsInvalidErrorWithCause(
			"exception status is invalid", fmt.Errorf("%d is not a valid exception status", s))
	}
	return nil
}

func (s ExceptionStatus) String() string {
	if str, ok := getExceptionStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s ExceptionStatus) IsTerminal() bool {
	return s == ExceptionResolved || s == ExceptionWaived
}

// TransitionTo enforces the forward-only exception machine. RESOLVED -> OPEN, for one, always fails.
func (s ExceptionStatus) TransitionTo(next ExceptionStatus) (ExceptionStatus, error) {
	for _, allowed := range getExceptionTransitions()[s] {
		if allowed == next {
			return next, nil
		}
	}
	return s, errs.NewInvalidTransitionError("exception", s.String(), next.String())
}

// ResolutionAction records how a carrier closed an exception.
type ResolutionAction string

const (
	ResolutionWaived            ResolutionAction = "WAIVED"
	ResolutionHeldContractRate  ResolutionAction = "HELD_CONTRACT_RATE"
	ResolutionReclassified      ResolutionAction = "RECLASSIFIED"
	ResolutionAcceptedReduction ResolutionAction = "ACCEPTED_REDUCTION"
	ResolutionDenied            ResolutionAction = "DENIED"
)

func ParseResolutionAction(s string) (ResolutionAction, error) {
	a := ResolutionAction(strings.ToUpper(strings.TrimSpace(s)))
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

func (a ResolutionAction) Validate() error {
	switch a {
	case ResolutionWaived, ResolutionHeldContractRate, ResolutionReclassified,
		ResolutionAcceptedReduction, ResolutionDenied:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"resolution action", fmt.Errorf("%q is not a known resolution action", string(a)))
	}
}

// PaysContractRate reports whether the line should be paid at the expected amount
// rather than what the supplier billed.
func (a ResolutionAction) PaysContractRate() bool {
	return a == ResolutionHeldContractRate || a == ResolutionAcceptedReduction
}

func (a ResolutionAction) String() string {
	return string(a)
}
