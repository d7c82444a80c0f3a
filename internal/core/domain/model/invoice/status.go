package invoice

import (
	"fmt"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// Status is the lifecycle state of an invoice.
//
// Happy path:
//
//	DRAFT ─> SUBMITTED ─> PROCESSING ─┬─> PENDING_CARRIER_REVIEW ─> CARRIER_REVIEWING ─> APPROVED ─> EXPORTED
//	                                  └─> REVIEW_REQUIRED ─> SUPPLIER_RESPONDED ─┘
//
// REVIEW_REQUIRED may also go back to SUBMITTED when the supplier resubmits a new version.
// DISPUTED, EXPORTED and WITHDRAWN are terminal.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Draft
	Submitted
	// Processing is held while a validation run is in flight. Actor commands are refused.
	Processing
	// ReviewRequired means at least one line carries a blocking exception, or a carrier asked for changes.
	ReviewRequired
	SupplierResponded
	PendingCarrierReview
	// CarrierReviewing is advisory. It does not lock other carrier users out.
	CarrierReviewing
	Approved
	Disputed
	Exported
	Withdrawn
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:              "UNKNOWN",
		Draft:                "DRAFT",
		Submitted:            "SUBMITTED",
		Processing:           "PROCESSING",
		ReviewRequired:       "REVIEW_REQUIRED",
		SupplierResponded:    "SUPPLIER_RESPONDED",
		PendingCarrierReview: "PENDING_CARRIER_REVIEW",
		CarrierReviewing:     "CARRIER_REVIEWING",
		Approved:             "APPROVED",
		Disputed:             "DISPUTED",
		Exported:             "EXPORTED",
		Withdrawn:            "WITHDRAWN",
	}
}

// getTransitions is the whole invoice state machine. A status that is missing
// from the map, or maps to nothing, is terminal.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal and unknown statuses have no outgoing edges
	return map[Status][]Status{
		Draft:                {Submitted, Withdrawn},
		Submitted:            {Processing, Disputed},
		Processing:           {ReviewRequired, PendingCarrierReview},
		ReviewRequired:       {SupplierResponded, Submitted, Disputed},
		SupplierResponded:    {ReviewRequired, PendingCarrierReview, Disputed},
		PendingCarrierReview: {CarrierReviewing, Approved, ReviewRequired, Disputed},
		CarrierReviewing:     {Approved, ReviewRequired, Disputed},
		Approved:             {Exported, Disputed},
	}
}

// ParseStatus reads the persisted or wire form, e.g. "REVIEW_REQUIRED".
func ParseStatus(s string) (Status, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == want {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Withdrawn {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Disputed || s == Exported || s == Withdrawn
}

// IsActive reports whether the invoice is in flight between submission and export,
// which is where a dispute may be raised.
func (s Status) IsActive() bool {
	switch s {
	case Submitted, ReviewRequired, SupplierResponded, PendingCarrierReview, CarrierReviewing, Approved:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range getTransitions()[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next when the edge s -> next exists, and an InvalidTransition error otherwise.
//
// Example:
//
//	next, err := invoice.PendingCarrierReview.TransitionTo(invoice.Approved)
//	// next == Approved, err == nil
//
//	_, err = invoice.Exported.TransitionTo(invoice.Approved)
//	// errors.Is(err, errs.ErrInvalidTransition)
func (s Status) TransitionTo(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, errs.NewInvalidTransitionError("invoice", s.String(), next.String())
	}
	return next, nil
}

// DeriveStatus is the aggregate reducer. anchor is the status the last command left
// the invoice in; lines are the lines of the current version.
//
// Only the two settling anchors depend on the lines: after a validation run
// (Processing) or a supplier response (SupplierResponded) the invoice goes to
// ReviewRequired while any line carries a blocking exception, and to
// PendingCarrierReview otherwise. Every other anchor is returned unchanged.
//
// The reducer is pure: calling it twice on the same input gives the same answer.
func DeriveStatus(anchor Status, lines []*LineItem) Status {
	if anchor != Processing && anchor != SupplierResponded {
		return anchor
	}
	for _, line := range lines {
		if line.HasBlockingException() {
			return ReviewRequired
		}
	}
	return PendingCarrierReview
}
