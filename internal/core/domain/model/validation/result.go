package validation

import (
	"errors"
	"fmt"

	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Type names the check that produced a result. Exceptions are deduplicated per (line, Type).
type Type string

const (
	TypeRate           Type = "RATE"
	TypeGuideline      Type = "GUIDELINE"
	TypeClassification Type = "CLASSIFICATION"
)

func (t Type) Validate() error {
	switch t {
	case TypeRate, TypeGuideline, TypeClassification:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("validation type", fmt.Errorf("%q is not a known type", string(t)))
	}
}

// Status is the outcome of a single check.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarning Status = "WARNING"
)

func (s Status) Validate() error {
	switch s {
	case StatusPass, StatusFail, StatusWarning:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("validation status", fmt.Errorf("%q is not a known status", string(s)))
	}
}

// Severity ranks how much attention a finding needs.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

func (s Severity) Validate() error {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("severity", fmt.Errorf("%q is not a known severity", string(s)))
	}
}

// RequiredAction is what the supplier has to do about a finding.
// Anything other than RequiredActionNone makes an OPEN exception blocking.
type RequiredAction string

const (
	RequiredActionNone                    RequiredAction = "NONE"
	RequiredActionReupload                RequiredAction = "REUPLOAD"
	RequiredActionAttachDoc               RequiredAction = "ATTACH_DOC"
	RequiredActionRequestReclassification RequiredAction = "REQUEST_RECLASSIFICATION"
	RequiredActionAcceptReduction         RequiredAction = "ACCEPT_REDUCTION"
)

func (a RequiredAction) Validate() error {
	switch a {
	case RequiredActionNone, RequiredActionReupload, RequiredActionAttachDoc,
		RequiredActionRequestReclassification, RequiredActionAcceptReduction:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("required action", fmt.Errorf("%q is not a known action", string(a)))
	}
}

// NeedsSupplier reports whether the action asks the supplier to explain or correct something.
func (a RequiredAction) NeedsSupplier() bool {
	return a != "" && a != RequiredActionNone
}

// Result is one finding returned by the engine for one line.
type Result struct {
	Type           Type
	Status         Status
	Severity       Severity
	RequiredAction RequiredAction
	Message        string
	// ExpectedAmount is the contracted amount for the line when the check could compute it.
	ExpectedAmount decimal.NullDecimal
}

// RaisesException reports whether the ledger must open an exception for this result:
// every failure, and warnings that carry a required action.
func (r Result) RaisesException() bool {
	switch r.Status {
	case StatusFail:
		return true
	case StatusWarning:
		return r.RequiredAction.NeedsSupplier()
	default:
		return false
	}
}

func (r Result) Validate() error {
	action := r.RequiredAction
	if action == "" {
		action = RequiredActionNone
	}
	return errors.Join(r.Type.Validate(), r.Status.Validate(), r.Severity.Validate(), action.Validate())
}
