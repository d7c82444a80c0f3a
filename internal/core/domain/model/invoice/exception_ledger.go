package invoice

import (
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// RaiseException opens an exception on a current line for a result that calls for one.
// It reports whether an exception was created: results that pass, and results whose
// validation type already has an exception on that line in any status, are absorbed.
// A retried validation run therefore never duplicates findings.
func (i *Invoice) RaiseException(lineID kernel.UUID, result validation.Result, now time.Time) (bool, error) {
	line, err := i.currentLine(lineID)
	if err != nil {
		return false, err
	}
	if !result.RaisesException() {
		return false, nil
	}
	if line.exception(result.Type) != nil {
		return false, nil
	}

	exc, err := NewException(kernel.NewUUID(), lineID, result, now)
	if err != nil {
		return false, err
	}
	line.addException(exc)

	i.record(audit.NewEvent(i.ref(), audit.EntityException, exc.ID(), audit.EventExceptionRaised, kernel.SystemActor(), now).
		WithStates("", ExceptionOpen.String()).
		WithReason(result.Message).
		WithPayload(map[string]any{
			"line_item_id":    lineID.String(),
			"validation_type": string(result.Type),
			"severity":        string(exc.Severity()),
			"required_action": string(exc.RequiredAction()),
		}))
	i.touch(now)
	return true, nil
}

// RespondToException records the owning supplier's answer to an OPEN exception.
//
// When the invoice is in REVIEW_REQUIRED and the answer clears its last blocking
// exception, the invoice moves to SUPPLIER_RESPONDED and revalidate is true:
// the caller must run validation again and settle.
func (i *Invoice) RespondToException(
	exceptionID kernel.UUID,
	text string,
	actor kernel.Actor,
	now time.Time,
) (revalidate bool, err error) {
	if err := i.ensureOwner(actor, "respond"); err != nil {
		return false, err
	}
	exc, line, err := i.currentException(exceptionID)
	if err != nil {
		return false, err
	}
	if exc.Status() != ExceptionOpen {
		return false, errs.NewNotOpenError(exc.ID().String(), exc.Status().String())
	}
	if i.status != ReviewRequired && i.status != PendingCarrierReview && i.status != CarrierReviewing {
		return false, errs.NewInvalidTransitionError("invoice", i.status.String(), SupplierResponded.String())
	}
	if err := exc.respond(text); err != nil {
		return false, err
	}
	line.refreshStatus()

	i.record(audit.NewEvent(i.ref(), audit.EntityException, exc.ID(), audit.EventExceptionResponded, actor, now).
		WithStates(ExceptionOpen.String(), exc.Status().String()).
		WithReason(text))
	i.touch(now)

	if i.status != ReviewRequired {
		return false, nil
	}
	for _, l := range i.CurrentLines() {
		if l.HasBlockingException() {
			return false, nil
		}
	}
	if err := i.transition(SupplierResponded, actor, "all blocking exceptions answered", now); err != nil {
		return false, err
	}
	return true, nil
}

// ResolveException closes an OPEN or SUPPLIER_RESPONDED exception with a carrier decision.
// Resolving with DENIED zeroes the line's payable amount.
func (i *Invoice) ResolveException(
	exceptionID kernel.UUID,
	action ResolutionAction,
	notes string,
	actor kernel.Actor,
	now time.Time,
) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	exc, line, err := i.currentException(exceptionID)
	if err != nil {
		return err
	}
	if !i.inReview() {
		return errs.NewInvalidTransitionError("invoice", i.status.String(), "RESOLVE_EXCEPTION")
	}

	from := exc.Status()
	if err := exc.resolve(action, notes, actor, now); err != nil {
		return err
	}
	line.refreshStatus()

	i.record(audit.NewEvent(i.ref(), audit.EntityException, exc.ID(), audit.EventExceptionResolved, actor, now).
		WithStates(from.String(), exc.Status().String()).
		WithReason(notes).
		WithPayload(map[string]any{"resolution_action": action.String()}))
	i.touch(now)
	return nil
}

// waiveAllOpen force-waives every non-terminal exception on every version,
// queuing one audit event per exception. It returns how many were waived.
func (i *Invoice) waiveAllOpen(actor kernel.Actor, now time.Time) int {
	var waived int
	for _, line := range i.Lines() {
		touched := false
		for _, exc := range line.exceptions {
			if exc.IsTerminal() {
				continue
			}
			from := exc.Status()
			if err := exc.waive("waived on approval", actor, now); err != nil {
				continue
			}
			waived++
			touched = true
			i.record(audit.NewEvent(i.ref(), audit.EntityException, exc.ID(), audit.EventExceptionWaived, actor, now).
				WithStates(from.String(), exc.Status().String()).
				WithReason("waived on approval"))
		}
		if touched {
			line.refreshStatus()
		}
	}
	return waived
}

// currentException finds an exception that supplier and carrier may still act on.
// Exceptions on superseded versions are history and fail with StaleVersion.
func (i *Invoice) currentException(exceptionID kernel.UUID) (*Exception, *LineItem, error) {
	exc, line, err := i.Exception(exceptionID)
	if err != nil {
		return nil, nil, err
	}
	if line.Version() != i.currentVersion {
		return nil, nil, errs.NewStaleVersionError(i.id.String(), i.status.String(), line.Version())
	}
	return exc, line, nil
}
