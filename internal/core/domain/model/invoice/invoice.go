package invoice

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/audit"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrInvoiceIsNotConstructed is returned for a zero-value Invoice.
var ErrInvoiceIsNotConstructed = errors.New("Invoice must be created via NewInvoice or RestoreInvoice")

// Invoice is the aggregate root. It owns every version of its line items and,
// through them, every exception. All changes go through its methods, which
// guard the status transition table and queue one audit event per change.
//
// Invoice is not safe for concurrent use; callers serialize mutations of one
// invoice with a per-invoice lock.
type Invoice struct {
	id             kernel.UUID
	supplierID     kernel.UUID
	contractID     kernel.UUID
	invoiceNumber  string
	invoiceDate    time.Time
	status         Status
	currentVersion int
	submittedAt    *time.Time
	notes          string
	createdAt      time.Time
	updatedAt      time.Time
	lines          []*LineItem
	pendingEvents  []audit.Event
	isConstructed  bool
}

// NewInvoice opens a DRAFT invoice at version 1 with no lines.
//
// Example:
//
//	inv, err := invoice.NewInvoice(kernel.NewUUID(), supplierID, contractID, "INV-1001", invoiceDate, actor, time.Now())
func NewInvoice(
	id, supplierID, contractID kernel.UUID,
	invoiceNumber string,
	invoiceDate time.Time,
	actor kernel.Actor,
	now time.Time,
) (*Invoice, error) {
	inv := &Invoice{
		status:         Draft,
		currentVersion: 1,
		createdAt:      now,
		updatedAt:      now,
		isConstructed:  true,
	}

	if err := errors.Join(
		inv.setID(id),
		inv.setSupplierID(supplierID),
		inv.setContractID(contractID),
		inv.setInvoiceNumber(invoiceNumber),
		inv.setInvoiceDate(invoiceDate),
		actor.Validate(),
	); err != nil {
		return nil, err
	}

	inv.record(audit.NewEvent(inv.ref(), audit.EntityInvoice, id, audit.EventInvoiceCreated, actor, now).
		WithStates("", Draft.String()).
		WithPayload(map[string]any{"invoice_number": invoiceNumber}))

	return inv, nil
}

// InvoiceState is the persisted form of an Invoice header.
type InvoiceState struct {
	ID             kernel.UUID
	SupplierID     kernel.UUID
	ContractID     kernel.UUID
	InvoiceNumber  string
	InvoiceDate    time.Time
	Status         Status
	CurrentVersion int
	SubmittedAt    *time.Time
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RestoreInvoice rebuilds an invoice and all its line versions from storage.
func RestoreInvoice(s InvoiceState, lines []*LineItem) (*Invoice, error) {
	var versionErr error
	if s.CurrentVersion < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("currentVersion", s.CurrentVersion, 1, "unbounded")
	}
	errList := []error{s.ID.Validate(), s.SupplierID.Validate(), s.ContractID.Validate(), s.Status.Validate(), versionErr}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			errList = append(errList, err)
			continue
		}
		if !l.InvoiceID().IsEqual(s.ID) {
			errList = append(errList, errs.NewValueIsInvalidError("line item belongs to another invoice"))
		}
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return &Invoice{
		id:             s.ID,
		supplierID:     s.SupplierID,
		contractID:     s.ContractID,
		invoiceNumber:  s.InvoiceNumber,
		invoiceDate:    s.InvoiceDate,
		status:         s.Status,
		currentVersion: s.CurrentVersion,
		submittedAt:    s.SubmittedAt,
		notes:          s.Notes,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
		lines:          append([]*LineItem(nil), lines...),
		isConstructed:  true,
	}, nil
}

func (i *Invoice) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrInvoiceIsNotConstructed
	}
	return nil
}

func (i *Invoice) ID() kernel.UUID         { return i.id }
func (i *Invoice) SupplierID() kernel.UUID { return i.supplierID }
func (i *Invoice) ContractID() kernel.UUID { return i.contractID }
func (i *Invoice) InvoiceNumber() string   { return i.invoiceNumber }
func (i *Invoice) InvoiceDate() time.Time  { return i.invoiceDate }
func (i *Invoice) Status() Status          { return i.status }
func (i *Invoice) CurrentVersion() int     { return i.currentVersion }
func (i *Invoice) SubmittedAt() *time.Time { return i.submittedAt }
func (i *Invoice) Notes() string           { return i.notes }
func (i *Invoice) CreatedAt() time.Time    { return i.createdAt }
func (i *Invoice) UpdatedAt() time.Time    { return i.updatedAt }

// State returns the persisted form of the header.
func (i *Invoice) State() InvoiceState {
	return InvoiceState{
		ID:             i.id,
		SupplierID:     i.supplierID,
		ContractID:     i.contractID,
		InvoiceNumber:  i.invoiceNumber,
		InvoiceDate:    i.invoiceDate,
		Status:         i.status,
		CurrentVersion: i.currentVersion,
		SubmittedAt:    i.submittedAt,
		Notes:          i.notes,
		CreatedAt:      i.createdAt,
		UpdatedAt:      i.updatedAt,
	}
}

// Lines returns the lines of every version, oldest version first.
func (i *Invoice) Lines() []*LineItem {
	lines := append([]*LineItem(nil), i.lines...)
	sortLines(lines)
	return lines
}

// LinesForVersion returns the lines of one version ordered by line number.
func (i *Invoice) LinesForVersion(version int) []*LineItem {
	var lines []*LineItem
	for _, l := range i.lines {
		if l.Version() == version {
			lines = append(lines, l)
		}
	}
	sortLines(lines)
	return lines
}

// CurrentLines returns the lines of the current version ordered by line number.
func (i *Invoice) CurrentLines() []*LineItem {
	return i.LinesForVersion(i.currentVersion)
}

// Line finds a line of any version.
func (i *Invoice) Line(lineID kernel.UUID) (*LineItem, error) {
	for _, l := range i.lines {
		if l.ID().IsEqual(lineID) {
			return l, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("lineItem", lineID.String())
}

// Exception finds an exception and the line that owns it.
func (i *Invoice) Exception(exceptionID kernel.UUID) (*Exception, *LineItem, error) {
	for _, l := range i.lines {
		for _, e := range l.exceptions {
			if e.ID().IsEqual(exceptionID) {
				return e, l, nil
			}
		}
	}
	return nil, nil, errs.NewObjectNotFoundError("exception", exceptionID.String())
}

// PendingEvents returns the audit events queued since the invoice was loaded or created.
func (i *Invoice) PendingEvents() []audit.Event {
	return append([]audit.Event(nil), i.pendingEvents...)
}

// ClearPendingEvents drops queued events once they are durably appended.
func (i *Invoice) ClearPendingEvents() {
	i.pendingEvents = nil
}

// Submit hands the invoice to the carrier with the given parsed lines.
//
// From DRAFT at least one line is required and the lines become version 1.
// From REVIEW_REQUIRED the call is a resubmission: the version is bumped and the
// lines are attached as new rows, leaving earlier rows and their exceptions intact.
// From any other status the supplier is working from a stale version and
// the call fails with StaleVersion.
func (i *Invoice) Submit(actor kernel.Actor, parsed []ParsedLine, now time.Time) error {
	if err := i.ensureOwner(actor, "submit"); err != nil {
		return err
	}

	switch i.status {
	case Draft:
		if len(parsed) == 0 && len(i.CurrentLines()) == 0 {
			return errs.NewValueIsRequiredError("lines")
		}
	case ReviewRequired:
		if len(parsed) == 0 {
			return errs.NewValueIsRequiredError("lines")
		}
	default:
		return errs.NewStaleVersionError(i.id.String(), i.status.String(), i.currentVersion)
	}
	if err := validateParsedLines(parsed); err != nil {
		return err
	}

	reason := "submitted"
	if i.status == ReviewRequired {
		i.currentVersion++
		reason = fmt.Sprintf("resubmitted as version %d", i.currentVersion)
	}
	if len(parsed) > 0 {
		if err := i.attachLines(actor, parsed, now); err != nil {
			return err
		}
	}
	if err := i.transition(Submitted, actor, reason, now); err != nil {
		return err
	}
	i.submittedAt = &now
	return nil
}

// BeginValidation moves a SUBMITTED invoice into PROCESSING. It reports false
// without error when a previous run already left the invoice in PROCESSING,
// which is how a retried run resumes.
func (i *Invoice) BeginValidation(actor kernel.Actor, now time.Time) (bool, error) {
	if i.status == Processing {
		return false, nil
	}
	if err := i.transition(Processing, actor, "validation run started", now); err != nil {
		return false, err
	}
	return true, nil
}

// ClassifyLine records a mapping suggestion on a current line.
func (i *Invoice) ClassifyLine(lineID kernel.UUID, suggestion validation.MappingSuggestion, now time.Time) error {
	line, err := i.currentLine(lineID)
	if err != nil {
		return err
	}
	if err := line.classify(suggestion); err != nil {
		return err
	}

	payload := map[string]any{
		"taxonomy_code":     suggestion.TaxonomyCode,
		"billing_component": suggestion.BillingComponent,
		"confidence":        string(suggestion.Confidence),
	}
	if suggestion.RuleID != nil {
		payload["mapping_rule_id"] = suggestion.RuleID.String()
	}
	i.record(audit.NewEvent(i.ref(), audit.EntityLineItem, lineID, audit.EventLineClassified, kernel.SystemActor(), now).
		WithPayload(payload))
	i.touch(now)
	return nil
}

// SetExpectedAmount stores the contracted amount the engine computed for a current line.
func (i *Invoice) SetExpectedAmount(lineID kernel.UUID, amount decimal.Decimal) error {
	line, err := i.currentLine(lineID)
	if err != nil {
		return err
	}
	line.setExpectedAmount(amount)
	return nil
}

// MarkLineValidated records that the engine has validated a current line.
func (i *Invoice) MarkLineValidated(lineID kernel.UUID) error {
	line, err := i.currentLine(lineID)
	if err != nil {
		return err
	}
	line.markValidated()
	return nil
}

// SettleValidation derives the post-validation status from the current lines.
// It is legal only while PROCESSING or SUPPLIER_RESPONDED.
func (i *Invoice) SettleValidation(actor kernel.Actor, now time.Time) error {
	if i.status != Processing && i.status != SupplierResponded {
		return errs.NewInvalidTransitionError("invoice", i.status.String(), PendingCarrierReview.String())
	}

	next := DeriveStatus(i.status, i.CurrentLines())
	reason := "no blocking exceptions"
	if next == ReviewRequired {
		reason = "blocking exceptions open"
	}
	return i.transition(next, actor, reason, now)
}

// OpenForReview marks that a carrier reviewer has picked the invoice up.
func (i *Invoice) OpenForReview(actor kernel.Actor, now time.Time) error {
	return i.transition(CarrierReviewing, actor, "opened for review", now)
}

// Approve waives every non-terminal exception, one audit event each, and moves the
// invoice to APPROVED. It returns how many exceptions were waived.
// Approval always covers the whole invoice; individual lines are denied through ResolveException.
func (i *Invoice) Approve(actor kernel.Actor, notes string, now time.Time) (int, error) {
	if _, err := i.status.TransitionTo(Approved); err != nil {
		return 0, err
	}

	waived := i.waiveAllOpen(actor, now)
	if err := i.transition(Approved, actor, notes, now); err != nil {
		return 0, err
	}
	return waived, nil
}

// RequestChanges sends the invoice back to the supplier. Notes are mandatory.
func (i *Invoice) RequestChanges(actor kernel.Actor, notes string, now time.Time) error {
	if strings.TrimSpace(notes) == "" {
		return errs.NewValueIsRequiredError("notes")
	}
	if i.status != PendingCarrierReview && i.status != CarrierReviewing {
		return errs.NewInvalidTransitionError("invoice", i.status.String(), ReviewRequired.String())
	}
	if err := i.transition(ReviewRequired, actor, notes, now); err != nil {
		return err
	}
	i.notes = notes
	return nil
}

// Dispute terminates an active invoice. A reason is mandatory.
func (i *Invoice) Dispute(actor kernel.Actor, reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if err := i.transition(Disputed, actor, reason, now); err != nil {
		return err
	}
	i.notes = reason
	return nil
}

// MarkExported records a successful payment export. A second export fails
// with AlreadyExported and changes nothing.
func (i *Invoice) MarkExported(actor kernel.Actor, now time.Time) error {
	if i.status == Exported {
		return errs.NewAlreadyExportedError(i.id.String())
	}
	return i.transition(Exported, actor, "exported for payment", now)
}

// RecordExport queues the INVOICE_EXPORTED event for an export written to location.
func (i *Invoice) RecordExport(location string, lineCount int, actor kernel.Actor, now time.Time) {
	i.record(audit.NewEvent(i.ref(), audit.EntityInvoice, i.id, audit.EventInvoiceExported, actor, now).
		WithPayload(map[string]any{
			"location":   location,
			"line_count": lineCount,
			"version":    i.currentVersion,
		}))
}

// Withdraw abandons a DRAFT invoice.
func (i *Invoice) Withdraw(actor kernel.Actor, reason string, now time.Time) error {
	if err := i.ensureOwner(actor, "withdraw"); err != nil {
		return err
	}
	return i.transition(Withdrawn, actor, reason, now)
}

// OverrideLineMapping rewrites a current line's classification by hand.
// The line's status becomes OVERRIDE.
func (i *Invoice) OverrideLineMapping(lineID kernel.UUID, code, component, notes string, actor kernel.Actor, now time.Time) error {
	if !i.inReview() {
		return errs.NewInvalidTransitionError("invoice", i.status.String(), "OVERRIDE_MAPPING")
	}
	if err := errors.Join(requireText("taxonomyCode", code), requireText("billingComponent", component)); err != nil {
		return err
	}
	line, err := i.currentLine(lineID)
	if err != nil {
		return err
	}

	previous := line.TaxonomyCode()
	line.override(code, component)
	i.record(audit.NewEvent(i.ref(), audit.EntityLineItem, lineID, audit.EventMappingOverridden, actor, now).
		WithStates(previous, code).
		WithReason(notes).
		WithPayload(map[string]any{"billing_component": component}))
	i.touch(now)
	return nil
}

// RecordRuleChange queues the audit event for a mapping rule written while
// overriding one of this invoice's lines.
func (i *Invoice) RecordRuleChange(
	ruleID kernel.UUID,
	eventType audit.EventType,
	payload map[string]any,
	actor kernel.Actor,
	now time.Time,
) {
	i.record(audit.NewEvent(i.ref(), audit.EntityMappingRule, ruleID, eventType, actor, now).WithPayload(payload))
}

// Snapshot is the command result: status, version and the current lines.
func (i *Invoice) Snapshot() Snapshot {
	current := i.CurrentLines()
	lines := make([]LineSnapshot, 0, len(current))
	for _, l := range current {
		lines = append(lines, LineSnapshot{ID: l.ID(), LineNumber: l.LineNumber(), Status: l.Status()})
	}
	return Snapshot{InvoiceID: i.id, Status: i.status, Version: i.currentVersion, Lines: lines}
}

// Summary totals the current version.
func (i *Invoice) Summary() Summary {
	current := i.CurrentLines()
	rows := make([]SummaryLine, 0, len(current))
	for _, l := range current {
		rows = append(rows, l.SummaryLine())
	}
	return Summarize(rows)
}

func (i *Invoice) transition(to Status, actor kernel.Actor, reason string, now time.Time) error {
	from := i.status
	next, err := from.TransitionTo(to)
	if err != nil {
		return err
	}
	i.status = next
	i.record(audit.NewEvent(i.ref(), audit.EntityInvoice, i.id, audit.EventInvoiceTransitioned, actor, now).
		WithStates(from.String(), next.String()).
		WithReason(reason).
		WithPayload(map[string]any{"version": i.currentVersion}))
	i.touch(now)
	return nil
}

func (i *Invoice) attachLines(actor kernel.Actor, parsed []ParsedLine, now time.Time) error {
	added := make([]*LineItem, 0, len(parsed))
	for _, p := range parsed {
		line, err := NewLineItem(kernel.NewUUID(), i.id, i.currentVersion, p)
		if err != nil {
			return err
		}
		added = append(added, line)
	}
	i.lines = append(i.lines, added...)
	i.record(audit.NewEvent(i.ref(), audit.EntityInvoice, i.id, audit.EventLinesAttached, actor, now).
		WithPayload(map[string]any{"version": i.currentVersion, "line_count": len(added)}))
	return nil
}

func (i *Invoice) currentLine(lineID kernel.UUID) (*LineItem, error) {
	line, err := i.Line(lineID)
	if err != nil {
		return nil, err
	}
	if line.Version() != i.currentVersion {
		return nil, errs.NewStaleVersionError(i.id.String(), i.status.String(), line.Version())
	}
	return line, nil
}

// inReview reports whether exceptions and mappings may be worked on.
func (i *Invoice) inReview() bool {
	switch i.status {
	case ReviewRequired, SupplierResponded, PendingCarrierReview, CarrierReviewing:
		return true
	default:
		return false
	}
}

func (i *Invoice) ensureOwner(actor kernel.Actor, action string) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if actor.Role() != kernel.RoleSupplier {
		return errs.NewUnauthorizedError(actor.Role().String(), action)
	}
	if !actor.ActsFor(i.supplierID) {
		return errs.NewForeignSupplierError(actor.Role().String(), action, i.id.String())
	}
	return nil
}

func (i *Invoice) record(ev audit.Event) {
	i.pendingEvents = append(i.pendingEvents, ev)
}

func (i *Invoice) touch(now time.Time) {
	if now.After(i.updatedAt) {
		i.updatedAt = now
	}
}

func (i *Invoice) ref() *kernel.UUID {
	id := i.id
	return &id
}

func (i *Invoice) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Invoice) setSupplierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("supplierID", err)
	}
	i.supplierID = id
	return nil
}

func (i *Invoice) setContractID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("contractID", err)
	}
	i.contractID = id
	return nil
}

func (i *Invoice) setInvoiceNumber(n string) error {
	if err := requireText("invoiceNumber", n); err != nil {
		return err
	}
	i.invoiceNumber = strings.TrimSpace(n)
	return nil
}

func (i *Invoice) setInvoiceDate(d time.Time) error {
	if d.IsZero() {
		return errs.NewValueIsRequiredError("invoiceDate")
	}
	i.invoiceDate = d
	return nil
}

func requireText(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

func validateParsedLines(parsed []ParsedLine) error {
	seen := make(map[int]struct{}, len(parsed))
	for _, p := range parsed {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.LineNumber]; dup {
			return errs.NewValueIsInvalidErrorWithCause("lines", fmt.Errorf("line number %d appears twice", p.LineNumber))
		}
		seen[p.LineNumber] = struct{}{}
	}
	return nil
}

func sortLines(lines []*LineItem) {
	sort.SliceStable(lines, func(a, b int) bool {
		if lines[a].Version() != lines[b].Version() {
			return lines[a].Version() < lines[b].Version()
		}
		return lines[a].LineNumber() < lines[b].LineNumber()
	})
}
