package invoice

import (
	"errors"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ErrLineItemIsNotConstructed is returned for a zero-value LineItem.
var ErrLineItemIsNotConstructed = errors.New("LineItem must be created via NewLineItem or RestoreLineItem")

// ParsedLine is one line as it arrives from intake, before any classification.
type ParsedLine struct {
	LineNumber     int
	RawDescription string
	RawCode        string
	Unit           string
	Quantity       decimal.Decimal
	RawAmount      decimal.Decimal
}

func (p ParsedLine) Validate() error {
	var errList []error
	if p.LineNumber < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("lineNumber", p.LineNumber, 1, "unbounded"))
	}
	if strings.TrimSpace(p.RawDescription) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("rawDescription"))
	}
	if p.Quantity.IsNegative() {
		errList = append(errList, errs.NewValueIsOutOfRangeError("quantity", p.Quantity, 0, "unbounded"))
	}
	if p.RawAmount.IsNegative() {
		errList = append(errList, errs.NewValueIsOutOfRangeError("rawAmount", p.RawAmount, 0, "unbounded"))
	}
	return errors.Join(errList...)
}

// LineItem is one billed service on one version of an invoice.
// Rows from earlier versions stay attached to the invoice untouched.
type LineItem struct {
	id               kernel.UUID
	invoiceID        kernel.UUID
	version          int
	lineNumber       int
	rawDescription   string
	rawCode          string
	unit             string
	quantity         decimal.Decimal
	rawAmount        decimal.Decimal
	expectedAmount   decimal.NullDecimal
	taxonomyCode     string
	billingComponent string
	confidence       validation.Confidence
	mappingRuleID    *kernel.UUID
	facts            LineFacts
	status           LineStatus
	exceptions       []*Exception
	changed          bool
	isConstructed    bool
}

// NewLineItem creates a PENDING line for version of invoiceID.
func NewLineItem(id, invoiceID kernel.UUID, version int, parsed ParsedLine) (*LineItem, error) {
	var versionErr error
	if version < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("version", version, 1, "unbounded")
	}
	if err := errors.Join(id.Validate(), invoiceID.Validate(), versionErr, parsed.Validate()); err != nil {
		return nil, err
	}

	return &LineItem{
		id:             id,
		invoiceID:      invoiceID,
		version:        version,
		lineNumber:     parsed.LineNumber,
		rawDescription: parsed.RawDescription,
		rawCode:        parsed.RawCode,
		unit:           parsed.Unit,
		quantity:       parsed.Quantity,
		rawAmount:      parsed.RawAmount,
		status:         LinePending,
		changed:        true,
		isConstructed:  true,
	}, nil
}

// LineItemState is the persisted form of a LineItem, without its exceptions.
type LineItemState struct {
	ID               kernel.UUID
	InvoiceID        kernel.UUID
	Version          int
	LineNumber       int
	RawDescription   string
	RawCode          string
	Unit             string
	Quantity         decimal.Decimal
	RawAmount        decimal.Decimal
	ExpectedAmount   decimal.NullDecimal
	TaxonomyCode     string
	BillingComponent string
	Confidence       validation.Confidence
	MappingRuleID    *kernel.UUID
	Classified       bool
	Validated        bool
	Overridden       bool
}

// RestoreLineItem rebuilds a line and its exceptions loaded from storage.
// The cached status is recomputed rather than trusted.
func RestoreLineItem(s LineItemState, exceptions []*Exception) (*LineItem, error) {
	errList := []error{s.ID.Validate(), s.InvoiceID.Validate()}
	if s.Confidence != "" {
		errList = append(errList, s.Confidence.Validate())
	}
	for _, e := range exceptions {
		if err := e.Validate(); err != nil {
			errList = append(errList, err)
			continue
		}
		if !e.LineItemID().IsEqual(s.ID) {
			errList = append(errList, errs.NewValueIsInvalidError("exception belongs to another line"))
		}
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	l := &LineItem{
		id:               s.ID,
		invoiceID:        s.InvoiceID,
		version:          s.Version,
		lineNumber:       s.LineNumber,
		rawDescription:   s.RawDescription,
		rawCode:          s.RawCode,
		unit:             s.Unit,
		quantity:         s.Quantity,
		rawAmount:        s.RawAmount,
		expectedAmount:   s.ExpectedAmount,
		taxonomyCode:     s.TaxonomyCode,
		billingComponent: s.BillingComponent,
		confidence:       s.Confidence,
		mappingRuleID:    s.MappingRuleID,
		facts:            LineFacts{Classified: s.Classified, Validated: s.Validated, Overridden: s.Overridden},
		exceptions:       append([]*Exception(nil), exceptions...),
		isConstructed:    true,
	}
	l.status = ReduceLineStatus(l.facts, l.exceptions)
	return l, nil
}

func (l *LineItem) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLineItemIsNotConstructed
	}
	return nil
}

func (l *LineItem) ID() kernel.UUID                          { return l.id }
func (l *LineItem) InvoiceID() kernel.UUID                   { return l.invoiceID }
func (l *LineItem) Version() int                             { return l.version }
func (l *LineItem) LineNumber() int                          { return l.lineNumber }
func (l *LineItem) RawDescription() string                   { return l.rawDescription }
func (l *LineItem) RawCode() string                          { return l.rawCode }
func (l *LineItem) Unit() string                             { return l.unit }
func (l *LineItem) Quantity() decimal.Decimal                { return l.quantity }
func (l *LineItem) RawAmount() decimal.Decimal               { return l.rawAmount }
func (l *LineItem) ExpectedAmount() decimal.NullDecimal      { return l.expectedAmount }
func (l *LineItem) TaxonomyCode() string                     { return l.taxonomyCode }
func (l *LineItem) BillingComponent() string                 { return l.billingComponent }
func (l *LineItem) MappingConfidence() validation.Confidence { return l.confidence }
func (l *LineItem) MappingRuleID() *kernel.UUID              { return l.mappingRuleID }
func (l *LineItem) Facts() LineFacts                         { return l.facts }
func (l *LineItem) Status() LineStatus                       { return l.status }

// IsClassified reports whether the line has been mapped, by the engine, a rule or an override.
func (l *LineItem) IsClassified() bool { return l.facts.Classified }

func (l *LineItem) IsOverridden() bool { return l.facts.Overridden }

// HasChanges reports whether the line or one of its exceptions was created or
// modified since it was restored. Untouched rows need not be written back.
func (l *LineItem) HasChanges() bool { return l.changed }

// Exceptions returns the line's exceptions in the order they were raised.
func (l *LineItem) Exceptions() []*Exception {
	return append([]*Exception(nil), l.exceptions...)
}

// HasBlockingException reports whether any exception holds the invoice in review.
func (l *LineItem) HasBlockingException() bool {
	for _, e := range l.exceptions {
		if e.IsBlocking() {
			return true
		}
	}
	return false
}

// InDispute reports whether any exception on the line is still unresolved.
func (l *LineItem) InDispute() bool {
	for _, e := range l.exceptions {
		if !e.IsTerminal() {
			return true
		}
	}
	return false
}

func (l *LineItem) IsDenied() bool {
	return l.status == LineDenied
}

// PayableAmount is what the carrier owes for the line: nothing once denied,
// the expected amount when a resolution held the contract rate or accepted a
// reduction, and the billed amount otherwise.
func (l *LineItem) PayableAmount() decimal.Decimal {
	if l.IsDenied() {
		return decimal.Zero
	}
	for _, e := range l.exceptions {
		if e.Status() == ExceptionResolved && e.ResolutionAction().PaysContractRate() && l.expectedAmount.Valid {
			return l.expectedAmount.Decimal
		}
	}
	return l.rawAmount
}

// ValidationInput is the view of the line the engine works on.
func (l *LineItem) ValidationInput() validation.LineInput {
	return validation.LineInput{
		LineNumber:       l.lineNumber,
		RawDescription:   l.rawDescription,
		RawCode:          l.rawCode,
		Unit:             l.unit,
		Quantity:         l.quantity,
		RawAmount:        l.rawAmount,
		TaxonomyCode:     l.taxonomyCode,
		BillingComponent: l.billingComponent,
	}
}

// State returns the persisted form of the line.
func (l *LineItem) State() LineItemState {
	return LineItemState{
		ID:               l.id,
		InvoiceID:        l.invoiceID,
		Version:          l.version,
		LineNumber:       l.lineNumber,
		RawDescription:   l.rawDescription,
		RawCode:          l.rawCode,
		Unit:             l.unit,
		Quantity:         l.quantity,
		RawAmount:        l.rawAmount,
		ExpectedAmount:   l.expectedAmount,
		TaxonomyCode:     l.taxonomyCode,
		BillingComponent: l.billingComponent,
		Confidence:       l.confidence,
		MappingRuleID:    l.mappingRuleID,
		Classified:       l.facts.Classified,
		Validated:        l.facts.Validated,
		Overridden:       l.facts.Overridden,
	}
}

func (l *LineItem) classify(s validation.MappingSuggestion) error {
	if err := s.Confidence.Validate(); err != nil {
		return err
	}
	l.confidence = s.Confidence
	l.mappingRuleID = s.RuleID
	if s.Recognized() {
		l.taxonomyCode = s.TaxonomyCode
		l.billingComponent = s.BillingComponent
	}
	l.facts.Classified = true
	l.refreshStatus()
	return nil
}

func (l *LineItem) override(code, component string) {
	l.taxonomyCode = code
	l.billingComponent = component
	l.confidence = validation.ConfidenceHigh
	l.mappingRuleID = nil
	l.facts.Classified = true
	l.facts.Overridden = true
	l.refreshStatus()
}

func (l *LineItem) setExpectedAmount(amount decimal.Decimal) {
	l.expectedAmount = decimal.NewNullDecimal(amount)
	l.changed = true
}

func (l *LineItem) markValidated() {
	l.facts.Validated = true
	l.refreshStatus()
}

func (l *LineItem) exception(validationType validation.Type) *Exception {
	for _, e := range l.exceptions {
		if e.ValidationType() == validationType {
			return e
		}
	}
	return nil
}

func (l *LineItem) addException(e *Exception) {
	l.exceptions = append(l.exceptions, e)
	l.refreshStatus()
}

// refreshStatus follows every mutation of the line or its exceptions.
func (l *LineItem) refreshStatus() {
	l.status = ReduceLineStatus(l.facts, l.exceptions)
	l.changed = true
}
