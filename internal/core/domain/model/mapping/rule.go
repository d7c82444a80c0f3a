package mapping

import (
	"errors"
	"strings"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// ErrRuleIsNotConstructed is returned for a zero-value Rule.
var ErrRuleIsNotConstructed = errors.New("Rule must be created via NewRule or RestoreRule")

// Key identifies the one active rule per scope, supplier and signature.
// SupplierID is the zero UUID for GLOBAL rules.
type Key struct {
	Scope      Scope
	SupplierID kernel.UUID
	Signature  Signature
}

// NewKey builds the upsert key for an override.
func NewKey(scope Scope, supplierID kernel.UUID, signature Signature) (Key, error) {
	if err := scope.Validate(); err != nil {
		return Key{}, err
	}
	if !scope.Persisted() {
		return Key{}, errs.NewValueIsInvalidError("LINE overrides are not stored as rules")
	}
	if signature == "" {
		return Key{}, errs.NewValueIsRequiredError("signature")
	}
	if scope == ScopeGlobal {
		return Key{Scope: scope, Signature: signature}, nil
	}
	if err := supplierID.Validate(); err != nil {
		return Key{}, errs.NewValueIsRequiredErrorWithCause("supplierID", err)
	}
	return Key{Scope: scope, SupplierID: supplierID, Signature: signature}, nil
}

// Rule is a stored mapping override. Revising a rule never edits it in place:
// Supersede retires it and returns its successor, so the chain of versions
// stays readable through SupersedesRuleID.
type Rule struct {
	id                kernel.UUID
	key               Key
	taxonomyCode      string
	billingComponent  string
	sourceExceptionID *kernel.UUID
	version           int
	supersedesRuleID  *kernel.UUID
	active            bool
	notes             string
	createdBy         string
	createdAt         time.Time
	updatedAt         time.Time
	isConstructed     bool
}

// RuleParams are the inputs for a new rule.
type RuleParams struct {
	Key               Key
	TaxonomyCode      string
	BillingComponent  string
	SourceExceptionID *kernel.UUID
	Notes             string
}

// NewRule creates version 1 of a rule.
func NewRule(id kernel.UUID, p RuleParams, actor kernel.Actor, now time.Time) (*Rule, error) {
	if err := errors.Join(id.Validate(), validateParams(p), actor.Validate()); err != nil {
		return nil, err
	}
	return &Rule{
		id:                id,
		key:               p.Key,
		taxonomyCode:      p.TaxonomyCode,
		billingComponent:  p.BillingComponent,
		sourceExceptionID: p.SourceExceptionID,
		version:           1,
		active:            true,
		notes:             p.Notes,
		createdBy:         actor.String(),
		createdAt:         now,
		updatedAt:         now,
		isConstructed:     true,
	}, nil
}

// RuleState is the persisted form of a Rule.
type RuleState struct {
	ID                kernel.UUID
	Key               Key
	TaxonomyCode      string
	BillingComponent  string
	SourceExceptionID *kernel.UUID
	Version           int
	SupersedesRuleID  *kernel.UUID
	Active            bool
	Notes             string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func RestoreRule(s RuleState) (*Rule, error) {
	var versionErr error
	if s.Version < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("version", s.Version, 1, "unbounded")
	}
	p := RuleParams{Key: s.Key, TaxonomyCode: s.TaxonomyCode, BillingComponent: s.BillingComponent}
	if err := errors.Join(s.ID.Validate(), validateParams(p), versionErr); err != nil {
		return nil, err
	}
	return &Rule{
		id:                s.ID,
		key:               s.Key,
		taxonomyCode:      s.TaxonomyCode,
		billingComponent:  s.BillingComponent,
		sourceExceptionID: s.SourceExceptionID,
		version:           s.Version,
		supersedesRuleID:  s.SupersedesRuleID,
		active:            s.Active,
		notes:             s.Notes,
		createdBy:         s.CreatedBy,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		isConstructed:     true,
	}, nil
}

func (r *Rule) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRuleIsNotConstructed
	}
	return nil
}

func (r *Rule) ID() kernel.UUID                 { return r.id }
func (r *Rule) Key() Key                        { return r.key }
func (r *Rule) Scope() Scope                    { return r.key.Scope }
func (r *Rule) Signature() Signature            { return r.key.Signature }
func (r *Rule) TaxonomyCode() string            { return r.taxonomyCode }
func (r *Rule) BillingComponent() string        { return r.billingComponent }
func (r *Rule) SourceExceptionID() *kernel.UUID { return r.sourceExceptionID }
func (r *Rule) Version() int                    { return r.version }
func (r *Rule) SupersedesRuleID() *kernel.UUID  { return r.supersedesRuleID }
func (r *Rule) IsActive() bool                  { return r.active }
func (r *Rule) Notes() string                   { return r.notes }
func (r *Rule) CreatedBy() string               { return r.createdBy }
func (r *Rule) CreatedAt() time.Time            { return r.createdAt }
func (r *Rule) UpdatedAt() time.Time            { return r.updatedAt }

// SupplierID returns the supplier of a SUPPLIER rule.
func (r *Rule) SupplierID() (kernel.UUID, bool) {
	if r.key.Scope != ScopeSupplier {
		return kernel.UUID{}, false
	}
	return r.key.SupplierID, true
}

// Maps reports whether the rule already assigns code and component.
func (r *Rule) Maps(code, component string) bool {
	return r.taxonomyCode == code && r.billingComponent == component
}

func (r *Rule) State() RuleState {
	return RuleState{
		ID:                r.id,
		Key:               r.key,
		TaxonomyCode:      r.taxonomyCode,
		BillingComponent:  r.billingComponent,
		SourceExceptionID: r.sourceExceptionID,
		Version:           r.version,
		SupersedesRuleID:  r.supersedesRuleID,
		Active:            r.active,
		Notes:             r.notes,
		CreatedBy:         r.createdBy,
		CreatedAt:         r.createdAt,
		UpdatedAt:         r.updatedAt,
	}
}

// Supersede retires r and returns the next version carrying the new mapping.
// Only an active rule can be superseded.
func (r *Rule) Supersede(nextID kernel.UUID, p RuleParams, actor kernel.Actor, now time.Time) (*Rule, error) {
	if !r.active {
		return nil, errs.NewValueIsInvalidError("rule is already superseded")
	}
	if p.Key != r.key {
		return nil, errs.NewValueIsInvalidError("successor must keep the rule key")
	}
	next, err := NewRule(nextID, p, actor, now)
	if err != nil {
		return nil, err
	}
	next.version = r.version + 1
	prev := r.id
	next.supersedesRuleID = &prev

	r.active = false
	r.updatedAt = now
	return next, nil
}

func validateParams(p RuleParams) error {
	var errList []error
	if err := p.Key.Scope.Validate(); err != nil {
		errList = append(errList, err)
	} else if !p.Key.Scope.Persisted() {
		errList = append(errList, errs.NewValueIsInvalidError("LINE overrides are not stored as rules"))
	}
	if p.Key.Signature == "" {
		errList = append(errList, errs.NewValueIsRequiredError("signature"))
	}
	if p.Key.Scope == ScopeSupplier {
		if err := p.Key.SupplierID.Validate(); err != nil {
			errList = append(errList, errs.NewValueIsRequiredErrorWithCause("supplierID", err))
		}
	}
	if p.Key.Scope == ScopeGlobal && !p.Key.SupplierID.IsZero() {
		errList = append(errList, errs.NewValueIsInvalidError("GLOBAL rules carry no supplier"))
	}
	if strings.TrimSpace(p.TaxonomyCode) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("taxonomyCode"))
	}
	if strings.TrimSpace(p.BillingComponent) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("billingComponent"))
	}
	return errors.Join(errList...)
}
