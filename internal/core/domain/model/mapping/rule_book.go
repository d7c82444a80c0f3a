package mapping

import (
	"sort"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
)

// RuleBook ranks the active rules that may apply to one supplier's lines.
type RuleBook struct {
	bySignature map[Signature][]*Rule
}

// NewRuleBook indexes the active rules among rules.
func NewRuleBook(rules []*Rule) *RuleBook {
	b := &RuleBook{bySignature: make(map[Signature][]*Rule)}
	for _, r := range rules {
		if r.Validate() != nil || !r.IsActive() {
			continue
		}
		b.bySignature[r.Signature()] = append(b.bySignature[r.Signature()], r)
	}
	for _, candidates := range b.bySignature {
		sort.SliceStable(candidates, func(i, j int) bool {
			return outranks(candidates[i], candidates[j])
		})
	}
	return b
}

// Match returns the best rule for a line of supplierID with signature sig.
// GLOBAL outranks SUPPLIER; within a scope the most recently updated rule wins.
// Another supplier's SUPPLIER rules never match.
func (b *RuleBook) Match(supplierID kernel.UUID, sig Signature) (*Rule, bool) {
	if b == nil {
		return nil, false
	}
	for _, r := range b.bySignature[sig] {
		switch r.Scope() {
		case ScopeGlobal:
			return r, true
		case ScopeSupplier:
			if r.key.SupplierID.IsEqual(supplierID) {
				return r, true
			}
		}
	}
	return nil, false
}

// Len is the number of active rules indexed.
func (b *RuleBook) Len() int {
	var n int
	for _, rules := range b.bySignature {
		n += len(rules)
	}
	return n
}

func outranks(a, b *Rule) bool {
	if a.Scope().rank() != b.Scope().rank() {
		return a.Scope().rank() > b.Scope().rank()
	}
	return a.UpdatedAt().After(b.UpdatedAt())
}
