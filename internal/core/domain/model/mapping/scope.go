package mapping

import (
	"fmt"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// Scope says how far an override reaches.
type Scope string

const (
	ScopeLine     Scope = "LINE"
	ScopeSupplier Scope = "SUPPLIER"
	ScopeGlobal   Scope = "GLOBAL"
)

func ParseScope(s string) (Scope, error) {
	scope := Scope(strings.ToUpper(strings.TrimSpace(s)))
	if err := scope.Validate(); err != nil {
		return "", err
	}
	return scope, nil
}

func (s Scope) Validate() error {
	switch s {
	case ScopeLine, ScopeSupplier, ScopeGlobal:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("scope", fmt.Errorf("%q is not a known scope", string(s)))
	}
}

// Persisted reports whether overrides in this scope are stored as rules.
func (s Scope) Persisted() bool {
	return s == ScopeSupplier || s == ScopeGlobal
}

// rank orders scopes for matching; higher wins.
func (s Scope) rank() int {
	switch s {
	case ScopeGlobal:
		return 2
	case ScopeSupplier:
		return 1
	default:
		return 0
	}
}

func (s Scope) String() string {
	return string(s)
}
