package kernel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"
)

// Role is the kind of party issuing a command.
type Role string

const (
	// RoleSupplier is the vendor that bills the carrier.
	RoleSupplier Role = "SUPPLIER"
	// RoleCarrier is the carrier's claims reviewer.
	RoleCarrier Role = "CARRIER"
	// RoleAdmin is a carrier administrator: everything a carrier can do plus mapping overrides.
	RoleAdmin Role = "ADMIN"
	// RoleSystem is the validation pipeline and scheduled jobs.
	RoleSystem Role = "SYSTEM"
)

// ErrActorIsNotConstructed is returned when a zero-value Actor reaches a command.
var ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor or NewSupplierActor")

// ParseRole accepts a role name in any letter case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate rejects names outside the four known roles.
func (r Role) Validate() error {
	switch r {
	case RoleSupplier, RoleCarrier, RoleAdmin, RoleSystem:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor is who issued a command. Suppliers always carry the supplier they act for,
// which ownership checks compare against the invoice's supplier.
type Actor struct {
	role       Role
	id         string
	supplierID UUID
	guard      guard.ConstructorGuard
}

// NewActor builds a carrier, admin or system actor.
// Supplier actors must go through NewSupplierActor.
func NewActor(role Role, id string) (Actor, error) {
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	if role == RoleSupplier {
		return Actor{}, errs.NewValueIsRequiredError("supplierID")
	}
	if strings.TrimSpace(id) == "" {
		return Actor{}, errs.NewValueIsRequiredError("actorID")
	}

	return Actor{role: role, id: id, guard: guard.NewConstructorGuard()}, nil
}

// NewSupplierActor builds an actor acting on behalf of supplierID.
func NewSupplierActor(id string, supplierID UUID) (Actor, error) {
	if strings.TrimSpace(id) == "" {
		return Actor{}, errs.NewValueIsRequiredError("actorID")
	}
	if err := supplierID.Validate(); err != nil {
		return Actor{}, err
	}

	return Actor{role: RoleSupplier, id: id, supplierID: supplierID, guard: guard.NewConstructorGuard()}, nil
}

// SystemActor is the identity the validation pipeline records in the audit trail.
func SystemActor() Actor {
	return Actor{role: RoleSystem, id: "system", guard: guard.NewConstructorGuard()}
}

func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

func (a Actor) Role() Role {
	return a.role
}

func (a Actor) ID() string {
	return a.id
}

// SupplierID returns the supplier a supplier actor works for; ok is false for other roles.
func (a Actor) SupplierID() (UUID, bool) {
	if a.role != RoleSupplier {
		return UUID{}, false
	}
	return a.supplierID, true
}

// ActsFor reports whether a supplier actor belongs to supplierID. Non-supplier roles never do.
func (a Actor) ActsFor(supplierID UUID) bool {
	return a.role == RoleSupplier && a.supplierID.IsEqual(supplierID)
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.role, a.id)
}
