package ports

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
)

// MappingRuleRepository stores SUPPLIER and GLOBAL override rules.
type MappingRuleRepository interface {
	Add(ctx context.Context, rule *mapping.Rule) error

	// Update persists a retired rule. Only the active flag and timestamps change.
	Update(ctx context.Context, rule *mapping.Rule) error

	// FindActive returns the active rule for key, or errs.ObjectNotFoundError.
	FindActive(ctx context.Context, key mapping.Key) (*mapping.Rule, error)

	// ListCandidates returns every active GLOBAL rule plus the active SUPPLIER rules of supplierID.
	ListCandidates(ctx context.Context, supplierID kernel.UUID) ([]*mapping.Rule, error)
}
