package ports

import (
	"context"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"
)

// ContractTermsRepository is the source of rate cards and billing guidelines.
// A contract without stored terms yields an empty rate card rather than an error.
type ContractTermsRepository interface {
	Terms(ctx context.Context, contractID kernel.UUID) (validation.RateCard, validation.GuidelineSet, error)

	// ReplaceTerms swaps the whole term list of a contract.
	ReplaceTerms(ctx context.Context, contractID kernel.UUID, terms []validation.ContractTerm) error
}
