package contractrepo

import (
	"context"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"

	"gorm.io/gorm"
)

// GormContractTermsRepository implements ports.ContractTermsRepository using GORM.
type GormContractTermsRepository struct {
	db *gorm.DB
}

func NewGormContractTermsRepository(db *gorm.DB) *GormContractTermsRepository {
	return &GormContractTermsRepository{db: db}
}

// Terms loads the contract's rate card and guidelines. A contract with no rows
// yields empty ones.
func (r *GormContractTermsRepository) Terms(
	ctx context.Context,
	contractID kernel.UUID,
) (validation.RateCard, validation.GuidelineSet, error) {
	if err := contractID.Validate(); err != nil {
		return validation.RateCard{}, validation.GuidelineSet{}, err
	}

	var dtos []ContractRateDTO
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID.Bytes()).
		Order("taxonomy_code").
		Find(&dtos).Error
	if err != nil {
		return validation.RateCard{}, validation.GuidelineSet{}, err
	}

	terms := make([]validation.ContractTerm, 0, len(dtos))
	for _, dto := range dtos {
		terms = append(terms, toDomain(dto))
	}
	return validation.NewContractTerms(contractID, terms)
}

// ReplaceTerms deletes the contract's rows and inserts terms. The caller
// supplies the transaction.
func (r *GormContractTermsRepository) ReplaceTerms(
	ctx context.Context,
	contractID kernel.UUID,
	terms []validation.ContractTerm,
) error {
	if _, _, err := validation.NewContractTerms(contractID, terms); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err := db.Where("contract_id = ?", contractID.Bytes()).Delete(&ContractRateDTO{}).Error; err != nil {
		return err
	}
	if len(terms) == 0 {
		return nil
	}

	// A repeated code keeps its last entry, as NewContractTerms does.
	now := time.Now().UTC()
	dtos := make([]ContractRateDTO, 0, len(terms))
	position := make(map[string]int, len(terms))
	for _, term := range terms {
		dto := fromDomain(contractID.Bytes(), term, now)
		if i, seen := position[term.TaxonomyCode]; seen {
			dtos[i] = dto
			continue
		}
		position[term.TaxonomyCode] = len(dtos)
		dtos = append(dtos, dto)
	}
	return db.Create(&dtos).Error
}
