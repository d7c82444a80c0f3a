// Package contractrepo stores contract rate cards and billing guidelines, one
// row per contracted taxonomy code.
package contractrepo

import (
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractRateDTO struct {
	ContractID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	TaxonomyCode          string              `gorm:"size:64;primaryKey"`
	Rate                  decimal.Decimal     `gorm:"type:numeric(18,4)"`
	Unit                  string              `gorm:"size:32"`
	MaxUnits              decimal.NullDecimal `gorm:"type:numeric(18,4)"`
	RequiresDocumentation bool
	UpdatedAt             time.Time
}

func (ContractRateDTO) TableName() string {
	return "contract_rates"
}

func fromDomain(contractID uuid.UUID, term validation.ContractTerm, now time.Time) ContractRateDTO {
	return ContractRateDTO{
		ContractID:            contractID,
		TaxonomyCode:          term.TaxonomyCode,
		Rate:                  term.Rate,
		Unit:                  term.Unit,
		MaxUnits:              term.MaxUnits,
		RequiresDocumentation: term.RequiresDocumentation,
		UpdatedAt:             now,
	}
}

func toDomain(dto ContractRateDTO) validation.ContractTerm {
	return validation.ContractTerm{
		TaxonomyCode:          dto.TaxonomyCode,
		Rate:                  dto.Rate,
		Unit:                  dto.Unit,
		MaxUnits:              dto.MaxUnits,
		RequiresDocumentation: dto.RequiresDocumentation,
	}
}
