// Package mappingrulerepo stores mapping override rules. A rule is never
// deleted; a revision retires the active row and inserts its successor.
package mappingrulerepo

import (
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"

	"github.com/google/uuid"
)

// globalSupplierKey stands in for the supplier of GLOBAL rules so the
// active-key index covers both scopes.
const globalSupplierKey = "*"

type MappingRuleDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Scope             string     `gorm:"size:16;uniqueIndex:idx_mapping_rules_active_key,priority:1,where:active"`
	SupplierKey       string     `gorm:"size:36;uniqueIndex:idx_mapping_rules_active_key,priority:2,where:active;index"`
	Signature         string     `gorm:"uniqueIndex:idx_mapping_rules_active_key,priority:3,where:active"`
	TaxonomyCode      string     `gorm:"size:64"`
	BillingComponent  string     `gorm:"size:32"`
	SourceExceptionID *uuid.UUID `gorm:"type:uuid"`
	Version           int
	SupersedesRuleID  *uuid.UUID `gorm:"type:uuid"`
	Active            bool       `gorm:"index"`
	Notes             string
	CreatedBy         string `gorm:"size:128"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (MappingRuleDTO) TableName() string {
	return "mapping_rules"
}

func supplierKey(key mapping.Key) string {
	if key.Scope == mapping.ScopeGlobal {
		return globalSupplierKey
	}
	return key.SupplierID.String()
}

func fromDomain(rule *mapping.Rule) MappingRuleDTO {
	s := rule.State()
	return MappingRuleDTO{
		ID:                s.ID.Bytes(),
		Scope:             s.Key.Scope.String(),
		SupplierKey:       supplierKey(s.Key),
		Signature:         s.Key.Signature.String(),
		TaxonomyCode:      s.TaxonomyCode,
		BillingComponent:  s.BillingComponent,
		SourceExceptionID: optionalBytes(s.SourceExceptionID),
		Version:           s.Version,
		SupersedesRuleID:  optionalBytes(s.SupersedesRuleID),
		Active:            s.Active,
		Notes:             s.Notes,
		CreatedBy:         s.CreatedBy,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func toDomain(dto MappingRuleDTO) (*mapping.Rule, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	scope, err := mapping.ParseScope(dto.Scope)
	if err != nil {
		return nil, err
	}

	var supplierID kernel.UUID
	if dto.SupplierKey != globalSupplierKey {
		if supplierID, err = kernel.UUIDFromString(dto.SupplierKey); err != nil {
			return nil, err
		}
	}
	key, err := mapping.NewKey(scope, supplierID, mapping.Signature(dto.Signature))
	if err != nil {
		return nil, err
	}

	sourceExceptionID, err := optionalUUID(dto.SourceExceptionID)
	if err != nil {
		return nil, err
	}
	supersedesRuleID, err := optionalUUID(dto.SupersedesRuleID)
	if err != nil {
		return nil, err
	}

	return mapping.RestoreRule(mapping.RuleState{
		ID:                id,
		Key:               key,
		TaxonomyCode:      dto.TaxonomyCode,
		BillingComponent:  dto.BillingComponent,
		SourceExceptionID: sourceExceptionID,
		Version:           dto.Version,
		SupersedesRuleID:  supersedesRuleID,
		Active:            dto.Active,
		Notes:             dto.Notes,
		CreatedBy:         dto.CreatedBy,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
	})
}

func optionalBytes(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	b := id.Bytes()
	return &b
}

func optionalUUID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil //nolint:nilnil // absent reference
	}
	kid, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	return &kid, nil
}
