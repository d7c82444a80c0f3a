package mappingrulerepo

import (
	"context"
	"errors"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"
	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/mapping"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormMappingRuleRepository implements ports.MappingRuleRepository using GORM.
type GormMappingRuleRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormMappingRuleRepository(db *gorm.DB, tracker aggregateTracker) *GormMappingRuleRepository {
	return &GormMappingRuleRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormMappingRuleRepository) Add(ctx context.Context, rule *mapping.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	dto := fromDomain(rule)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(rule.ID(), rule)
	return nil
}

// Update persists a retired rule. Only the active flag and updated_at are written.
func (r *GormMappingRuleRepository) Update(ctx context.Context, rule *mapping.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	dto := fromDomain(rule)
	result := r.db.WithContext(ctx).
		Model(&MappingRuleDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"active":     dto.Active,
			"updated_at": dto.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(rule.ID(), rule)
	return nil
}

func (r *GormMappingRuleRepository) FindActive(ctx context.Context, key mapping.Key) (*mapping.Rule, error) {
	var dto MappingRuleDTO
	err := r.db.WithContext(ctx).
		Where("active = ? AND scope = ? AND supplier_key = ? AND signature = ?",
			true, key.Scope.String(), supplierKey(key), key.Signature.String()).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("mappingRule", key.Signature.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListCandidates returns every active GLOBAL rule and the supplier's active SUPPLIER rules.
func (r *GormMappingRuleRepository) ListCandidates(ctx context.Context, supplierID kernel.UUID) ([]*mapping.Rule, error) {
	if err := supplierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []MappingRuleDTO
	err := r.db.WithContext(ctx).
		Where("active = ? AND supplier_key IN ?", true, []string{globalSupplierKey, supplierID.String()}).
		Order("created_at").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	rules := make([]*mapping.Rule, 0, len(dtos))
	for _, dto := range dtos {
		rule, ruleErr := toDomain(dto)
		if ruleErr != nil {
			return nil, ruleErr
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
