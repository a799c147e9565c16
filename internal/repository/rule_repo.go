package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"

	"gorm.io/gorm"
)

// RuleFilter narrows ListRules queries. Zero values mean "no filter".
type RuleFilter struct {
	Status   string
	System   string
	Archived *bool
	Page     int
	Limit    int
}

// RuleRepository is the persistence contract the lifecycle engine depends on.
// GetByID returns (nil, nil) when no rule exists with the given id.
type RuleRepository interface {
	Create(ctx context.Context, rule *model.Rule) error
	GetByID(ctx context.Context, id string) (*model.Rule, error)
	GetAll(ctx context.Context) ([]model.Rule, error)
	List(ctx context.Context, filter RuleFilter) ([]model.Rule, int64, error)
	Update(ctx context.Context, rule *model.Rule) error
	Delete(ctx context.Context, id string) error
	// GetAmendments returns the amendments of a base rule ordered by
	// amendment number ascending.
	GetAmendments(ctx context.Context, baseRuleID string) ([]model.Rule, error)
	DeleteAll(ctx context.Context) error
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Create(ctx context.Context, rule *model.Rule) error {
	if err := GetDB(ctx, r.db).Create(rule).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", model.ErrDuplicateID, rule.ID)
		}
		return err
	}
	return nil
}

func (r *ruleRepository) GetByID(ctx context.Context, id string) (*model.Rule, error) {
	var rule model.Rule
	if err := GetDB(ctx, r.db).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) GetAll(ctx context.Context) ([]model.Rule, error) {
	var rules []model.Rule
	if err := GetDB(ctx, r.db).Order("created_at ASC, id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) List(ctx context.Context, filter RuleFilter) ([]model.Rule, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.Rule{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.System != "" {
		query = query.Where("system = ?", filter.System)
	}
	if filter.Archived != nil {
		query = query.Where("is_archived = ?", *filter.Archived)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	var rules []model.Rule
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(filter.Limit).Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

func (r *ruleRepository) Update(ctx context.Context, rule *model.Rule) error {
	db := GetDB(ctx, r.db)

	var count int64
	if err := db.Model(&model.Rule{}).Where("id = ?", rule.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: rule %s", model.ErrNotFound, rule.ID)
	}
	return db.Save(rule).Error
}

func (r *ruleRepository) Delete(ctx context.Context, id string) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Rule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: rule %s", model.ErrNotFound, id)
	}
	return nil
}

func (r *ruleRepository) GetAmendments(ctx context.Context, baseRuleID string) ([]model.Rule, error) {
	var rules []model.Rule
	if err := GetDB(ctx, r.db).
		Where("base_rule_id = ?", baseRuleID).
		Order("amendment_number ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepository) DeleteAll(ctx context.Context) error {
	return GetDB(ctx, r.db).Where("1 = 1").Delete(&model.Rule{}).Error
}
