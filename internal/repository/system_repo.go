package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"

	"gorm.io/gorm"
)

// SystemRepository persists System records. GetByName returns (nil, nil)
// when no system exists with the given name.
type SystemRepository interface {
	Create(ctx context.Context, system *model.System) error
	GetByName(ctx context.Context, name string) (*model.System, error)
	GetAll(ctx context.Context) ([]model.System, error)
	Update(ctx context.Context, system *model.System) error
	// Delete fails with ErrInUse while any rule references the system name,
	// archived rules included.
	Delete(ctx context.Context, name string) error
	// GetNextSystemID returns max(existing systemIds) + 1, or 1 if none exist.
	GetNextSystemID(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type systemRepository struct {
	db *gorm.DB
}

func NewSystemRepository(db *gorm.DB) SystemRepository {
	return &systemRepository{db: db}
}

func (r *systemRepository) Create(ctx context.Context, system *model.System) error {
	if err := GetDB(ctx, r.db).Create(system).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", model.ErrDuplicateName, system.Name)
		}
		return err
	}
	return nil
}

func (r *systemRepository) GetByName(ctx context.Context, name string) (*model.System, error) {
	var system model.System
	if err := GetDB(ctx, r.db).First(&system, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &system, nil
}

func (r *systemRepository) GetAll(ctx context.Context) ([]model.System, error) {
	var systems []model.System
	if err := GetDB(ctx, r.db).Order("created_at ASC, name ASC").Find(&systems).Error; err != nil {
		return nil, err
	}
	return systems, nil
}

func (r *systemRepository) Update(ctx context.Context, system *model.System) error {
	db := GetDB(ctx, r.db)

	var count int64
	if err := db.Model(&model.System{}).Where("name = ?", system.Name).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: system %s", model.ErrNotFound, system.Name)
	}
	return db.Save(system).Error
}

func (r *systemRepository) Delete(ctx context.Context, name string) error {
	db := GetDB(ctx, r.db)

	var exists int64
	if err := db.Model(&model.System{}).Where("name = ?", name).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("%w: system %s", model.ErrNotFound, name)
	}

	// The reference check deliberately includes archived rules.
	var referencing int64
	if err := db.Model(&model.Rule{}).Where("system = ?", name).Count(&referencing).Error; err != nil {
		return err
	}
	if referencing > 0 {
		return fmt.Errorf("%w: %d rule(s) reference system %s", model.ErrInUse, referencing, name)
	}

	return db.Where("name = ?", name).Delete(&model.System{}).Error
}

func (r *systemRepository) GetNextSystemID(ctx context.Context) (int, error) {
	var maxID *int
	err := GetDB(ctx, r.db).Model(&model.System{}).
		Select("MAX(system_id)").
		Scan(&maxID).Error
	if err != nil {
		return 0, err
	}
	if maxID == nil {
		return 1, nil
	}
	return *maxID + 1, nil
}

func (r *systemRepository) DeleteAll(ctx context.Context) error {
	return GetDB(ctx, r.db).Where("1 = 1").Delete(&model.System{}).Error
}
