package repository

import (
	"context"
	"errors"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"

	"gorm.io/gorm"
)

// SequenceRepository issues monotonically increasing numbers per named
// counter. Issued numbers are persisted, so a number is never handed out
// twice even after every record that used it is deleted.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int, error)
	// Advance raises the counter to at least n. Run after a backup import
	// so counters keep up with ids issued elsewhere.
	Advance(ctx context.Context, name string, n int) error
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, name string) (int, error) {
	db := GetDB(ctx, r.db)

	var seq model.Sequence
	err := db.First(&seq, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = model.Sequence{Name: name, Last: 1}
		if err := db.Create(&seq).Error; err != nil {
			return 0, err
		}
		return seq.Last, nil
	}
	if err != nil {
		return 0, err
	}

	seq.Last++
	if err := db.Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Last, nil
}

func (r *sequenceRepository) Advance(ctx context.Context, name string, n int) error {
	db := GetDB(ctx, r.db)

	var seq model.Sequence
	err := db.First(&seq, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&model.Sequence{Name: name, Last: n}).Error
	}
	if err != nil {
		return err
	}
	if seq.Last >= n {
		return nil
	}
	seq.Last = n
	return db.Save(&seq).Error
}
