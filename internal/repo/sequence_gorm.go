package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sequenceRow struct {
	Name    string `gorm:"primaryKey;size:64"`
	Counter int64  `gorm:"not null"`
}

func (sequenceRow) TableName() string { return "sequences" }

// SequenceRepo 用一行计数器实现原子自增：
// upsert 拿到行锁，同一事务内读回新值，并发的分配会排队。
type SequenceRepo struct{ db *gorm.DB }

func NewSequenceRepo(db *gorm.DB) *SequenceRepo { return &SequenceRepo{db: db} }

func (r *SequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := sequenceRow{Name: name, Counter: 1}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]any{"counter": gorm.Expr("counter + 1")}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Model(&sequenceRow{}).
			Select("counter").
			Where("name = ?", name).
			Scan(&next).Error
	})
	if err != nil {
		return 0, fmt.Errorf("next %s: %w", name, err)
	}
	return next, nil
}

func (r *SequenceRepo) EnsureAtLeast(ctx context.Context, name string, floor int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&sequenceRow{Name: name, Counter: floor}).Error
		if err != nil {
			return fmt.Errorf("init %s: %w", name, err)
		}
		err = tx.Model(&sequenceRow{}).
			Where("name = ? AND counter < ?", name, floor).
			Update("counter", floor).Error
		if err != nil {
			return fmt.Errorf("raise %s: %w", name, err)
		}
		return nil
	})
}
