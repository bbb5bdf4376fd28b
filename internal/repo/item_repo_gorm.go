package repo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"secondchance/internal/domain"
)

type ItemRepo struct{ db *gorm.DB }

func NewItemRepo(db *gorm.DB) *ItemRepo { return &ItemRepo{db: db} }

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func (r *ItemRepo) List(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	q := r.db.WithContext(ctx).Model(&domain.Item{})
	if s := strings.TrimSpace(f.Name); s != "" {
		// 大小写不敏感的子串匹配；用户输入里的 % _ 按字面量处理
		pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		q = q.Where(clause.Expr{
			SQL:  "LOWER(?) LIKE ? ESCAPE '!'",
			Vars: []any{clause.Column{Name: "name"}, pattern},
		})
	}
	if f.Category != "" {
		q = q.Where(clause.Eq{Column: clause.Column{Name: "category"}, Value: f.Category})
	}
	if f.Condition != "" {
		q = q.Where(clause.Eq{Column: clause.Column{Name: "condition"}, Value: f.Condition})
	}
	if f.MaxAgeYears != nil {
		q = q.Where(clause.Lte{Column: clause.Column{Name: "age_years"}, Value: *f.MaxAgeYears})
	}

	items := []domain.Item{}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepo) Create(ctx context.Context, it *domain.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *ItemRepo) CreateBatch(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 200).Error
}

func (r *ItemRepo) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	var it domain.Item
	err := r.db.WithContext(ctx).First(&it, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Update 返回受影响行数；没有任何列需要写时直接返回 0
func (r *ItemRepo) Update(ctx context.Context, id string, ch domain.ItemChanges) (int64, error) {
	set := map[string]any{}
	if ch.Category != nil {
		set["category"] = *ch.Category
	}
	if ch.Condition != nil {
		set["condition"] = *ch.Condition
	}
	if ch.Description != nil {
		set["description"] = *ch.Description
	}
	if ch.AgeDays != nil {
		set["age_days"] = *ch.AgeDays
	}
	if ch.AgeYears != nil {
		set["age_years"] = *ch.AgeYears
	}
	if len(set) == 0 {
		return 0, nil
	}
	set["updated_at"] = ch.UpdatedAt

	res := r.db.WithContext(ctx).Model(&domain.Item{}).Where("id = ?", id).Updates(set)
	return res.RowsAffected, res.Error
}

func (r *ItemRepo) Delete(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Item{})
	return res.RowsAffected, res.Error
}

func (r *ItemRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Item{}).Count(&n).Error
	return n, err
}

// MaxNumericID 按数值（而不是字符串）取最大 id，非数字 id 忽略
func (r *ItemRepo) MaxNumericID(ctx context.Context) (int64, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&domain.Item{}).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	var maxID int64
	for _, s := range ids {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err == nil && n > maxID {
			maxID = n
		}
	}
	return maxID, nil
}
