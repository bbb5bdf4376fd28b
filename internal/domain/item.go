package domain

import (
	"context"
	"math"
	"time"
)

// ItemSequence 商品 id 所用的序列名
const ItemSequence = "items"

type Item struct {
	ObjectID    string     `gorm:"column:object_id;primaryKey;size:36" json:"_id"`
	ID          string     `gorm:"column:id;uniqueIndex;size:20;not null" json:"id"`
	Name        string     `gorm:"size:255" json:"name"`
	Category    string     `gorm:"size:64;index" json:"category"`
	Condition   string     `gorm:"size:64;index" json:"condition"`
	Description string     `gorm:"type:text" json:"description"`
	AgeDays     int        `json:"age_days"`
	AgeYears    float64    `gorm:"index" json:"age_years"`
	Image       *string    `gorm:"size:255" json:"image"`
	DateAdded   int64      `json:"date_added"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

func (Item) TableName() string { return "second_chance_items" }

// AgeYears age_days/365 保留一位小数
func AgeYears(days int) float64 {
	return math.Round(float64(days)/365*10) / 10
}

// ItemFilter 空值表示不限制
type ItemFilter struct {
	Name        string
	Category    string
	Condition   string
	MaxAgeYears *float64
}

// ItemChanges 需要写入的列；nil 表示保持不变
type ItemChanges struct {
	Category    *string
	Condition   *string
	Description *string
	AgeDays     *int
	AgeYears    *float64
	UpdatedAt   time.Time
}

type ItemRepository interface {
	List(ctx context.Context, f ItemFilter) ([]Item, error)
	Create(ctx context.Context, it *Item) error
	CreateBatch(ctx context.Context, items []Item) error
	FindByID(ctx context.Context, id string) (*Item, error)
	Update(ctx context.Context, id string, ch ItemChanges) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Count(ctx context.Context) (int64, error)
	MaxNumericID(ctx context.Context) (int64, error)
}

// Sequence 原子递增计数器
type Sequence interface {
	Next(ctx context.Context, name string) (int64, error)
	// EnsureAtLeast 保证计数器不小于 floor（启动时对齐已有数据）
	EnsureAtLeast(ctx context.Context, name string, floor int64) error
}
