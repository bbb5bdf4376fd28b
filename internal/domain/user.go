package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"_id"`
	Email        string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FirstName    string     `gorm:"size:64" json:"firstName"`
	LastName     string     `gorm:"size:64" json:"lastName"`
	PasswordHash string     `gorm:"size:100;not null" json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
}

func (User) TableName() string { return "users" }

// FullName 登录接口返回的展示名
func (u *User) FullName() string { return u.FirstName + " " + u.LastName }

// UserRepository 查不到时返回 (nil, nil)
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, u *User) error
}
