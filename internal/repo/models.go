package repo

import "secondchance/internal/domain"

// Models 需要 AutoMigrate 的全部表
func Models() []any {
	return []any{&domain.User{}, &domain.Item{}, &sequenceRow{}}
}
