// Package dbtest opens throwaway in-memory SQLite databases for tests.
package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"secondchance/internal/core/database"
)

// Open returns a migrated in-memory database that lives as long as the test.
// A single connection keeps the memory database alive between queries.
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
