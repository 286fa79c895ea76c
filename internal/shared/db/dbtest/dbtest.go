package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"review-service/internal/shared/db"
)

// Open returns a Store over a private in-memory SQLite database with
// models migrated. The database is closed when the test ends.
func Open(t testing.TB, models ...any) *db.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	base, err := gorm.Open(sqlite.Open(dsn), db.Config())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := base.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		if err := base.AutoMigrate(models...); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	return db.New(base)
}
