// Package dbtest opens an isolated in-memory SQLite database carrying the
// full AniMov schema, for repository and use case tests.
package dbtest

import (
	"fmt"
	"testing"

	"animov/pkg/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{models.WatchlistTable, models.ReadlistTable} {
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_user_content ON %s (user_id, content_id)", table, table)
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create index on %s: %v", table, err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// A single connection keeps the shared in-memory database alive for the test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// CreateUser inserts a minimal active user and returns it.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Email:         username + "@example.com",
		Username:      username,
		Password:      "x",
		DisplayName:   username,
		Preferences:   models.DefaultPreferences(),
		Notifications: models.DefaultNotificationSettings(),
		Privacy:       models.DefaultPrivacySettings(),
		IsActive:      true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}
