// Package databasetest opens migrated in-memory databases for tests.
package databasetest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/anjiri1684/course_marketplace/database"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// New returns a freshly migrated database private to the test.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), database.Options())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// UseGlobal points database.DB at a test database for the duration of the test.
func UseGlobal(t testing.TB) *gorm.DB {
	t.Helper()

	db := New(t)
	previous := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = previous })
	return db
}
