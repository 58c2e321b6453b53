// Package testutil opens migrated in-memory databases for package tests.
package testutil

import (
	"testing"

	"github.com/pankajredekar/shopadmin"
	_ "github.com/pankajredekar/shopadmin/internal/migrations"
	"github.com/pankajredekar/shopadmin/internal/runner"
	"github.com/pankajredekar/shopadmin/internal/versioner"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB returns an in-memory sqlite database with every schema migration applied
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	ver := versioner.NewVersioner(db, versioner.DefaultTable)
	if err := ver.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := runner.NewRunner(db, shopadmin.GetGlobalRegistry(), ver).Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	return db
}
