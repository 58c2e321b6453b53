// Package versioner keeps the bookkeeping table of applied schema migrations.
package versioner

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultTable is the bookkeeping table used when none is configured
const DefaultTable = "_shopadmin_migrations"

// Record is one applied schema migration
type Record struct {
	Version   string    `gorm:"primaryKey;column:version"`
	Name      string    `gorm:"column:name"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

type Versioner struct {
	db    *gorm.DB
	table string
	now   func() time.Time
}

func NewVersioner(db *gorm.DB, tableName string) *Versioner {
	if tableName == "" {
		tableName = DefaultTable
	}
	return &Versioner{
		db:    db,
		table: tableName,
		now:   time.Now,
	}
}

// WithDB returns a versioner bound to another handle, typically a transaction
func (v *Versioner) WithDB(db *gorm.DB) *Versioner {
	return &Versioner{
		db:    db,
		table: v.table,
		now:   v.now,
	}
}

// Initialize creates the bookkeeping table if it is missing
func (v *Versioner) Initialize() error {
	if err := v.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255),
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, v.table)).Error; err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}

// Applied returns every applied migration ordered by version
func (v *Versioner) Applied() ([]Record, error) {
	var records []Record
	if err := v.db.Table(v.table).Order("version ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	return records, nil
}

// AppliedVersions returns the versions of Applied
func (v *Versioner) AppliedVersions() ([]string, error) {
	records, err := v.Applied()
	if err != nil {
		return nil, err
	}

	versions := make([]string, len(records))
	for i, r := range records {
		versions[i] = r.Version
	}
	return versions, nil
}

func (v *Versioner) IsApplied(version string) (bool, error) {
	var count int64
	if err := v.db.Table(v.table).Where("version = ?", version).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return count > 0, nil
}

// Record marks version as applied now
func (v *Versioner) Record(version, name string) error {
	record := Record{
		Version:   version,
		Name:      name,
		AppliedAt: v.now().UTC(),
	}
	if err := v.db.Table(v.table).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// Remove forgets version after a rollback
func (v *Versioner) Remove(version string) error {
	if err := v.db.Table(v.table).Where("version = ?", version).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	return nil
}

func (v *Versioner) Count() (int64, error) {
	var count int64
	if err := v.db.Table(v.table).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count applied migrations: %w", err)
	}
	return count, nil
}
