package migrations

import (
	"time"

	"github.com/pankajredekar/shopadmin"
	"gorm.io/gorm"
)

type CreateCategories struct{}

func (m CreateCategories) Version() string { return "202510140900000003" }

func (m CreateCategories) Name() string { return "create_categories" }

func (m CreateCategories) Up(db *gorm.DB) error {
	type Category struct {
		ID        uint   `gorm:"primaryKey;not null"`
		Name      string `gorm:"uniqueIndex;not null;size:255"`
		Slug      string `gorm:"uniqueIndex;not null;size:255"`
		CreatedAt time.Time
		UpdatedAt time.Time
		DeletedAt gorm.DeletedAt `gorm:"index"`
	}
	return db.Table("categories").AutoMigrate(&Category{})
}

func (m CreateCategories) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("categories")
}

func init() {
	shopadmin.RegisterMigration(CreateCategories{})
}
