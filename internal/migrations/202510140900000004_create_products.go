package migrations

import (
	"time"

	"github.com/pankajredekar/shopadmin"
	"gorm.io/gorm"
)

type CreateProducts struct{}

func (m CreateProducts) Version() string { return "202510140900000004" }

func (m CreateProducts) Name() string { return "create_products" }

func (m CreateProducts) Up(db *gorm.DB) error {
	type Product struct {
		ID         uint    `gorm:"primaryKey;not null"`
		Name       string  `gorm:"not null;size:255"`
		Slug       string  `gorm:"uniqueIndex;not null;size:255"`
		Price      float64 `gorm:"not null"`
		Stock      int     `gorm:"not null;default:0"`
		Status     string  `gorm:"not null;size:20"`
		CategoryID uint    `gorm:"index;not null"`
		CreatedAt  time.Time
		UpdatedAt  time.Time
		DeletedAt  gorm.DeletedAt `gorm:"index"`
	}
	return db.Table("products").AutoMigrate(&Product{})
}

func (m CreateProducts) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

func init() {
	shopadmin.RegisterMigration(CreateProducts{})
}
