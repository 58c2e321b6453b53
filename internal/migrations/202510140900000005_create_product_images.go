package migrations

import (
	"time"

	"github.com/pankajredekar/shopadmin"
	"gorm.io/gorm"
)

type CreateProductImages struct{}

func (m CreateProductImages) Version() string { return "202510140900000005" }

func (m CreateProductImages) Name() string { return "create_product_images" }

func (m CreateProductImages) Up(db *gorm.DB) error {
	type ProductImage struct {
		ID        uint   `gorm:"primaryKey;not null"`
		ProductID uint   `gorm:"index;not null"`
		ImageURL  string `gorm:"not null;size:255"`
		IsPrimary bool   `gorm:"not null;default:false"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}
	if err := db.Table("product_images").AutoMigrate(&ProductImage{}); err != nil {
		return err
	}
	// at most one primary image per product
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_product_images_primary ON product_images (product_id) WHERE is_primary = true`).Error
}

func (m CreateProductImages) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("product_images")
}

func init() {
	shopadmin.RegisterMigration(CreateProductImages{})
}
