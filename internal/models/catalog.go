package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// Category groups products
type Category struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;uniqueIndex;size:255" json:"name"`
	Slug          string         `gorm:"not null;uniqueIndex;size:255" json:"slug"`
	ProductsCount *int64         `gorm:"->;-:migration" json:"products_count,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for Category
func (Category) TableName() string {
	return "categories"
}

// Product is a sellable catalog item
type Product struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"not null;size:255" json:"name"`
	Slug       string         `gorm:"not null;uniqueIndex;size:255" json:"slug"`
	Price      float64        `gorm:"not null" json:"price"`
	Stock      int            `gorm:"not null;default:0" json:"stock"`
	Status     string         `gorm:"not null;size:20" json:"status"`
	CategoryID uint           `gorm:"not null;index" json:"category_id"`
	Category   *Category      `json:"category,omitempty"`
	Images     []ProductImage `gorm:"foreignKey:ProductID" json:"images"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for Product
func (Product) TableName() string {
	return "products"
}

// PrimaryImage returns the image flagged primary, if any
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return nil
}

// ProductImage is a stored picture of a product
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	ImageURL  string    `gorm:"not null;size:255" json:"image_url"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for ProductImage
func (ProductImage) TableName() string {
	return "product_images"
}
