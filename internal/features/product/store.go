package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/slug"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) withRelations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.id")
		})
}

// findAll returns products newest first
func (s *Store) findAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.withRelations(ctx).
		Order("products.created_at DESC").
		Order("products.id DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// findByID returns nil when no active product has id
func (s *Store) findByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.withRelations(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (s *Store) categoryExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return count > 0, nil
}

func (s *Store) slugs() slug.Counter {
	return slug.NewTableCounter(s.db, models.Product{}.TableName())
}

// transaction runs fn against a store bound to one database transaction
func (s *Store) transaction(ctx context.Context, fn func(tx Storer) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) create(ctx context.Context, product *models.Product) error {
	err := s.db.WithContext(ctx).Omit("Category", "Images").Create(product).Error
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, product *models.Product, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(product).
		Select(columns).
		Omit("Category", "Images").
		Updates(product).Error
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (s *Store) addImages(ctx context.Context, images []models.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&images).Error; err != nil {
		return fmt.Errorf("failed to add product images: %w", err)
	}
	return nil
}

// deleteImages removes the listed images of productID, all of them when ids is nil
func (s *Store) deleteImages(ctx context.Context, productID uint, ids []uint) error {
	query := s.db.WithContext(ctx).Where("product_id = ?", productID)
	if ids != nil {
		if len(ids) == 0 {
			return nil
		}
		query = query.Where("id IN ?", ids)
	}
	if err := query.Delete(&models.ProductImage{}).Error; err != nil {
		return fmt.Errorf("failed to delete product images: %w", err)
	}
	return nil
}

func (s *Store) clearPrimary(ctx context.Context, productID uint) error {
	err := s.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, true).
		Update("is_primary", false).Error
	if err != nil {
		return fmt.Errorf("failed to clear primary image: %w", err)
	}
	return nil
}

func (s *Store) setPrimary(ctx context.Context, productID, imageID uint) error {
	err := s.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ? AND id = ?", productID, imageID).
		Update("is_primary", true).Error
	if err != nil {
		return fmt.Errorf("failed to set primary image: %w", err)
	}
	return nil
}

func (s *Store) countPrimary(ctx context.Context, productID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", productID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count primary images: %w", err)
	}
	return count, nil
}

func (s *Store) delete(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
