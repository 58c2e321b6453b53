package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/slug"
	"gorm.io/gorm"
)

const productsCountQuery = "(SELECT COUNT(*) FROM products WHERE products.category_id = categories.id AND products.deleted_at IS NULL) AS products_count"

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) findAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Select("categories.*, " + productsCountQuery).
		Order("categories.id").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// findByID returns nil when no active category has id
func (s *Store) findByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

// nameTaken includes soft-deleted rows, which still hold the unique index
func (s *Store) nameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := s.db.WithContext(ctx).Unscoped().Model(&models.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return count > 0, nil
}

func (s *Store) slugs() slug.Counter {
	return slug.NewTableCounter(s.db, models.Category{}.TableName())
}

func (s *Store) create(ctx context.Context, category *models.Category) error {
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, category *models.Category) error {
	err := s.db.WithContext(ctx).Model(category).
		Select("name", "slug").
		Updates(category).Error
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (s *Store) countProducts(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count category products: %w", err)
	}
	return count, nil
}

func (s *Store) delete(ctx context.Context, category *models.Category) error {
	if err := s.db.WithContext(ctx).Delete(category).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
