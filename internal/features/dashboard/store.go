package dashboard

import (
	"context"
	"fmt"

	"github.com/pankajredekar/shopadmin/internal/models"
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

func (s *Store) count(ctx context.Context, model any) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %T: %w", model, err)
	}
	return count, nil
}

func (s *Store) countLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Product{}).Where("stock <= ?", threshold).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count low stock products: %w", err)
	}
	return count, nil
}

func (s *Store) latestUsers(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load latest users: %w", err)
	}
	return users, nil
}

func (s *Store) latestProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load latest products: %w", err)
	}
	return products, nil
}
