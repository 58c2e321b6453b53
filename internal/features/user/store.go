package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/pankajredekar/shopadmin/internal/auth"
	"github.com/pankajredekar/shopadmin/internal/models"
	"gorm.io/gorm"
)

type Store struct {
	db     *gorm.DB
	tokens *auth.TokenService
}

func NewStore(db *gorm.DB, tokens *auth.TokenService) *Store {
	return &Store{
		db:     db,
		tokens: tokens,
	}
}

func (s *Store) findAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// findByID returns nil when no user has id
func (s *Store) findByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *Store) emailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	query := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func (s *Store) create(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, user *models.User, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(user).Select(columns).Updates(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// delete removes the user together with every token it holds
func (s *Store) delete(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.tokens.WithDB(tx).RevokeAll(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.Delete(user).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}
