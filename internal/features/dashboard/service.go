package dashboard

import (
	"context"

	"github.com/pankajredekar/shopadmin/internal/lowstock"
	"github.com/pankajredekar/shopadmin/internal/models"
)

// latestLimit is how many recent users and products the summary lists
const latestLimit = 5

type Storer interface {
	count(ctx context.Context, model any) (int64, error)
	countLowStock(ctx context.Context, threshold int) (int64, error)
	latestUsers(ctx context.Context, limit int) ([]models.User, error)
	latestProducts(ctx context.Context, limit int) ([]models.Product, error)
}

type Service struct {
	store Storer
}

func NewService(store Storer) *Service {
	return &Service{
		store: store,
	}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var summary Summary
	var err error

	if summary.UsersCount, err = s.store.count(ctx, &models.User{}); err != nil {
		return nil, err
	}
	if summary.ProductsCount, err = s.store.count(ctx, &models.Product{}); err != nil {
		return nil, err
	}
	if summary.CategoriesCount, err = s.store.count(ctx, &models.Category{}); err != nil {
		return nil, err
	}
	if summary.LowStockCount, err = s.store.countLowStock(ctx, lowstock.Threshold); err != nil {
		return nil, err
	}
	if summary.LatestUsers, err = s.store.latestUsers(ctx, latestLimit); err != nil {
		return nil, err
	}
	if summary.LatestProducts, err = s.store.latestProducts(ctx, latestLimit); err != nil {
		return nil, err
	}

	return &summary, nil
}
