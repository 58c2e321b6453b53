package dashboard

import "github.com/pankajredekar/shopadmin/internal/models"

// Responses

type Summary struct {
	UsersCount      int64            `json:"users_count"`
	ProductsCount   int64            `json:"products_count"`
	CategoriesCount int64            `json:"categories_count"`
	LowStockCount   int64            `json:"low_stock_count"`
	LatestUsers     []models.User    `json:"latest_users"`
	LatestProducts  []models.Product `json:"latest_products"`
}
