package dashboard

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/pankajredekar/shopadmin/internal/testutil/apitest"
)

func TestSummary(t *testing.T) {
	env := apitest.New(t)
	h := NewHandler(NewService(NewStore(env.DB)), env.MW)
	env.Router.Route("/v1/admin", func(r chi.Router) {
		h.RegisterRoutes(r)
	})

	admin := env.CreateUser(t, "Admin", "admin@example.com", permission.UserManager)
	for i := 0; i < 6; i++ {
		env.CreateUser(t, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i), "")
	}

	category := models.Category{Name: "Tools", Slug: "tools"}
	if err := env.DB.Create(&category).Error; err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	for i := 0; i < 7; i++ {
		p := models.Product{
			Name:       fmt.Sprintf("Product %d", i),
			Slug:       fmt.Sprintf("product-%d", i),
			Price:      10,
			Stock:      i * 2,
			Status:     models.StatusAvailable,
			CategoryID: category.ID,
		}
		if err := env.DB.Create(&p).Error; err != nil {
			t.Fatalf("Failed to seed product: %v", err)
		}
	}

	resp := env.JSON(t, http.MethodGet, "/v1/admin/dashboard", nil, env.Login(t, admin))
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %+v", resp.Code, resp)
	}
	var summary Summary
	resp.DecodeData(t, &summary)

	if summary.UsersCount != 7 || summary.ProductsCount != 7 || summary.CategoriesCount != 1 {
		t.Errorf("Unexpected counts %+v", summary)
	}
	// stock 0, 2 and 4
	if summary.LowStockCount != 3 {
		t.Errorf("Expected 3 low stock products, got %d", summary.LowStockCount)
	}
	if len(summary.LatestUsers) != 5 || len(summary.LatestProducts) != 5 {
		t.Fatalf("Expected 5 latest of each, got %d users and %d products", len(summary.LatestUsers), len(summary.LatestProducts))
	}
	if summary.LatestProducts[0].Name != "Product 6" || summary.LatestUsers[0].Name != "User 5" {
		t.Errorf("Expected newest first, got %s and %s", summary.LatestProducts[0].Name, summary.LatestUsers[0].Name)
	}
	if summary.LatestProducts[0].Category == nil {
		t.Error("Expected category on latest products")
	}
}

func TestSummaryRequiresPermission(t *testing.T) {
	env := apitest.New(t)
	h := NewHandler(NewService(NewStore(env.DB)), env.MW)
	env.Router.Route("/v1/admin", func(r chi.Router) {
		h.RegisterRoutes(r)
	})

	nobody := env.CreateUser(t, "Nobody", "nobody@example.com", "")
	if resp := env.JSON(t, http.MethodGet, "/v1/admin/dashboard", nil, env.Login(t, nobody)); resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.Code)
	}
	if resp := env.JSON(t, http.MethodGet, "/v1/admin/dashboard", nil, ""); resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.Code)
	}
}
