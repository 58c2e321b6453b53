package product

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/pankajredekar/shopadmin/internal/lowstock"
	"github.com/pankajredekar/shopadmin/internal/mailer"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/pankajredekar/shopadmin/internal/storage"
	"github.com/pankajredekar/shopadmin/internal/testutil/apitest"
)

type fixture struct {
	env      *apitest.Env
	token    string
	dir      string
	mail     *mailer.Recorder
	category models.Category
}

func setup(t *testing.T) *fixture {
	t.Helper()
	env := apitest.New(t)
	dir := t.TempDir()
	mail := &mailer.Recorder{}

	notifier := lowstock.NewNotifier(lowstock.NewStore(env.DB), mail, "http://shop.test")
	svc := NewService(NewStore(env.DB), storage.NewLocalStore(dir, "/storage"), notifier)
	h := NewHandler(svc, env.MW)
	env.Router.Route("/v1/admin", func(r chi.Router) {
		h.RegisterRoutes(r)
	})

	admin := env.CreateUser(t, "Admin", "admin@example.com", permission.SuperAdmin)
	env.CreateUser(t, "Products", "pm@example.com", permission.ProductManager)
	env.CreateUser(t, "People", "um@example.com", permission.UserManager)

	category := models.Category{Name: "Lighting", Slug: "lighting"}
	if err := env.DB.Create(&category).Error; err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}

	return &fixture{
		env:      env,
		token:    env.Login(t, admin),
		dir:      dir,
		mail:     mail,
		category: category,
	}
}

func (f *fixture) fields(name string, stock int) map[string][]string {
	return map[string][]string{
		"name":          {name},
		"price":         {"19.99"},
		"stock":         {fmt.Sprint(stock)},
		"status":        {models.StatusAvailable},
		"category_id":   {fmt.Sprint(f.category.ID)},
		"primary_image": {"1"},
	}
}

func pngs(n int) []apitest.File {
	files := make([]apitest.File, n)
	for i := range files {
		files[i] = apitest.File{Field: "images[]", Name: fmt.Sprintf("photo%d.png", i), Data: apitest.PNG}
	}
	return files
}

func (f *fixture) create(t *testing.T, name string, stock int) models.Product {
	t.Helper()
	resp := f.env.Multipart(t, http.MethodPost, "/v1/admin/products", f.fields(name, stock), pngs(2), f.token)
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected 201 creating %s, got %d %+v", name, resp.Code, resp)
	}
	var product models.Product
	resp.DecodeData(t, &product)
	return product
}

func (f *fixture) storedFiles(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(f.dir, "products"))
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("Failed to read storage: %v", err)
	}
	return len(entries)
}

func primaries(p models.Product) []uint {
	var ids []uint
	for _, img := range p.Images {
		if img.IsPrimary {
			ids = append(ids, img.ID)
		}
	}
	return ids
}

func TestCreateProduct(t *testing.T) {
	f := setup(t)

	product := f.create(t, "Desk Lamp", 10)
	if product.Slug != "desk-lamp" || product.Price != 19.99 || product.Stock != 10 {
		t.Errorf("Unexpected product %+v", product)
	}
	if product.Category == nil || product.Category.ID != f.category.ID {
		t.Errorf("Expected category to be loaded, got %+v", product.Category)
	}
	if len(product.Images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(product.Images))
	}
	if product.Images[0].IsPrimary || !product.Images[1].IsPrimary {
		t.Errorf("Expected only the second image primary, got %+v", product.Images)
	}
	if !strings.HasPrefix(product.Images[0].ImageURL, "/storage/products/") {
		t.Errorf("Unexpected image url %s", product.Images[0].ImageURL)
	}
	if n := f.storedFiles(t); n != 2 {
		t.Errorf("Expected 2 stored files, got %d", n)
	}

	second := f.create(t, "Desk Lamp", 4)
	if second.Slug != "desk-lamp-2" {
		t.Errorf("Expected desk-lamp-2, got %s", second.Slug)
	}
	if len(f.mail.Sent()) != 0 {
		t.Error("Expected create never to alert")
	}
}

func TestCreateProductValidation(t *testing.T) {
	f := setup(t)

	resp := f.env.Multipart(t, http.MethodPost, "/v1/admin/products", nil, nil, f.token)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.Code)
	}
	for _, field := range []string{"name", "price", "stock", "status", "category_id", "images", "primary_image"} {
		if len(resp.Errors[field]) == 0 {
			t.Errorf("Expected error for %s, got %v", field, resp.Errors)
		}
	}

	fields := f.fields("Lamp", 3)
	fields["price"] = []string{"cheap"}
	fields["stock"] = []string{"-1"}
	fields["status"] = []string{"sold"}
	fields["category_id"] = []string{"999"}
	fields["primary_image"] = []string{"5"}
	files := []apitest.File{
		{Field: "images[]", Name: "notes.txt", Data: []byte("just some text")},
		{Field: "images[]", Name: "huge.png", Data: append(append([]byte(nil), apitest.PNG...), make([]byte, MaxImageSize)...)},
	}
	resp = f.env.Multipart(t, http.MethodPost, "/v1/admin/products", fields, files, f.token)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.Code)
	}

	want := map[string]string{
		"price":         "The price must be a number.",
		"stock":         "The stock must be at least 0.",
		"status":        "The selected status is invalid.",
		"category_id":   "The selected category id is invalid.",
		"primary_image": "The selected primary image is invalid.",
		"images.0":      "The images.0 must be a file of type: jpeg, png, jpg, gif.",
		"images.1":      "The images.1 may not be greater than 2048 kilobytes.",
	}
	for field, msg := range want {
		got := resp.Errors[field]
		if len(got) != 1 || got[0] != msg {
			t.Errorf("%s: expected [%q], got %v", field, msg, got)
		}
	}

	if n := f.storedFiles(t); n != 0 {
		t.Errorf("Expected no stored files after failed validation, got %d", n)
	}
	var count int64
	f.env.DB.Model(&models.Product{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no products, got %d", count)
	}
}

func TestNonFinitePriceRejected(t *testing.T) {
	f := setup(t)
	product := f.create(t, "Lamp", 10)
	path := fmt.Sprintf("/v1/admin/products/%d", product.ID)

	for _, price := range []string{"Inf", "-Infinity", "NaN"} {
		fields := f.fields("Shade", 3)
		fields["price"] = []string{price}
		resp := f.env.Multipart(t, http.MethodPost, "/v1/admin/products", fields, pngs(1), f.token)
		if resp.Code != http.StatusUnprocessableEntity {
			t.Fatalf("create price=%s: expected 422, got %d %+v", price, resp.Code, resp)
		}
		if got := resp.Errors["price"]; len(got) != 1 || got[0] != "The price must be a number." {
			t.Errorf("create price=%s: unexpected errors %v", price, got)
		}

		resp = f.env.Multipart(t, http.MethodPut, path, map[string][]string{"price": {price}}, nil, f.token)
		if resp.Code != http.StatusUnprocessableEntity {
			t.Fatalf("update price=%s: expected 422, got %d %+v", price, resp.Code, resp)
		}
		if len(resp.Errors["price"]) != 1 {
			t.Errorf("update price=%s: unexpected errors %v", price, resp.Errors)
		}
	}

	var count int64
	f.env.DB.Model(&models.Product{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected only the seeded product, got %d", count)
	}

	resp := f.env.JSON(t, http.MethodGet, "/v1/admin/products", nil, f.token)
	if resp.Code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("Expected list to render, got %d %+v", resp.Code, resp)
	}
	var list []models.Product
	resp.DecodeData(t, &list)
	if len(list) != 1 || list[0].Price != 19.99 {
		t.Errorf("Unexpected list %+v", list)
	}
}

func TestShowAndList(t *testing.T) {
	f := setup(t)
	first := f.create(t, "First", 10)
	second := f.create(t, "Second", 10)

	resp := f.env.JSON(t, http.MethodGet, "/v1/admin/products", nil, f.token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}
	var list []models.Product
	resp.DecodeData(t, &list)
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("Expected newest first, got %+v", list)
	}
	if list[0].Category == nil || len(list[0].Images) != 2 {
		t.Errorf("Expected relations on list, got %+v", list[0])
	}

	resp = f.env.JSON(t, http.MethodGet, fmt.Sprintf("/v1/admin/products/%d", first.ID), nil, f.token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}
	var shown models.Product
	resp.DecodeData(t, &shown)
	if shown.Name != "First" || len(shown.Images) != 2 {
		t.Errorf("Unexpected product %+v", shown)
	}

	resp = f.env.JSON(t, http.MethodGet, "/v1/admin/products/9999", nil, f.token)
	if resp.Code != http.StatusNotFound || resp.Message != "Product not found" {
		t.Errorf("Expected 404, got %d %+v", resp.Code, resp)
	}
}

func TestUpdateStockTriggersLowStock(t *testing.T) {
	f := setup(t)
	product := f.create(t, "Desk", 10)
	path := fmt.Sprintf("/v1/admin/products/%d", product.ID)

	resp := f.env.Multipart(t, http.MethodPut, path, map[string][]string{"price": {"89.99"}}, nil, f.token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %+v", resp.Code, resp)
	}
	if n := len(f.mail.Sent()); n != 0 {
		t.Fatalf("Expected price change not to alert, got %d mails", n)
	}

	resp = f.env.Multipart(t, http.MethodPut, path, map[string][]string{"stock": {"3"}}, nil, f.token)
	if resp.Code != http.StatusOK || resp.Message != "Product updated successfully" {
		t.Fatalf("Expected 200, got %d %+v", resp.Code, resp)
	}
	var updated models.Product
	resp.DecodeData(t, &updated)
	if updated.Stock != 3 || updated.Price != 89.99 {
		t.Errorf("Unexpected product after update %+v", updated)
	}

	sent := f.mail.Sent()
	if len(sent) != 2 {
		t.Fatalf("Expected one alert per product staff member, got %d", len(sent))
	}
	recipients := map[string]bool{}
	for _, m := range sent {
		recipients[m.To] = true
		if !strings.Contains(m.Body, "Current stock: 3") {
			t.Errorf("Unexpected alert body %q", m.Body)
		}
	}
	if !recipients["admin@example.com"] || !recipients["pm@example.com"] || recipients["um@example.com"] {
		t.Errorf("Unexpected recipients %v", recipients)
	}

	resp = f.env.Multipart(t, http.MethodPut, path, map[string][]string{"stock": {"3"}}, nil, f.token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.Code)
	}
	if n := len(f.mail.Sent()); n != 2 {
		t.Errorf("Expected unchanged stock not to alert again, got %d mails", n)
	}
}

func TestUpdateImages(t *testing.T) {
	f := setup(t)
	product := f.create(t, "Chair", 10)
	path := fmt.Sprintf("/v1/admin/products/%d", product.ID)
	oldPrimary := product.Images[1]

	resp := f.env.Multipart(t, http.MethodPut, path, map[string][]string{
		"delete_images[]": {fmt.Sprint(product.Images[0].ID)},
		"primary_image":   {"0"},
	}, pngs(1), f.token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %+v", resp.Code, resp)
	}
	var updated models.Product
	resp.DecodeData(t, &updated)
	if len(updated.Images) != 2 {
		t.Fatalf("Expected 2 images after delete and add, got %d", len(updated.Images))
	}
	ids := primaries(updated)
	if len(ids) != 1 || ids[0] == oldPrimary.ID {
		t.Errorf("Expected the new image to be the only primary, got %v", ids)
	}
	if n := f.storedFiles(t); n != 2 {
		t.Errorf("Expected deleted file removed, got %d files", n)
	}

	resp = f.env.Multipart(t, http.MethodPut, path, map[string][]string{
		"primary_image": {fmt.Sprint(oldPrimary.ID)},
	}, nil, f.token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %+v", resp.Code, resp)
	}
	resp.DecodeData(t, &updated)
	if ids := primaries(updated); len(ids) != 1 || ids[0] != oldPrimary.ID {
		t.Errorf("Expected %d to be the only primary, got %v", oldPrimary.ID, ids)
	}

	resp = f.env.Multipart(t, http.MethodPut, path, map[string][]string{
		"delete_images[]": {"99999"},
		"primary_image":   {"12345"},
	}, nil, f.token)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.Code)
	}
	if got := resp.Errors["delete_images.0"]; len(got) != 1 || got[0] != "The selected delete_images.0 is invalid." {
		t.Errorf("Unexpected delete_images errors %v", resp.Errors)
	}
	if len(resp.Errors["primary_image"]) != 1 {
		t.Errorf("Expected primary_image error, got %v", resp.Errors)
	}
}

func TestUpdateNameWithJSON(t *testing.T) {
	f := setup(t)
	product := f.create(t, "Table", 10)
	f.create(t, "Sofa", 10)
	path := fmt.Sprintf("/v1/admin/products/%d", product.ID)

	resp := f.env.JSON(t, http.MethodPut, path, map[string]any{"name": "Table"}, f.token)
	var updated models.Product
	resp.DecodeData(t, &updated)
	if resp.Code != http.StatusOK || updated.Slug != "table" {
		t.Errorf("Expected slug kept for same name, got %d %s", resp.Code, updated.Slug)
	}

	resp = f.env.JSON(t, http.MethodPut, path, map[string]any{"name": "Sofa"}, f.token)
	resp.DecodeData(t, &updated)
	if resp.Code != http.StatusOK || updated.Slug != "sofa-2" {
		t.Errorf("Expected sofa-2, got %d %s", resp.Code, updated.Slug)
	}

	resp = f.env.JSON(t, http.MethodPut, path, map[string]any{"name": " ", "status": "gone"}, f.token)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.Code)
	}
	if len(resp.Errors["name"]) == 0 || len(resp.Errors["status"]) == 0 {
		t.Errorf("Expected name and status errors, got %v", resp.Errors)
	}

	resp = f.env.JSON(t, http.MethodPut, "/v1/admin/products/9999", map[string]any{"name": "X"}, f.token)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.Code)
	}
}

func TestDeleteProductCascadesImages(t *testing.T) {
	f := setup(t)
	product := f.create(t, "Shelf", 10)
	path := fmt.Sprintf("/v1/admin/products/%d", product.ID)

	resp := f.env.JSON(t, http.MethodDelete, path, nil, f.token)
	if resp.Code != http.StatusOK || resp.Message != "Product deleted successfully" {
		t.Fatalf("Expected delete, got %d %+v", resp.Code, resp)
	}

	var images int64
	f.env.DB.Model(&models.ProductImage{}).Where("product_id = ?", product.ID).Count(&images)
	if images != 0 {
		t.Errorf("Expected 0 images left, got %d", images)
	}
	if n := f.storedFiles(t); n != 0 {
		t.Errorf("Expected image files removed, got %d", n)
	}

	var deleted models.Product
	if err := f.env.DB.Unscoped().First(&deleted, product.ID).Error; err != nil {
		t.Fatalf("Expected soft-deleted row: %v", err)
	}
	if !deleted.DeletedAt.Valid {
		t.Error("Expected deleted_at to be set")
	}

	if resp := f.env.JSON(t, http.MethodGet, path, nil, f.token); resp.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.Code)
	}
}

func TestProductPermissions(t *testing.T) {
	f := setup(t)
	var people models.User
	if err := f.env.DB.Where("email = ?", "um@example.com").First(&people).Error; err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	token := f.env.Login(t, &people)

	if resp := f.env.JSON(t, http.MethodGet, "/v1/admin/products", nil, token); resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.Code)
	}
	if resp := f.env.Multipart(t, http.MethodPost, "/v1/admin/products", f.fields("X", 1), pngs(1), token); resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.Code)
	}
}
