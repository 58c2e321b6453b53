package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pankajredekar/shopadmin/internal/auth"
	"github.com/pankajredekar/shopadmin/internal/config"
	"github.com/pankajredekar/shopadmin/internal/mailer"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/ratelimit"
	"github.com/pankajredekar/shopadmin/internal/testutil/apitest"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.TokenSecret = "test-secret"
	cfg.StorageDir = t.TempDir()
	cfg.Debug = true
	return cfg
}

func setup(t *testing.T) (*server, *apitest.Env, *mailer.Recorder) {
	t.Helper()
	env := apitest.New(t)
	rec := &mailer.Recorder{}

	srv, err := NewServer(&ServerConfig{App: testConfig(t), DB: env.DB, Mailer: rec})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	router, err := srv.router(t.Context())
	if err != nil {
		t.Fatalf("router failed: %v", err)
	}
	t.Cleanup(srv.stop)

	env.Router = router
	return srv, env, rec
}

func TestNewServerRequiresConfig(t *testing.T) {
	if _, err := NewServer(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if _, err := NewServer(&ServerConfig{App: config.Default()}); err == nil {
		t.Error("Expected error for missing db")
	}
}

func TestHealth(t *testing.T) {
	_, env, _ := setup(t)

	resp := env.JSON(t, http.MethodGet, "/health", nil, "")
	if resp.Code != http.StatusOK || resp.Status != "success" {
		t.Errorf("Expected healthy response, got %d %+v", resp.Code, resp)
	}
}

func TestAdminFlow(t *testing.T) {
	srv, env, rec := setup(t)

	resp := env.JSON(t, http.MethodPost, "/v1/admin/register", map[string]string{
		"name":     "Owner",
		"email":    "owner@example.com",
		"password": "secret123",
	}, "")
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on register, got %d %+v", resp.Code, resp)
	}

	resp = env.JSON(t, http.MethodPost, "/v1/admin/login", map[string]string{
		"email":    "owner@example.com",
		"password": "secret123",
	}, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200 on login, got %d %+v", resp.Code, resp)
	}
	var issued auth.IssuedToken
	resp.DecodeData(t, &issued)
	token := issued.AccessToken

	resp = env.JSON(t, http.MethodPost, "/v1/admin/categories", map[string]string{"name": "Lighting"}, token)
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on category, got %d %+v", resp.Code, resp)
	}
	var category models.Category
	resp.DecodeData(t, &category)

	fields := map[string][]string{
		"name":          {"Floor Lamp"},
		"price":         {"49.50"},
		"stock":         {"10"},
		"status":        {models.StatusAvailable},
		"category_id":   {fmt.Sprint(category.ID)},
		"primary_image": {"0"},
	}
	files := []apitest.File{{Field: "images[]", Name: "lamp.png", Data: apitest.PNG}}
	resp = env.Multipart(t, http.MethodPost, "/v1/admin/products", fields, files, token)
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on product, got %d %+v", resp.Code, resp)
	}
	var product models.Product
	resp.DecodeData(t, &product)
	if len(product.Images) != 1 {
		t.Fatalf("Expected 1 image, got %+v", product.Images)
	}

	// uploaded images are served from the public url
	ts := httptest.NewServer(env.Router)
	defer ts.Close()
	fileResp, err := http.Get(ts.URL + product.Images[0].ImageURL)
	if err != nil {
		t.Fatalf("Failed to fetch image: %v", err)
	}
	image, err := io.ReadAll(fileResp.Body)
	fileResp.Body.Close()
	if err != nil {
		t.Fatalf("Failed to read image: %v", err)
	}
	if fileResp.StatusCode != http.StatusOK || !bytes.Equal(image, apitest.PNG) {
		t.Errorf("Expected stored image at %s, got %d", product.Images[0].ImageURL, fileResp.StatusCode)
	}

	path := fmt.Sprintf("/v1/admin/products/%d", product.ID)
	resp = env.JSON(t, http.MethodPut, path, map[string]int{"stock": 2}, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200 on update, got %d %+v", resp.Code, resp)
	}

	resp = env.JSON(t, http.MethodGet, "/v1/admin/dashboard", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200 on dashboard, got %d %+v", resp.Code, resp)
	}
	var summary struct {
		LowStockCount int64 `json:"low_stock_count"`
		UsersCount    int64 `json:"users_count"`
	}
	resp.DecodeData(t, &summary)
	if summary.LowStockCount != 1 || summary.UsersCount != 1 {
		t.Errorf("Unexpected summary %+v", summary)
	}

	// alerts go through the event engine and are flushed on stop
	srv.stop()
	sent := rec.Sent()
	if len(sent) != 1 || sent[0].To != "owner@example.com" {
		t.Fatalf("Expected one alert to the owner, got %+v", sent)
	}

	resp = env.JSON(t, http.MethodPost, "/v1/admin/logout", nil, token)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200 on logout, got %d", resp.Code)
	}
	if resp = env.JSON(t, http.MethodGet, "/v1/admin/dashboard", nil, token); resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", resp.Code)
	}
}

func TestNewRegisterLimiter(t *testing.T) {
	srv, err := NewServer(&ServerConfig{App: testConfig(t), DB: apitest.New(t).DB})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	limiter, err := srv.newRegisterLimiter(t.Context())
	if err != nil {
		t.Fatalf("newRegisterLimiter failed: %v", err)
	}
	if _, ok := limiter.(*ratelimit.MemoryLimiter); !ok {
		t.Errorf("Expected memory limiter without redis, got %T", limiter)
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	srv.App.Redis.Addr = mr.Addr()
	limiter, err = srv.newRegisterLimiter(t.Context())
	if err != nil {
		t.Fatalf("newRegisterLimiter failed: %v", err)
	}
	defer srv.redis.Close()
	if _, ok := limiter.(*ratelimit.RedisLimiter); !ok {
		t.Fatalf("Expected redis limiter, got %T", limiter)
	}
	if ok, err := limiter.Allow(t.Context(), "192.0.2.1"); err != nil || !ok {
		t.Errorf("Expected first attempt allowed, got %v %v", ok, err)
	}
	if !mr.Exists("register:192.0.2.1") {
		t.Error("Expected counter key in redis")
	}
}

func TestNewMailer(t *testing.T) {
	srv, err := NewServer(&ServerConfig{App: testConfig(t), DB: apitest.New(t).DB})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if _, ok := srv.newMailer().(mailer.LogMailer); !ok {
		t.Error("Expected log mailer without mail host")
	}

	srv.App.Mail.Host = "smtp.example.com"
	if _, ok := srv.newMailer().(*mailer.SMTPMailer); !ok {
		t.Error("Expected smtp mailer with mail host")
	}
}
