// Package apitest drives feature handlers through a chi router backed by a
// migrated in-memory database.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/pankajredekar/shopadmin/internal/auth"
	"github.com/pankajredekar/shopadmin/internal/middlewares"
	"github.com/pankajredekar/shopadmin/internal/models"
	"github.com/pankajredekar/shopadmin/internal/permission"
	"github.com/pankajredekar/shopadmin/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain password of users made by CreateUser
const Password = "password"

type Env struct {
	DB     *gorm.DB
	Tokens *auth.TokenService
	MW     *middlewares.Middleware
	Router *chi.Mux
}

func New(t *testing.T) *Env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens := auth.NewTokenService(db, "test-secret", time.Hour)
	return &Env{
		DB:     db,
		Tokens: tokens,
		MW:     middlewares.NewMiddleware(tokens, true),
		Router: chi.NewRouter(),
	}
}

// CreateUser stores a user with role and Password
func (e *Env) CreateUser(t *testing.T, name, email string, role permission.Role) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{Name: name, Email: email, Password: string(hash), Role: role}
	if err := e.DB.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

// Login issues a bearer token for user
func (e *Env) Login(t *testing.T, user *models.User) string {
	t.Helper()
	issued, err := e.Tokens.Issue(t.Context(), user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return issued.AccessToken
}

// Response is a decoded envelope
type Response struct {
	Code    int                 `json:"-"`
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// DecodeData unmarshals the data member into v
func (r *Response) DecodeData(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("Failed to decode data %s: %v", r.Data, err)
	}
}

// JSON sends body encoded as JSON. A nil body sends no body.
func (e *Env) JSON(t *testing.T, method, path string, body any, token string) *Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req, token)
}

// File is one multipart file part
type File struct {
	Field string
	Name  string
	Data  []byte
}

// Multipart sends fields and files as multipart/form-data
func (e *Env) Multipart(t *testing.T, method, path string, fields map[string][]string, files []File, token string) *Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(name, v); err != nil {
				t.Fatalf("Failed to write field %s: %v", name, err)
			}
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			t.Fatalf("Failed to create file part: %v", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			t.Fatalf("Failed to write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req, token)
}

func (e *Env) do(t *testing.T, req *http.Request, token string) *Response {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)

	resp := &Response{Code: rec.Code}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return resp
}

// PNG is the smallest valid PNG, for upload tests
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
