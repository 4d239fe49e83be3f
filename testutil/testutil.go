// Package testutil builds throwaway databases, fixtures and a fully wired
// router for handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/auth"
	"github.com/junaidrashid-git/aurelia-api/config"
	orderControllers "github.com/junaidrashid-git/aurelia-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/aurelia-api/controllers/product"
	"github.com/junaidrashid-git/aurelia-api/database"
	"github.com/junaidrashid-git/aurelia-api/metrics"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/junaidrashid-git/aurelia-api/routes"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	Password  = "correct-horse-1"
	JWTSecret = "test-secret"
)

func init() {
	auth.PasswordCost = bcrypt.MinCost
	gin.SetMode(gin.TestMode)
}

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts an active user with Password.
func CreateUser(t testing.TB, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	hashed, err := auth.HashPassword(Password)
	require.NoError(t, err)
	user := &models.User{
		Email:          email,
		HashedPassword: hashed,
		FullName:       "Test " + string(role),
		Role:           role,
		IsActive:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Deactivate flips is_active off. Creating with IsActive=false would be
// replaced by the column default.
func Deactivate(t testing.TB, db *gorm.DB, user *models.User) {
	t.Helper()
	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	user.IsActive = false
}

// CreateProduct inserts a product with the given price and stock.
func CreateProduct(t testing.TB, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		Category:      "rings",
		Sub:           "band",
		Description:   name + " description",
		StockQuantity: stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// ReloadProduct reads the product back, including soft-deleted rows.
func ReloadProduct(t testing.TB, db *gorm.DB, id uint) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, db.Unscoped().First(&p, id).Error)
	return p
}

func CountRows(t testing.TB, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

// Env is a router wired exactly like the server, backed by NewDB.
type Env struct {
	DB      *gorm.DB
	Tokens  *auth.TokenManager
	Feed    *orderControllers.Feed
	Metrics *metrics.ServerMetrics
	Images  *productcontroller.ImageStore
	Router  *gin.Engine
}

func NewEnv(t testing.TB) *Env {
	t.Helper()
	db := NewDB(t)
	cfg := &config.Config{
		Port:           "0",
		DatabaseURL:    ":memory:",
		JWTSecret:      JWTSecret,
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"http://localhost:5173"},
		UploadDir:      t.TempDir(),
		LogLevel:       "error",
		GinMode:        gin.TestMode,
	}
	deps := routes.Deps{
		DB:      db,
		Tokens:  auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Feed:    orderControllers.NewFeed(),
		Metrics: metrics.New(),
		Images:  productcontroller.NewImageStore(cfg.UploadDir),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Env{
		DB:      db,
		Tokens:  deps.Tokens,
		Feed:    deps.Feed,
		Metrics: deps.Metrics,
		Images:  deps.Images,
		Router:  routes.NewRouter(cfg, deps, logger),
	}
}

// Token issues a bearer token for user.
func (e *Env) Token(t testing.TB, user *models.User) string {
	t.Helper()
	token, err := e.Tokens.Issue(user)
	require.NoError(t, err)
	return token
}

// Do sends a JSON request through the router. A nil body sends no body.
func (e *Env) Do(t testing.TB, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		case []byte:
			r = bytes.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.Serve(req)
}

func (e *Env) Serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals a JSON response body into T.
func Decode[T any](t testing.TB, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}
