package productcontroller_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	cartControllers "github.com/junaidrashid-git/aurelia-api/controllers/cart"
	orderControllers "github.com/junaidrashid-git/aurelia-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/aurelia-api/controllers/product"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/junaidrashid-git/aurelia-api/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

func productPath(id uint) string {
	return "/products/" + strconv.FormatUint(uint64(id), 10)
}

func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	products := []models.Product{
		{Name: "Solitaire Ring", Price: decimal.NewFromInt(28000), Category: "rings", Sub: "solitaire", StockQuantity: 15, IsFeatured: true, Description: "Certified diamond"},
		{Name: "Band Ring", Price: decimal.NewFromInt(6500), Category: "rings", Sub: "band", StockQuantity: 0},
		{Name: "Pendant Necklace", Price: decimal.NewFromInt(21000), Category: "necklaces", Sub: "pendant", StockQuantity: 20, IsFeatured: true, Description: "Gold filigree"},
		{Name: "Silver Anklet", Price: decimal.NewFromInt(3500), Category: "anklets", Sub: "silver", StockQuantity: 60},
	}
	require.NoError(t, db.Create(&products).Error)
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestProductListing(t *testing.T) {
	env := testutil.NewEnv(t)
	seedCatalog(t, env.DB)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"Solitaire Ring", "Band Ring", "Pendant Necklace", "Silver Anklet"}},
		{"category", "?category=rings", []string{"Solitaire Ring", "Band Ring"}},
		{"sub", "?category=rings&sub=band", []string{"Band Ring"}},
		{"in stock", "?in_stock=true&category=rings", []string{"Solitaire Ring"}},
		{"out of stock", "?in_stock=false", []string{"Band Ring"}},
		{"featured", "?featured=true", []string{"Solitaire Ring", "Pendant Necklace"}},
		{"paged", "?skip=1&limit=2", []string{"Band Ring", "Pendant Necklace"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.Do(t, http.MethodGet, "/products/"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, names(testutil.Decode[[]models.Product](t, rec)))
		})
	}

	for _, bad := range []string{"?limit=0", "?limit=201", "?skip=-1", "?in_stock=maybe", "?limit=ten"} {
		rec := env.Do(t, http.MethodGet, "/products/"+bad, "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, bad)
	}

	t.Run("by category path", func(t *testing.T) {
		rec := env.Do(t, http.MethodGet, "/products/category/necklaces?featured=true", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Pendant Necklace"}, names(testutil.Decode[[]models.Product](t, rec)))
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		rec := env.Do(t, http.MethodGet, "/products/search?q=GOLD", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Pendant Necklace"}, names(testutil.Decode[[]models.Product](t, rec)))

		rec = env.Do(t, http.MethodGet, "/products/search?q=ring", "", nil)
		assert.Equal(t, []string{"Solitaire Ring", "Band Ring"}, names(testutil.Decode[[]models.Product](t, rec)))

		rec = env.Do(t, http.MethodGet, "/products/search", "", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("categories tree", func(t *testing.T) {
		rec := env.Do(t, http.MethodGet, "/products/categories", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		cats := testutil.Decode[[]productcontroller.Category](t, rec)
		require.Len(t, cats, 3)
		assert.Equal(t, "anklets", cats[0].Name)
		assert.Equal(t, "rings", cats[2].Name)
		assert.EqualValues(t, 2, cats[2].Count)
		assert.Len(t, cats[2].Subs, 2)
	})
}

func TestGetProductByID(t *testing.T) {
	env := testutil.NewEnv(t)
	p := testutil.CreateProduct(t, env.DB, "Jhumka", "85.00", 3)

	rec := env.Do(t, http.MethodGet, productPath(p.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := testutil.Decode[models.Product](t, rec)
	assert.Equal(t, "Jhumka", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("85")))
	assert.True(t, got.InStock)

	assert.Equal(t, http.StatusNotFound, env.Do(t, http.MethodGet, "/products/424242", "", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.Do(t, http.MethodGet, "/products/0", "", nil).Code)
}

func TestProductAdminWrites(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := testutil.CreateUser(t, env.DB, "admin@example.com", models.RoleAdmin)
	customer := testutil.CreateUser(t, env.DB, "shopper@example.com", models.RoleCustomer)
	adminToken, userToken := env.Token(t, admin), env.Token(t, customer)

	body := map[string]any{
		"name":           "Temple Necklace",
		"price":          "42000.00",
		"category":       "necklaces",
		"sub":            "temple",
		"stock_quantity": 8,
		"images":         []string{"/a.jpg", "/b.jpg"},
	}

	assert.Equal(t, http.StatusUnauthorized, env.Do(t, http.MethodPost, "/products/", "", body).Code)
	assert.Equal(t, http.StatusForbidden, env.Do(t, http.MethodPost, "/products/", userToken, body).Code)

	rec := env.Do(t, http.MethodPost, "/products/", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := testutil.Decode[models.Product](t, rec)
	assert.True(t, created.InStock)
	assert.Equal(t, []string{"/a.jpg", "/b.jpg"}, created.Images)

	t.Run("validation", func(t *testing.T) {
		for _, invalid := range []map[string]any{
			{"price": 10},
			{"name": "Free", "price": 0},
			{"name": "Negative", "price": 5, "stock_quantity": -1},
		} {
			rec := env.Do(t, http.MethodPost, "/products/", adminToken, invalid)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, invalid)
		}
	})

	t.Run("patch changes only given fields", func(t *testing.T) {
		rec := env.Do(t, http.MethodPatch, productPath(created.ID), adminToken, map[string]any{"stock_quantity": 0})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := testutil.Decode[models.Product](t, rec)
		assert.Equal(t, "Temple Necklace", got.Name)
		assert.Equal(t, 0, got.StockQuantity)
		assert.False(t, got.InStock)

		rec = env.Do(t, http.MethodPatch, productPath(created.ID), adminToken, map[string]any{"price": -3})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("put replaces", func(t *testing.T) {
		rec := env.Do(t, http.MethodPut, productPath(created.ID), adminToken, map[string]any{
			"name": "Temple Necklace II", "price": 45000, "stock_quantity": 2,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := testutil.Decode[models.Product](t, rec)
		assert.Equal(t, "Temple Necklace II", got.Name)
		assert.Empty(t, got.Category)
		assert.True(t, got.InStock)

		rec = env.Do(t, http.MethodPut, "/products/9999", adminToken, map[string]any{"name": "X", "price": 1})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPriceChangeDoesNotTouchPlacedOrders(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := testutil.CreateUser(t, env.DB, "admin@example.com", models.RoleAdmin)
	buyer := testutil.CreateUser(t, env.DB, "buyer@example.com", models.RoleCustomer)
	p := testutil.CreateProduct(t, env.DB, "Stud Earrings", "150.00", 5)

	_, err := cartControllers.AddToCart(env.DB, buyer.ID, p.ID, 2)
	require.NoError(t, err)
	order, err := orderControllers.Checkout(context.Background(), env.DB, buyer.ID, orderControllers.CheckoutInput{})
	require.NoError(t, err)

	rec := env.Do(t, http.MethodPatch, productPath(p.ID), env.Token(t, admin), map[string]any{"price": "999.99", "name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.Do(t, http.MethodDelete, productPath(p.ID), env.Token(t, admin), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var stored models.Order
	require.NoError(t, env.DB.Preload("Items").First(&stored, order.ID).Error)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Stud Earrings", stored.Items[0].ProductName)
	assert.Equal(t, "150.00", stored.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "300.00", stored.Total.StringFixed(2))
}

func TestDeleteProductDropsCartLines(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := testutil.CreateUser(t, env.DB, "admin@example.com", models.RoleAdmin)
	buyer := testutil.CreateUser(t, env.DB, "buyer@example.com", models.RoleCustomer)
	gone := testutil.CreateProduct(t, env.DB, "Discontinued", "10.00", 5)
	kept := testutil.CreateProduct(t, env.DB, "Kept", "10.00", 5)
	for _, p := range []*models.Product{gone, kept} {
		_, err := cartControllers.AddToCart(env.DB, buyer.ID, p.ID, 1)
		require.NoError(t, err)
	}

	rec := env.Do(t, http.MethodDelete, productPath(gone.ID), env.Token(t, admin), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, http.StatusNotFound, env.Do(t, http.MethodGet, productPath(gone.ID), "", nil).Code)
	assert.Zero(t, testutil.CountRows(t, env.DB, &models.CartItem{}, "product_id = ?", gone.ID))
	assert.EqualValues(t, 1, testutil.CountRows(t, env.DB, &models.CartItem{}, "product_id = ?", kept.ID))
	assert.True(t, testutil.ReloadProduct(t, env.DB, gone.ID).DeletedAt.Valid)

	rec = env.Do(t, http.MethodDelete, productPath(gone.ID), env.Token(t, admin), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkbookRoundTrip(t *testing.T) {
	env := testutil.NewEnv(t)
	admin := testutil.CreateUser(t, env.DB, "admin@example.com", models.RoleAdmin)
	token := env.Token(t, admin)
	seedCatalog(t, env.DB)

	rec := env.Do(t, http.MethodGet, "/products/admin/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "products.xlsx")

	book, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, book.Sheets, 1)
	sheet := book.Sheets[0]
	require.Len(t, sheet.Rows, 5)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "Solitaire Ring", sheet.Rows[1].Cells[1].String())

	// Edit one row, blank the id of another and add a broken one.
	sheet.Rows[1].Cells[10].SetString("3")
	sheet.Rows[2].Cells[0].SetString("")
	sheet.Rows[2].Cells[1].SetString("Band Ring Copy")
	broken := sheet.AddRow()
	broken.AddCell().SetString("")
	broken.AddCell().SetString("No Price")
	broken.AddCell().SetString("free")

	var buf bytes.Buffer
	require.NoError(t, book.Write(&buf))

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "products.xlsx")
	require.NoError(t, err)
	_, err = part.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/admin/import", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec = env.Serve(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := testutil.Decode[productcontroller.ImportResult](t, rec)
	assert.Equal(t, productcontroller.ImportResult{Created: 1, Updated: 3, Skipped: 1}, result)

	var solitaire models.Product
	require.NoError(t, env.DB.Where("name = ?", "Solitaire Ring").First(&solitaire).Error)
	assert.Equal(t, 3, solitaire.StockQuantity)
	assert.True(t, solitaire.IsFeatured)
	assert.EqualValues(t, 2, testutil.CountRows(t, env.DB, &models.Product{}, "name LIKE ?", "Band Ring%"))
}
