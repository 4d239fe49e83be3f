package cartControllers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/junaidrashid-git/aurelia-api/apierror"
	cartControllers "github.com/junaidrashid-git/aurelia-api/controllers/cart"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/junaidrashid-git/aurelia-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemPath(id uint) string {
	return "/cart/" + strconv.FormatUint(uint64(id), 10)
}

func TestAddToCartMergesQuantities(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "merge@example.com", models.RoleCustomer)
	p := testutil.CreateProduct(t, db, "Kada", "150.00", 1)

	first, err := cartControllers.AddToCart(db, user.ID, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	second, err := cartControllers.AddToCart(db, user.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	assert.EqualValues(t, 1, testutil.CountRows(t, db, &models.CartItem{}, "user_id = ?", user.ID))
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "zero@example.com", models.RoleCustomer)

	for _, qty := range []int{0, -2} {
		_, err := cartControllers.AddToCart(db, user.ID, 1, qty)
		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, apierror.KindValidation, apiErr.Kind)
	}
	assert.Zero(t, testutil.CountRows(t, db, &models.CartItem{}, ""))
}

func TestCartEndpoints(t *testing.T) {
	env := testutil.NewEnv(t)
	user := testutil.CreateUser(t, env.DB, "cart@example.com", models.RoleCustomer)
	token := env.Token(t, user)
	ring := testutil.CreateProduct(t, env.DB, "Halo", "320.00", 4)
	chain := testutil.CreateProduct(t, env.DB, "Figaro", "180.00", 0)

	rec := env.Do(t, http.MethodPost, "/cart/", token, map[string]any{"product_id": ring.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ringLine := testutil.Decode[models.CartItem](t, rec)

	// No stock check at add time.
	rec = env.Do(t, http.MethodPost, "/cart/", token, map[string]any{"product_id": chain.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	chainLine := testutil.Decode[models.CartItem](t, rec)

	t.Run("invalid quantity", func(t *testing.T) {
		rec := env.Do(t, http.MethodPost, "/cart/", token, map[string]any{"product_id": ring.ID, "quantity": 0})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		rec = env.Do(t, http.MethodPost, "/cart/", token, map[string]any{"product_id": ring.ID, "quantity": "two"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get enriches lines", func(t *testing.T) {
		rec := env.Do(t, http.MethodGet, "/cart/", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		lines := testutil.Decode[[]cartControllers.CartLine](t, rec)
		require.Len(t, lines, 2)
		require.NotNil(t, lines[0].Product)
		assert.Equal(t, "Halo", lines[0].Product.Name)
		assert.True(t, lines[0].Product.InStock)
		assert.False(t, lines[1].Product.InStock)
	})

	t.Run("update quantity", func(t *testing.T) {
		rec := env.Do(t, http.MethodPut, itemPath(ringLine.ID), token, map[string]any{"quantity": 7})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 7, testutil.Decode[models.CartItem](t, rec).Quantity)
	})

	t.Run("other users cannot touch the line", func(t *testing.T) {
		other := testutil.CreateUser(t, env.DB, "nosy@example.com", models.RoleCustomer)
		otherToken := env.Token(t, other)
		rec := env.Do(t, http.MethodPut, itemPath(ringLine.ID), otherToken, map[string]any{"quantity": 1})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = env.Do(t, http.MethodDelete, itemPath(ringLine.ID), otherToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("zero quantity removes the line", func(t *testing.T) {
		rec := env.Do(t, http.MethodPut, itemPath(chainLine.ID), token, map[string]any{"quantity": 0})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, testutil.CountRows(t, env.DB, &models.CartItem{}, "id = ?", chainLine.ID))
	})

	t.Run("deleted product shows as null", func(t *testing.T) {
		require.NoError(t, env.DB.Delete(&models.Product{}, ring.ID).Error)
		rec := env.Do(t, http.MethodGet, "/cart/", token, nil)
		lines := testutil.Decode[[]cartControllers.CartLine](t, rec)
		require.Len(t, lines, 1)
		assert.Nil(t, lines[0].Product)
	})

	t.Run("delete line and clear", func(t *testing.T) {
		rec := env.Do(t, http.MethodDelete, itemPath(ringLine.ID), token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = env.Do(t, http.MethodDelete, itemPath(ringLine.ID), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		env.Do(t, http.MethodPost, "/cart/", token, map[string]any{"product_id": chain.ID, "quantity": 1})
		rec = env.Do(t, http.MethodDelete, "/cart/", token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, testutil.CountRows(t, env.DB, &models.CartItem{}, "user_id = ?", user.ID))
	})

	t.Run("requires a token", func(t *testing.T) {
		rec := env.Do(t, http.MethodGet, "/cart/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAddToCartCapsLineQuantity(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "bulk@example.com", models.RoleCustomer)
	p := testutil.CreateProduct(t, db, "Toe Ring", "9.00", 5)

	_, err := cartControllers.AddToCart(db, user.ID, p.ID, cartControllers.MaxQuantity+1)
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindValidation, apiErr.Kind)

	_, err = cartControllers.AddToCart(db, user.ID, p.ID, cartControllers.MaxQuantity-1)
	require.NoError(t, err)

	// Merging past the cap is rejected and leaves the line as it was.
	_, err = cartControllers.AddToCart(db, user.ID, p.ID, 2)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierror.KindValidation, apiErr.Kind)

	var line models.CartItem
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&line).Error)
	assert.Equal(t, cartControllers.MaxQuantity-1, line.Quantity)
}

func TestCartQuantityLimitOverHTTP(t *testing.T) {
	env := testutil.NewEnv(t)
	user := testutil.CreateUser(t, env.DB, "huge@example.com", models.RoleCustomer)
	token := env.Token(t, user)
	p := testutil.CreateProduct(t, env.DB, "Nose Pin", "15.00", 5)

	rec := env.Do(t, http.MethodPost, "/cart/", token, map[string]any{"product_id": p.ID, "quantity": 1 << 40})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.Do(t, http.MethodPost, "/cart/", token, map[string]any{"product_id": p.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	line := testutil.Decode[models.CartItem](t, rec)

	rec = env.Do(t, http.MethodPut, itemPath(line.ID), token, map[string]any{"quantity": cartControllers.MaxQuantity + 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.Do(t, http.MethodPost, "/cart/", token, map[string]any{"product_id": p.ID, "quantity": cartControllers.MaxQuantity})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
