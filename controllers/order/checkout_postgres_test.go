//go:build integration

package orderControllers_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/junaidrashid-git/aurelia-api/apierror"
	orderControllers "github.com/junaidrashid-git/aurelia-api/controllers/order"
	"github.com/junaidrashid-git/aurelia-api/database"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/junaidrashid-git/aurelia-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// newPostgresDB starts a throwaway Postgres container and returns a migrated
// connection to it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("jewellery"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(url, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestPostgresConcurrentCheckoutsNeverOversell(t *testing.T) {
	db := newPostgresDB(t)
	pendant := testutil.CreateProduct(t, db, "Pearl Pendant", "89.99", 3)

	const buyers = 12
	users := make([]*models.User, buyers)
	for i := range users {
		users[i] = testutil.CreateUser(t, db, fmt.Sprintf("buyer%02d@example.com", i), models.RoleCustomer)
		addToCart(t, db, users[i].ID, pendant.ID, 1)
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i, u := range users {
		wg.Add(1)
		go func(i int, userID uint) {
			defer wg.Done()
			_, errs[i] = orderControllers.Checkout(context.Background(), db, userID, orderControllers.CheckoutInput{})
		}(i, u.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireKind(t, err, apierror.KindConflict)
	}
	assert.Equal(t, 3, succeeded)

	got := testutil.ReloadProduct(t, db, pendant.ID)
	assert.Equal(t, 0, got.StockQuantity)
	assert.False(t, got.InStock)
	assert.EqualValues(t, 3, testutil.CountRows(t, db, &models.Order{}, ""))
	assert.EqualValues(t, buyers-3, testutil.CountRows(t, db, &models.CartItem{}, ""))
}

func TestPostgresShortageRollsBack(t *testing.T) {
	db := newPostgresDB(t)
	user := testutil.CreateUser(t, db, "shortage@example.com", models.RoleCustomer)
	ring := testutil.CreateProduct(t, db, "Eternity Ring", "450.00", 5)
	chain := testutil.CreateProduct(t, db, "Rope Chain", "120.00", 1)
	addToCart(t, db, user.ID, ring.ID, 2)
	addToCart(t, db, user.ID, chain.ID, 2)

	_, err := orderControllers.Checkout(context.Background(), db, user.ID, orderControllers.CheckoutInput{})
	apiErr := requireKind(t, err, apierror.KindConflict)
	shortages, ok := apiErr.Details.([]orderControllers.StockShortage)
	require.True(t, ok)
	require.Len(t, shortages, 1)
	assert.Equal(t, chain.ID, shortages[0].ProductID)

	assert.Equal(t, 5, testutil.ReloadProduct(t, db, ring.ID).StockQuantity)
	assert.Equal(t, 1, testutil.ReloadProduct(t, db, chain.ID).StockQuantity)
	assert.EqualValues(t, 2, testutil.CountRows(t, db, &models.CartItem{}, "user_id = ?", user.ID))
	assert.Zero(t, testutil.CountRows(t, db, &models.Order{}, ""))
}
