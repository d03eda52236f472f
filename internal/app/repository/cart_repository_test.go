package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/db"
	"gorm.io/gorm"
)

func createTestProduct(t *testing.T, testDB *gorm.DB, name string, price int64) *model.Product {
	product := &model.Product{
		Name:         name,
		PriceNaira:   price,
		IsActive:     true,
		IsShow:       true,
		CategorySlug: "cupcakes",
		Category:     "Cupcakes",
		Type:         "cupcakes",
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	product := createTestProduct(t, testDB, "Red Velvet Cupcakes", 5000)
	return testDB, NewCartRepository(testDB), product
}

func TestCartRepository_CreateAndFindOpen(t *testing.T) {
	_, repo, _ := setupCartTest(t)

	_, err := repo.FindOpenByUserID(1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	cart := &model.Cart{UserID: 1}
	require.NoError(t, repo.CreateCart(cart))
	assert.NotZero(t, cart.ID)
	assert.Equal(t, model.CartStatusOpen, cart.Status)

	found, err := repo.FindOpenByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)
}

func TestCartRepository_OneOpenCartPerUser(t *testing.T) {
	_, repo, _ := setupCartTest(t)

	require.NoError(t, repo.CreateCart(&model.Cart{UserID: 7}))
	assert.Error(t, repo.CreateCart(&model.Cart{UserID: 7}), "second open cart must violate the partial unique index")

	// other users are unaffected
	assert.NoError(t, repo.CreateCart(&model.Cart{UserID: 8}))
}

func TestCartRepository_MarkOrderedAllowsNewOpenCart(t *testing.T) {
	_, repo, _ := setupCartTest(t)

	first := &model.Cart{UserID: 3}
	require.NoError(t, repo.CreateCart(first))

	changed, err := repo.MarkOrdered(first.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkOrdered(first.ID)
	require.NoError(t, err)
	assert.False(t, changed, "already ordered")

	second := &model.Cart{UserID: 3}
	require.NoError(t, repo.CreateCart(second))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCartRepository_UpsertItemReplacesQuantity(t *testing.T) {
	_, repo, product := setupCartTest(t)

	cart := &model.Cart{UserID: 1}
	require.NoError(t, repo.CreateCart(cart))

	item, err := repo.UpsertItem(cart.ID, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, product.Name, item.Product.Name)

	again, err := repo.UpsertItem(cart.ID, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, item.ID, again.ID)
	assert.Equal(t, 3, again.Quantity)

	items, err := repo.FindItems(cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, int64(15000), items[0].LineTotal())
}

func TestCartRepository_ItemsScopedToCart(t *testing.T) {
	_, repo, product := setupCartTest(t)

	mine := &model.Cart{UserID: 1}
	theirs := &model.Cart{UserID: 2}
	require.NoError(t, repo.CreateCart(mine))
	require.NoError(t, repo.CreateCart(theirs))

	item, err := repo.UpsertItem(theirs.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = repo.FindItem(mine.ID, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdateItemQuantity(mine.ID, item.ID, 4), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.DeleteItem(mine.ID, item.ID), gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpdateItemQuantity(theirs.ID, item.ID, 4))
	found, err := repo.FindItem(theirs.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, found.Quantity)

	require.NoError(t, repo.DeleteItem(theirs.ID, item.ID))
	items, err := repo.FindItems(theirs.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRepository_WithTxRollback(t *testing.T) {
	testDB, repo, _ := setupCartTest(t)

	tx := testDB.Begin()
	require.NoError(t, repo.WithTx(tx).CreateCart(&model.Cart{UserID: 11}))
	tx.Rollback()

	_, err := repo.FindOpenByUserID(11)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
