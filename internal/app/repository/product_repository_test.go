package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/db"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewProductRepository(testDB)
}

func TestProductRepository_CreateKeepsFalseFlags(t *testing.T) {
	_, repo := setupProductTest(t)

	product := &model.Product{Name: "Hidden Bento", PriceNaira: 8000, CategorySlug: "bento", IsActive: false, IsShow: false}
	require.NoError(t, repo.Create(product))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
	assert.False(t, found.IsShow)
	assert.Equal(t, int64(0), found.Views)
}

func TestProductRepository_FindWithFilter(t *testing.T) {
	testDB, repo := setupProductTest(t)

	createTestProduct(t, testDB, "Vanilla Cupcakes", 4000)
	createTestProduct(t, testDB, "Banana Bread Loaf", 6000)
	inactive := &model.Product{Name: "Old Vanilla Cake", PriceNaira: 1000, IsActive: false}
	require.NoError(t, repo.Create(inactive))

	products, total, err := repo.FindWithFilter(ProductFilter{Search: "VANILLA"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 2)

	products, total, err = repo.FindWithFilter(ProductFilter{Search: "vanilla", ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Vanilla Cupcakes", products[0].Name)

	// category column is searched too
	_, total, err = repo.FindWithFilter(ProductFilter{Search: "cupcakes"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	products, total, err = repo.FindWithFilter(ProductFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, products, 1)
}

func TestProductRepository_CategoryLookups(t *testing.T) {
	testDB, repo := setupProductTest(t)

	tray := &model.Product{Name: "Party Food Tray", PriceNaira: 30000, IsActive: true, Category: "Food Tray"}
	require.NoError(t, repo.Create(tray))
	createTestProduct(t, testDB, "Mini Cupcakes", 3000)

	bySlug, err := repo.FindActiveByColumn("category_slug", "cupcakes", 50)
	require.NoError(t, err)
	assert.Len(t, bySlug, 1)

	byName, err := repo.FindActiveByColumn("category", "Food Tray", 50)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, tray.ID, byName[0].ID)

	_, err = repo.FindActiveByColumn("name; DROP TABLE products", "x", 50)
	assert.Error(t, err)

	byKeyword, err := repo.SearchActiveByName("tray", 50)
	require.NoError(t, err)
	assert.Len(t, byKeyword, 1)
}

func TestProductRepository_FeaturedAndViews(t *testing.T) {
	testDB, repo := setupProductTest(t)

	a := createTestProduct(t, testDB, "Featured Cake", 9000)
	b := &model.Product{Name: "Popular Waffle", PriceNaira: 2500, IsActive: true, IsShow: false}
	require.NoError(t, repo.Create(b))

	featured, err := repo.FindFeatured(8)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, a.ID, featured[0].ID)

	require.NoError(t, repo.IncrementViewCount(b.ID))
	require.NoError(t, repo.IncrementViewCount(b.ID))

	viewed, err := repo.FindMostViewed(1)
	require.NoError(t, err)
	require.Len(t, viewed, 1)
	assert.Equal(t, b.ID, viewed[0].ID)
	assert.Equal(t, int64(2), viewed[0].Views)
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	testDB, repo := setupProductTest(t)
	product := createTestProduct(t, testDB, "Cakelets Box", 7000)

	updated, err := repo.Update(product.ID, map[string]interface{}{"price_naira": int64(7500), "is_show": false})
	require.NoError(t, err)
	assert.Equal(t, int64(7500), updated.PriceNaira)
	assert.False(t, updated.IsShow)

	_, err = repo.Update(9999, map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(product.ID))
	_, err = repo.FindByID(product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(product.ID), gorm.ErrRecordNotFound)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestProductRepository_BulkCreate(t *testing.T) {
	_, repo := setupProductTest(t)

	products := []model.Product{
		{Name: "A", PriceNaira: 100, IsActive: true},
		{Name: "B", PriceNaira: 200, IsActive: true},
		{Name: "C", PriceNaira: 300, IsActive: true},
	}
	require.NoError(t, repo.BulkCreate(products, 2))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	found, err := repo.FindByIDs([]uint{products[0].ID, products[2].ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
