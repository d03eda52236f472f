package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
)

func TestOrderService_UserOrders(t *testing.T) {
	testDB := setupServiceDB(t)
	svc := NewOrderService(repository.NewOrderRepository(testDB))

	placed := placePendingOrder(t, testDB, "owner@example.com")
	stranger := createUser(t, testDB, "stranger@example.com")

	var order model.Order
	require.NoError(t, testDB.First(&order, placed.OrderID).Error)

	orders, err := svc.GetUserOrders(order.UserID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(13000), orders[0].TotalNaira)
	assert.Len(t, orders[0].OrderItems, 2)

	got, err := svc.GetOrderByID(order.UserID, placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderID, got.ID)

	_, err = svc.GetOrderByID(stranger.ID, placed.OrderID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.GetOrderByID(order.UserID, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	orders, err = svc.GetUserOrders(stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_SnapshotSurvivesCatalogEdits(t *testing.T) {
	testDB := setupServiceDB(t)
	svc := NewOrderService(repository.NewOrderRepository(testDB))
	placed := placePendingOrder(t, testDB, "owner@example.com")

	// reprice and delete every product after the order
	require.NoError(t, testDB.Model(&model.Product{}).Where("1 = 1").Update("price_naira", 1).Error)
	require.NoError(t, testDB.Where("1 = 1").Delete(&model.Product{}).Error)

	var order model.Order
	require.NoError(t, testDB.First(&order, placed.OrderID).Error)
	got, err := svc.GetOrderByID(order.UserID, placed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(13000), got.TotalNaira)

	var sum int64
	for _, it := range got.OrderItems {
		sum += it.LineTotal()
		assert.NotEmpty(t, it.ProductName)
		assert.NotNil(t, it.Product, "soft-deleted products are still preloaded")
	}
	assert.Equal(t, int64(13000), sum)
}
