package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.User) {
	testDB := setupServiceDB(t)
	svc := NewCartService(repository.NewCartRepository(testDB), repository.NewProductRepository(testDB))
	return svc, testDB, createUser(t, testDB, "cart@example.com")
}

func TestCartService_EmptyCartTotals(t *testing.T) {
	svc, _, user := setupCartServiceTest(t)

	view, err := svc.GetCartWithTotals(user.ID)
	require.NoError(t, err)
	assert.Nil(t, view.CartID)
	assert.NotNil(t, view.Items)
	assert.Len(t, view.Items, 0)
	assert.Equal(t, int64(0), view.TotalNaira)
	assert.Equal(t, 0, view.Count)
}

func TestCartService_AddItemReplacesQuantity(t *testing.T) {
	svc, testDB, user := setupCartServiceTest(t)
	product := createProduct(t, testDB, "Chocolate Fudge Cake", 5000)

	_, err := svc.AddItem(user.ID, product.ID, 2)
	require.NoError(t, err)
	item, err := svc.AddItem(user.ID, product.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	view, err := svc.GetCartWithTotals(user.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, int64(15000), view.TotalNaira)
	assert.Equal(t, int64(1), countRows(t, testDB, &model.Cart{}))
}

func TestCartService_Totals(t *testing.T) {
	svc, testDB, user := setupCartServiceTest(t)
	a := createProduct(t, testDB, "Vanilla Sponge", 5000)
	b := createProduct(t, testDB, "Cupcake Box", 3000)

	_, err := svc.AddItem(user.ID, a.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(user.ID, b.ID, 1)
	require.NoError(t, err)

	view, err := svc.GetCartWithTotals(user.ID)
	require.NoError(t, err)
	require.NotNil(t, view.CartID)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, int64(13000), view.TotalNaira)
	assert.Equal(t, 3, view.Count)
}

func TestCartService_AddItemRejections(t *testing.T) {
	svc, testDB, user := setupCartServiceTest(t)
	product := createProduct(t, testDB, "Red Velvet", 4000)

	inactive := createProduct(t, testDB, "Retired Cake", 4000)
	require.NoError(t, testDB.Model(inactive).Update("is_active", false).Error)

	tests := []struct {
		name      string
		productID uint
		quantity  int
		wantErr   error
	}{
		{"zero quantity", product.ID, 0, ErrInvalidQuantity},
		{"negative quantity", product.ID, -2, ErrInvalidQuantity},
		{"unknown product", 9999, 1, ErrProductNotFound},
		{"inactive product", inactive.ID, 1, ErrProductUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(user.ID, tt.productID, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Equal(t, int64(0), countRows(t, testDB, &model.CartItem{}))
}

func TestCartService_UpdateQuantity(t *testing.T) {
	svc, testDB, user := setupCartServiceTest(t)
	product := createProduct(t, testDB, "Lemon Drizzle", 2500)

	item, err := svc.AddItem(user.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateQuantity(user.ID, item.ID, 4))
	view, err := svc.GetCartWithTotals(user.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(10000), view.TotalNaira)

	// zero removes the line
	require.NoError(t, svc.UpdateQuantity(user.ID, item.ID, 0))
	view, err = svc.GetCartWithTotals(user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 0)
	assert.Equal(t, int64(0), view.TotalNaira)
}

func TestCartService_LinesAreScopedToOwner(t *testing.T) {
	svc, testDB, owner := setupCartServiceTest(t)
	other := createUser(t, testDB, "other@example.com")
	product := createProduct(t, testDB, "Carrot Cake", 6000)

	item, err := svc.AddItem(owner.ID, product.ID, 1)
	require.NoError(t, err)

	// the other user has no open cart
	assert.ErrorIs(t, svc.UpdateQuantity(other.ID, item.ID, 5), ErrCartItemNotFound)
	assert.ErrorIs(t, svc.RemoveItem(other.ID, item.ID), ErrCartItemNotFound)

	// and with one, still cannot reach the owner's line
	_, err = svc.AddItem(other.ID, product.ID, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.RemoveItem(other.ID, item.ID), ErrCartItemNotFound)

	view, err := svc.GetCartWithTotals(owner.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)
}

func TestCartService_RemoveItem(t *testing.T) {
	svc, testDB, user := setupCartServiceTest(t)
	product := createProduct(t, testDB, "Banana Bread", 3500)

	item, err := svc.AddItem(user.ID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(user.ID, item.ID))
	assert.ErrorIs(t, svc.RemoveItem(user.ID, item.ID), ErrCartItemNotFound)
}

func TestCartService_NewCartAfterCheckout(t *testing.T) {
	svc, testDB, user := setupCartServiceTest(t)
	product := createProduct(t, testDB, "Cheesecake", 7000)

	_, err := svc.AddItem(user.ID, product.ID, 1)
	require.NoError(t, err)
	first, err := svc.GetCartWithTotals(user.ID)
	require.NoError(t, err)

	require.NoError(t, testDB.Model(&model.Cart{}).Where("id = ?", *first.CartID).
		Update("status", model.CartStatusOrdered).Error)

	view, err := svc.GetCartWithTotals(user.ID)
	require.NoError(t, err)
	assert.Nil(t, view.CartID)

	_, err = svc.AddItem(user.ID, product.ID, 1)
	require.NoError(t, err)
	view, err = svc.GetCartWithTotals(user.ID)
	require.NoError(t, err)
	require.NotNil(t, view.CartID)
	assert.NotEqual(t, *first.CartID, *view.CartID)
}

// racingCartRepo simulates another request creating the open cart between
// this request's lookup and its insert.
type racingCartRepo struct {
	repository.CartRepository
	staleReads int
	createErr  error
	winner     *model.Cart
}

func (r *racingCartRepo) FindOpenByUserID(userID uint) (*model.Cart, error) {
	if r.staleReads > 0 {
		r.staleReads--
		return nil, gorm.ErrRecordNotFound
	}
	return r.CartRepository.FindOpenByUserID(userID)
}

func (r *racingCartRepo) CreateCart(cart *model.Cart) error {
	if r.winner == nil {
		r.winner = &model.Cart{UserID: cart.UserID, Status: model.CartStatusOpen}
		if err := r.CartRepository.CreateCart(r.winner); err != nil {
			return err
		}
	}
	return r.createErr
}

func TestCartService_AddItemReusesConcurrentlyCreatedCart(t *testing.T) {
	testDB := setupServiceDB(t)
	user := createUser(t, testDB, "race@example.com")
	product := createProduct(t, testDB, "Lemon Drizzle", 4500)

	carts := &racingCartRepo{
		CartRepository: repository.NewCartRepository(testDB),
		staleReads:     1,
		createErr:      errors.New("duplicate key value violates unique constraint \"idx_carts_user_open\""),
	}
	svc := NewCartService(carts, repository.NewProductRepository(testDB))

	item, err := svc.AddItem(user.ID, product.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, carts.winner)
	assert.Equal(t, carts.winner.ID, item.CartID)
	assert.Equal(t, int64(1), countRows(t, testDB, &model.Cart{}))

	view, err := svc.GetCartWithTotals(user.ID)
	require.NoError(t, err)
	require.NotNil(t, view.CartID)
	assert.Equal(t, carts.winner.ID, *view.CartID)
	assert.Equal(t, int64(9000), view.TotalNaira)
}

func TestCartService_AddItemCreateFailureSurfaces(t *testing.T) {
	testDB := setupServiceDB(t)
	user := createUser(t, testDB, "broken@example.com")
	product := createProduct(t, testDB, "Lemon Drizzle", 4500)

	createErr := errors.New("connection reset")
	carts := &racingCartRepo{
		CartRepository: repository.NewCartRepository(testDB),
		staleReads:     2,
		createErr:      createErr,
		// no winner row: the re-read also misses
		winner: &model.Cart{},
	}
	svc := NewCartService(carts, repository.NewProductRepository(testDB))

	_, err := svc.AddItem(user.ID, product.ID, 1)
	assert.ErrorIs(t, err, createErr)
	assert.Equal(t, int64(0), countRows(t, testDB, &model.CartItem{}))
}
