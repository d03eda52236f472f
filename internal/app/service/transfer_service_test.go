package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/config"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"gorm.io/gorm"
)

type transferFixture struct {
	db       *gorm.DB
	svc      TransferService
	checkout CheckoutService
	cart     CartService
	notifier *recordingNotifier
	user     *model.User
	admin    *model.User
}

func setupTransferTest(t *testing.T) *transferFixture {
	testDB := setupServiceDB(t)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	transferRepo := repository.NewBankTransferRepository(testDB)
	notifier := newRecordingNotifier()

	return &transferFixture{
		db:       testDB,
		svc:      NewTransferService(testDB, transferRepo, cartRepo, orderRepo, notifier),
		checkout: NewCheckoutService(testDB, cartRepo, orderRepo, transferRepo, notifier, 5*time.Second, config.BankConfig{}),
		cart:     NewCartService(cartRepo, repository.NewProductRepository(testDB)),
		notifier: notifier,
		user:     createUser(t, testDB, "customer@example.com"),
		admin:    createUser(t, testDB, "admin@example.com"),
	}
}

// submit places a 13,000 naira bank-transfer order and returns the transfer id
func (f *transferFixture) submit(t *testing.T) *SubmitProofResult {
	a := createProduct(t, f.db, "Vanilla Sponge", 5000)
	b := createProduct(t, f.db, "Cupcake Box", 3000)
	_, err := f.cart.AddItem(f.user.ID, a.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(f.user.ID, b.ID, 1)
	require.NoError(t, err)

	result, err := f.checkout.SubmitProof(context.Background(), f.user.ID, SubmitProofInput{
		UserID:      f.user.ID,
		PayerName:   "Ada Obi",
		Phone:       "08030000000",
		ProofBase64: testProof,
	})
	require.NoError(t, err)
	return result
}

func TestTransferService_ConfirmLinkedOrder(t *testing.T) {
	f := setupTransferTest(t)
	submitted := f.submit(t)

	result, err := f.svc.ConfirmTransfer(context.Background(), f.admin.ID, submitted.TransferID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyVerified)
	assert.Equal(t, submitted.OrderID, result.OrderID)
	assert.Equal(t, int64(13000), result.TotalNaira)

	var order model.Order
	require.NoError(t, f.db.First(&order, submitted.OrderID).Error)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.NotNil(t, order.PaidAt)

	var transfer model.BankTransfer
	require.NoError(t, f.db.First(&transfer, submitted.TransferID).Error)
	assert.Equal(t, model.TransferStatusVerified, transfer.Status)
	require.NotNil(t, transfer.VerifiedBy)
	assert.Equal(t, f.admin.ID, *transfer.VerifiedBy)
	assert.NotNil(t, transfer.VerifiedAt)

	assert.Equal(t, []uint{submitted.OrderID}, f.notifier.confirmed)
	assert.Equal(t, []string{"customer@example.com"}, f.notifier.confirmedEmails)
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Order{}))
}

func TestTransferService_ConfirmTwice(t *testing.T) {
	f := setupTransferTest(t)
	submitted := f.submit(t)

	_, err := f.svc.ConfirmTransfer(context.Background(), f.admin.ID, submitted.TransferID)
	require.NoError(t, err)

	again, err := f.svc.ConfirmTransfer(context.Background(), f.admin.ID, submitted.TransferID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyVerified)

	assert.Equal(t, int64(1), countRows(t, f.db, &model.Order{}))
	assert.Len(t, f.notifier.confirmed, 1)
}

func TestTransferService_ConcurrentConfirm(t *testing.T) {
	f := setupTransferTest(t)
	submitted := f.submit(t)

	const workers = 4
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.svc.ConfirmTransfer(context.Background(), f.admin.ID, submitted.TransferID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if !result.AlreadyVerified {
				winners++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, winners)
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Order{}))
	assert.Len(t, f.notifier.confirmed, 1)
}

func TestTransferService_ConfirmLegacyCartTransfer(t *testing.T) {
	f := setupTransferTest(t)
	product := createProduct(t, f.db, "Red Velvet", 4000)
	_, err := f.cart.AddItem(f.user.ID, product.ID, 3)
	require.NoError(t, err)

	var cart model.Cart
	require.NoError(t, f.db.Where("user_id = ?", f.user.ID).First(&cart).Error)

	// submitted without an order, only the cart
	transfer := &model.BankTransfer{
		UserID:      f.user.ID,
		CartID:      &cart.ID,
		AmountNaira: 12000,
		PayerName:   "Ada Obi",
		Phone:       "08030000000",
		ProofBase64: testProof,
		Status:      model.TransferStatusPending,
	}
	require.NoError(t, f.db.Create(transfer).Error)

	result, err := f.svc.ConfirmTransfer(context.Background(), f.admin.ID, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), result.TotalNaira)

	var order model.Order
	require.NoError(t, f.db.Preload("OrderItems").First(&order, result.OrderID).Error)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.Equal(t, model.PaymentMethodBankTransfer, order.PaymentMethod)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, int64(4000), order.OrderItems[0].UnitPriceNaira)

	var reloaded model.BankTransfer
	require.NoError(t, f.db.First(&reloaded, transfer.ID).Error)
	require.NotNil(t, reloaded.OrderID)
	assert.Equal(t, order.ID, *reloaded.OrderID)

	var closed model.Cart
	require.NoError(t, f.db.First(&closed, cart.ID).Error)
	assert.Equal(t, model.CartStatusOrdered, closed.Status)
}

func TestTransferService_ConfirmRejections(t *testing.T) {
	f := setupTransferTest(t)

	_, err := f.svc.ConfirmTransfer(context.Background(), f.admin.ID, 0)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "transferId is required", err.Error())

	_, err = f.svc.ConfirmTransfer(context.Background(), f.admin.ID, 4242)
	assert.ErrorIs(t, err, ErrTransferNotFound)

	orphan := &model.BankTransfer{
		UserID:      f.user.ID,
		AmountNaira: 1000,
		PayerName:   "No Cart",
		Phone:       "0800",
		Status:      model.TransferStatusPending,
	}
	require.NoError(t, f.db.Create(orphan).Error)
	_, err = f.svc.ConfirmTransfer(context.Background(), f.admin.ID, orphan.ID)
	assert.ErrorIs(t, err, ErrTransferMissingCart)

	var reloaded model.BankTransfer
	require.NoError(t, f.db.First(&reloaded, orphan.ID).Error)
	assert.Equal(t, model.TransferStatusPending, reloaded.Status)
}

func TestTransferService_ConfirmKeepsAdvancedStatus(t *testing.T) {
	f := setupTransferTest(t)
	submitted := f.submit(t)

	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", submitted.OrderID).
		Update("status", model.OrderStatusShipped).Error)

	_, err := f.svc.ConfirmTransfer(context.Background(), f.admin.ID, submitted.TransferID)
	require.NoError(t, err)

	var order model.Order
	require.NoError(t, f.db.First(&order, submitted.OrderID).Error)
	assert.Equal(t, model.OrderStatusShipped, order.Status)
}

func TestTransferService_ListPending(t *testing.T) {
	f := setupTransferTest(t)
	submitted := f.submit(t)

	pending, err := f.svc.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, submitted.TransferID, pending[0].ID)

	_, err = f.svc.ConfirmTransfer(context.Background(), f.admin.ID, submitted.TransferID)
	require.NoError(t, err)

	pending, err = f.svc.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}
