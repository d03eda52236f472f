package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/db"
	"github.com/virginiacakes/storefront-backend/pkg/util"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	util.PasswordCost = bcrypt.MinCost
}

func setupServiceDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test Customer",
		Role:         model.RoleCustomer,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createProduct(t *testing.T, testDB *gorm.DB, name string, price int64) *model.Product {
	product := &model.Product{
		Name:         name,
		PriceNaira:   price,
		IsActive:     true,
		IsShow:       true,
		CategorySlug: "cupcakes",
		Category:     "Cupcakes",
		Type:         "Cupcakes",
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func countRows(t *testing.T, testDB *gorm.DB, m interface{}) int64 {
	var n int64
	require.NoError(t, testDB.Model(m).Count(&n).Error)
	return n
}

// recordingNotifier captures notifications instead of sending them
type recordingNotifier struct {
	mu                sync.Mutex
	submitted         []uint
	confirmed         []uint
	confirmedEmails   []string
	paid              []uint
	statusChanges     map[uint]model.OrderStatus
	customOrders      []uint
	resetLinks        map[string]string
	digestOrders      int
	digestTransfers   int
	digestInvocations int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		statusChanges: map[uint]model.OrderStatus{},
		resetLinks:    map[string]string{},
	}
}

func (n *recordingNotifier) TransferSubmitted(order *model.Order, _ *model.BankTransfer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, order.ID)
}

func (n *recordingNotifier) TransferConfirmed(order *model.Order, _ *model.BankTransfer, email string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, order.ID)
	n.confirmedEmails = append(n.confirmedEmails, email)
}

func (n *recordingNotifier) OrderPaid(order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paid = append(n.paid, order.ID)
}

func (n *recordingNotifier) OrderStatusChanged(orderID uint, status model.OrderStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusChanges[orderID] = status
}

func (n *recordingNotifier) CustomOrderSubmitted(order *model.CustomOrder) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.customOrders = append(n.customOrders, order.ID)
}

func (n *recordingNotifier) PasswordReset(email, link string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resetLinks[email] = link
}

func (n *recordingNotifier) StalePendingDigest(orders []model.Order, transfers []model.BankTransfer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digestInvocations++
	n.digestOrders = len(orders)
	n.digestTransfers = len(transfers)
}
