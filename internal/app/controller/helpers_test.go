package controller

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/virginiacakes/storefront-backend/config"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	"github.com/virginiacakes/storefront-backend/internal/db"
	"github.com/virginiacakes/storefront-backend/pkg/mailer"
	"gorm.io/gorm"
)

var testProof = base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))

// controllerFixture wires real services over an in-memory database
type controllerFixture struct {
	db     *gorm.DB
	mail   *mailer.Recorder
	router *gin.Engine

	cart        service.CartService
	checkout    service.CheckoutService
	transfers   service.TransferService
	admin       service.AdminService
	customOrder service.CustomOrderService
}

func setupControllerTest(t *testing.T) *controllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	transferRepo := repository.NewBankTransferRepository(testDB)

	recorder := mailer.NewRecorder()
	notifier := service.NewNotificationService(recorder, nil, config.EmailConfig{
		BrandName:    "Virginia Cakes",
		AdminAddress: "owner@virginiacakes.com",
	})

	return &controllerFixture{
		db:     testDB,
		mail:   recorder,
		router: gin.New(),

		cart:      service.NewCartService(cartRepo, productRepo),
		checkout:  service.NewCheckoutService(testDB, cartRepo, orderRepo, transferRepo, notifier, 5*time.Second, config.BankConfig{BankName: "Moniepoint", AccountNumber: "0123456789"}),
		transfers: service.NewTransferService(testDB, transferRepo, cartRepo, orderRepo, notifier),
		admin: service.NewAdminService(productRepo, repository.NewCategoryRepository(testDB), orderRepo,
			transferRepo, notifier),
		customOrder: service.NewCustomOrderService(repository.NewCustomOrderRepository(testDB), notifier),
	}
}

// Helper function to set user ID in context
func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set("user_id", userID)
}

// as runs handler as userID
func as(userID uint, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setUserIDInContext(c, userID)
		handler(c)
	}
}

func (f *controllerFixture) createUser(t *testing.T, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test Customer",
		Role:         model.RoleCustomer,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *controllerFixture) createProduct(t *testing.T, name string, price int64) *model.Product {
	product := &model.Product{
		Name:         name,
		PriceNaira:   price,
		IsActive:     true,
		IsShow:       true,
		CategorySlug: "cupcakes",
		Category:     "Cupcakes",
		Type:         "Cupcakes",
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

// fillCart puts 2 x 5,000 and 1 x 3,000 in the user's cart
func (f *controllerFixture) fillCart(t *testing.T, userID uint) {
	a := f.createProduct(t, "Vanilla Sponge", 5000)
	b := f.createProduct(t, "Cupcake Box", 3000)
	_, err := f.cart.AddItem(userID, a.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(userID, b.ID, 1)
	require.NoError(t, err)
}

func (f *controllerFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func countRows(t *testing.T, testDB *gorm.DB, m interface{}) int64 {
	var n int64
	require.NoError(t, testDB.Model(m).Count(&n).Error)
	return n
}

func newAuthedRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func httptestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
