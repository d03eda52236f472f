package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/config"
	"github.com/virginiacakes/storefront-backend/internal/app/controller"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
)

// Controllers groups every HTTP handler the router mounts
type Controllers struct {
	Auth        *controller.AuthController
	Product     *controller.ProductController
	Cart        *controller.CartController
	Checkout    *controller.CheckoutController
	Payment     *controller.PaymentController
	Order       *controller.OrderController
	CustomOrder *controller.CustomOrderController
	Admin       *controller.AdminController
	Upload      *controller.UploadController
	Feed        *controller.FeedController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	config         *config.Config
}

func NewRouter(controllers Controllers, authMiddleware *middleware.AuthMiddleware, cfg *config.Config) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Virginia Cakes API is running",
		})
	})

	ctl := r.controllers
	requireAuth := r.authMiddleware.Authenticate()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", ctl.Auth.Register)
			auth.POST("/login", ctl.Auth.Login)
			auth.POST("/refresh", ctl.Auth.RefreshToken)
			auth.POST("/forgot-password", ctl.Auth.ForgotPassword)
			auth.POST("/reset-password", ctl.Auth.ResetPassword)
			auth.POST("/logout", requireAuth, ctl.Auth.Logout)
			auth.GET("/me", requireAuth, ctl.Auth.GetMe)
		}

		api.GET("/categories", ctl.Product.ListCategories)
		api.GET("/categories/:slug/products", ctl.Product.GetCategoryProducts)

		products := api.Group("/products")
		{
			products.GET("", ctl.Product.ListProducts)
			products.GET("/featured", ctl.Product.GetFeatured)
			products.GET("/:id", ctl.Product.GetProduct)
		}

		cart := api.Group("/cart")
		cart.Use(requireAuth)
		{
			cart.GET("", ctl.Cart.GetCart)
			cart.POST("/items", ctl.Cart.AddToCart)
			cart.PATCH("/items/:id", ctl.Cart.UpdateCartItem)
			cart.DELETE("/items/:id", ctl.Cart.RemoveFromCart)
		}

		checkout := api.Group("/checkout")
		{
			checkout.GET("/bank-details", ctl.Checkout.GetBankDetails)
			checkout.POST("/submit-proof", requireAuth, ctl.Checkout.SubmitProof)
		}

		paystack := api.Group("/paystack")
		paystack.Use(requireAuth)
		{
			paystack.POST("/initialize", ctl.Payment.InitializePayment)
			paystack.GET("/verify", ctl.Payment.VerifyPayment)
		}

		orders := api.Group("/orders")
		orders.Use(requireAuth)
		{
			orders.GET("", ctl.Order.GetOrders)
			orders.GET("/:id", ctl.Order.GetOrderByID)
		}

		customOrders := api.Group("/custom-orders")
		{
			customOrders.GET("/public", ctl.CustomOrder.ListPublic)
			customOrders.GET("/mine", requireAuth, ctl.CustomOrder.ListMine)
			customOrders.GET("/:id", r.authMiddleware.OptionalAuthenticate(), ctl.CustomOrder.Get)
			customOrders.POST("", requireAuth, ctl.CustomOrder.Submit)
		}

		api.POST("/uploads/presign", requireAuth, ctl.Upload.PresignReferenceImage)

		admin := api.Group("/admin")
		admin.Use(requireAuth, r.authMiddleware.RequireAdmin())
		{
			admin.GET("/me", ctl.Admin.Me)
			admin.GET("/stats", ctl.Admin.GetStats)

			admin.GET("/products", ctl.Admin.ListProducts)
			admin.POST("/products", ctl.Admin.CreateProduct)
			admin.PATCH("/products", ctl.Admin.UpdateProduct)
			admin.DELETE("/products", ctl.Admin.DeleteProduct)

			admin.GET("/orders", ctl.Admin.ListOrders)
			admin.PATCH("/orders", ctl.Admin.UpdateOrderStatus)
			admin.GET("/orders/export", ctl.Admin.ExportOrders)

			admin.GET("/pending-transfers", ctl.Admin.ListPendingTransfers)
			admin.POST("/confirm-transfer", ctl.Admin.ConfirmTransfer)

			admin.PATCH("/custom-orders", ctl.Admin.UpdateCustomOrderStatus)
			admin.POST("/uploads/presign", ctl.Upload.PresignProductImage)
		}

		// dashboards pass the token as ?token= on the handshake
		api.GET("/admin/ws",
			middleware.WebSocketToken(),
			requireAuth,
			r.authMiddleware.RequireAdmin(),
			ctl.Feed.Connect,
		)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	allowAll := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
