package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/virginiacakes/storefront-backend/config"
	"github.com/virginiacakes/storefront-backend/internal/app/controller"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	"github.com/virginiacakes/storefront-backend/internal/db"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
	"github.com/virginiacakes/storefront-backend/internal/router"
	"github.com/virginiacakes/storefront-backend/internal/scheduler"
	"github.com/virginiacakes/storefront-backend/internal/storage"
	ws "github.com/virginiacakes/storefront-backend/internal/websocket"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"github.com/virginiacakes/storefront-backend/pkg/mailer"
	"github.com/virginiacakes/storefront-backend/pkg/payment/paystack"
	"github.com/virginiacakes/storefront-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Log.Level
	if logLevel == "" {
		logLevel = "info"
		if cfg.IsDevelopment() {
			logLevel = "debug"
		}
	}
	logCfg := logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.IsDevelopment(),
	}
	if cfg.Log.Output == "file" {
		logCfg.FilePath = cfg.Log.FilePath
		logCfg.MaxSizeMB = cfg.Log.MaxSizeMB
		logCfg.MaxBackups = cfg.Log.MaxBackups
		logCfg.MaxAgeDays = cfg.Log.MaxAgeDays
	}
	logger.Initialize(logCfg)

	logger.Info("Starting Virginia Cakes API", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis is optional; without it logout is not enforced and payment sessions are not cached
	var tokenStore redis.Store
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			tokenStore = redis.NewStore(redis.GetClient())
			defer redis.Close()
		}
	}

	// Outbound integrations
	var gateway service.PaymentGateway
	if cfg.Paystack.SecretKey != "" {
		client, err := paystack.NewClient(paystack.Config{
			SecretKey:   cfg.Paystack.SecretKey,
			BaseURL:     cfg.Paystack.BaseURL,
			CallbackURL: cfg.Paystack.CallbackURL,
			Currency:    cfg.Paystack.Currency,
			Timeout:     cfg.Paystack.Timeout,
		})
		if err != nil {
			logger.Fatal("Failed to create Paystack client", err)
		}
		gateway = client
	} else {
		logger.Warn("PAYSTACK_SECRET_KEY not set, card payments are disabled")
	}

	var presigner storage.Presigner
	if cfg.S3.Bucket != "" {
		presigner = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
		)
	}

	sender := mailer.New(mailer.Config{
		From:         cfg.Email.FromAddress,
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUser:     cfg.Email.SMTPUser,
		SMTPPassword: cfg.Email.SMTPPassword,
		SMTPTimeout:  cfg.Email.SMTPTimeout,
		ResendAPIKey: cfg.Email.ResendAPIKey,
		ResendURL:    cfg.Email.ResendURL,
	})

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Initialize repositories
	database := db.GetDB()
	userRepo := repository.NewUserRepository(database)
	adminRepo := repository.NewAdminRepository(database)
	productRepo := repository.NewProductRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	cartRepo := repository.NewCartRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	transferRepo := repository.NewBankTransferRepository(database)
	customOrderRepo := repository.NewCustomOrderRepository(database)
	resetRepo := repository.NewPasswordResetRepository(database)

	// Initialize services
	notifier := service.NewNotificationService(sender, hub, cfg.Email)
	authService := service.NewAuthService(
		userRepo,
		adminRepo,
		tokenStore,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	resetService := service.NewPasswordResetService(resetRepo, userRepo, notifier, cfg.Email.FrontendURL)
	productService := service.NewProductService(productRepo, categoryRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	checkoutService := service.NewCheckoutService(
		database,
		cartRepo,
		orderRepo,
		transferRepo,
		notifier,
		cfg.Server.CheckoutTimeout,
		cfg.Bank,
	)
	paymentService := service.NewPaymentService(
		database,
		cartRepo,
		orderRepo,
		gateway,
		tokenStore,
		notifier,
		cfg.Paystack.Currency,
	)
	transferService := service.NewTransferService(database, transferRepo, cartRepo, orderRepo, notifier)
	orderService := service.NewOrderService(orderRepo)
	adminService := service.NewAdminService(productRepo, categoryRepo, orderRepo, transferRepo, notifier)
	customOrderService := service.NewCustomOrderService(customOrderRepo, notifier)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, tokenStore, adminRepo)

	// Setup router
	r := router.NewRouter(router.Controllers{
		Auth:        controller.NewAuthController(authService, resetService),
		Product:     controller.NewProductController(productService),
		Cart:        controller.NewCartController(cartService),
		Checkout:    controller.NewCheckoutController(checkoutService),
		Payment:     controller.NewPaymentController(paymentService),
		Order:       controller.NewOrderController(orderService),
		CustomOrder: controller.NewCustomOrderController(customOrderService, authMiddleware.IsAdmin),
		Admin:       controller.NewAdminController(adminService, transferService, customOrderService),
		Upload:      controller.NewUploadController(presigner),
		Feed:        controller.NewFeedController(hub, cfg.CORS.AllowedOrigins),
	}, authMiddleware, cfg)
	engine := r.Setup()

	// Background jobs
	if cfg.Scheduler.Enabled {
		digestService := service.NewDigestService(orderRepo, transferRepo, notifier, cfg.Scheduler.StaleAfter)
		jobs := scheduler.NewPendingDigestScheduler(digestService, resetService, cfg.Scheduler.StaleCron)
		if err := jobs.Start(); err != nil {
			logger.Fatal("Failed to start scheduler", err)
		}
		defer jobs.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
