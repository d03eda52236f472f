package db

import (
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models returns every model managed by AutoMigrate, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.AdminUser{},
		&model.PasswordReset{},
		&model.Category{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.BankTransfer{},
		&model.CustomOrder{},
		&model.CustomOrderImage{},
	}
}

// DefaultCategories is the storefront's category list, seeded when the table is empty.
var DefaultCategories = []model.Category{
	{Slug: "custom-cake", Name: "Custom Cake", ImageURL: "/custom_cake.jpg", Position: 1},
	{Slug: "foil-cake", Name: "Foil Cake", ImageURL: "/redvelvet.jpg", Position: 2},
	{Slug: "cupcakes", Name: "Cupcakes", ImageURL: "/cupcakes.jpg", Position: 3},
	{Slug: "bento", Name: "Bento", ImageURL: "/hero_cake.jpg", Position: 4},
	{Slug: "cakelets", Name: "Cakelets", ImageURL: "/chocolate_cake.jpg", Position: 5},
	{Slug: "banana-bread", Name: "Banana Bread", ImageURL: "/chocolate_cake.jpg", Position: 6},
	{Slug: "food-tray", Name: "Food Tray", ImageURL: "/wedding_cake.jpg", Position: 7},
	{Slug: "small-chops", Name: "Small Chops", ImageURL: "/cupcakes.jpg", Position: 8},
	{Slug: "waffle", Name: "Waffle", ImageURL: "/hero_cake.jpg", Position: 9},
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedCategories(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedCategories inserts DefaultCategories when no category exists yet
func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	categories := make([]model.Category, len(DefaultCategories))
	copy(categories, DefaultCategories)
	if err := db.Create(&categories).Error; err != nil {
		logger.Error("Failed to create categories", err)
		return err
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_categories": len(categories),
	})
	return nil
}
