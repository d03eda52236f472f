package repository

import (
	"fmt"
	"strings"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Search     string // case-insensitive match on name, description, category
	ActiveOnly bool
	Limit      int
	Offset     int
}

// columns products may be matched on when browsing a category
var categoryColumns = map[string]bool{
	"category_slug": true,
	"category":      true,
	"type":          true,
}

type ProductRepository interface {
	Create(product *model.Product) error
	BulkCreate(products []model.Product, batchSize int) error
	FindByID(id uint) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindActiveByColumn(column, value string, limit int) ([]model.Product, error)
	SearchActiveByName(keyword string, limit int) ([]model.Product, error)
	FindFeatured(limit int) ([]model.Product, error)
	FindMostViewed(limit int) ([]model.Product, error)
	Update(id uint, updates map[string]interface{}) (*model.Product, error)
	Delete(id uint) error
	IncrementViewCount(id uint) error
	Count() (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":          product.Name,
		"category_slug": product.CategorySlug,
		"price_naira":   product.PriceNaira,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":          product.Name,
			"category_slug": product.CategorySlug,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) BulkCreate(products []model.Product, batchSize int) error {
	logger.Debug("Bulk creating products in database", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})

	if err := r.db.CreateInBatches(products, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create products in database", err, map[string]interface{}{
			"count": len(products),
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	return &product, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by IDs in database", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"search":      filter.Search,
		"active_only": filter.ActiveOnly,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	query := r.db.Model(&model.Product{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products with filter", err)
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Order("created_at DESC").Order("id DESC").Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) FindActiveByColumn(column, value string, limit int) ([]model.Product, error) {
	if !categoryColumns[column] {
		return nil, fmt.Errorf("unsupported product column %q", column)
	}

	var products []model.Product
	err := r.db.Where("is_active = ?", true).
		Where(fmt.Sprintf("%s = ?", column), value).
		Order("id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find products by category column", err, map[string]interface{}{
			"column": column,
			"value":  value,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) SearchActiveByName(keyword string, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("is_active = ?", true).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(keyword)+"%").
		Order("id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to search products by name", err, map[string]interface{}{
			"keyword": keyword,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindFeatured(limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("is_active = ? AND is_show = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find featured products", err)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindMostViewed(limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("is_active = ?", true).
		Order("views DESC").
		Order("id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		logger.Error("Failed to find most viewed products", err)
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(id uint, updates map[string]interface{}) (*model.Product, error) {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": id,
		"fields":     len(updates),
	})

	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := r.db.Model(&product).Updates(updates).Error; err != nil {
			logger.Error("Failed to update product in database", err, map[string]interface{}{
				"product_id": id,
			})
			return nil, err
		}
	}

	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) IncrementViewCount(id uint) error {
	if err := r.db.Model(&model.Product{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		logger.Error("Failed to increment product views in database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
