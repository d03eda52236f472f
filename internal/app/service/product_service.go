package service

import (
	"errors"
	"strings"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

const (
	categoryProductsLimit = 50
	featuredLimit         = 8
	defaultCatalogLimit   = 24
	maxCatalogLimit       = 100
)

// CategoryProducts is a category page: the resolved display name and its products
type CategoryProducts struct {
	Slug     string          `json:"slug"`
	Name     string          `json:"name"`
	Products []model.Product `json:"products"`
}

type ProductService interface {
	ListCategories() ([]model.Category, error)
	// GetCategoryProducts matches active products on category_slug, then category name,
	// then type, then a keyword from the name.
	GetCategoryProducts(slug string) (*CategoryProducts, error)
	ListProducts(search string, limit, offset int) ([]model.Product, int64, error)
	GetFeatured() ([]model.Product, error)
	// GetProduct returns an active product and counts the view.
	GetProduct(id uint) (*model.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *productService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *productService) GetCategoryProducts(slug string) (*CategoryProducts, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrCategoryNotFound
	}

	name := strings.ReplaceAll(slug, "-", " ")
	category, err := s.categoryRepo.FindBySlug(slug)
	switch {
	case err == nil:
		name = category.Name
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	attempts := []struct{ column, value string }{
		{"category_slug", slug},
		{"category", name},
		{"type", name},
	}
	for _, a := range attempts {
		products, err := s.productRepo.FindActiveByColumn(a.column, a.value, categoryProductsLimit)
		if err != nil {
			return nil, err
		}
		if len(products) > 0 {
			return &CategoryProducts{Slug: slug, Name: name, Products: products}, nil
		}
	}

	keyword := strings.Fields(name)
	if len(keyword) == 0 {
		return &CategoryProducts{Slug: slug, Name: name, Products: []model.Product{}}, nil
	}
	products, err := s.productRepo.SearchActiveByName(keyword[0], categoryProductsLimit)
	if err != nil {
		return nil, err
	}

	logger.Debug("Category resolved by keyword", map[string]interface{}{
		"slug":    slug,
		"keyword": keyword[0],
		"count":   len(products),
	})
	return &CategoryProducts{Slug: slug, Name: name, Products: products}, nil
}

func (s *productService) ListProducts(search string, limit, offset int) ([]model.Product, int64, error) {
	if limit <= 0 {
		limit = defaultCatalogLimit
	}
	if limit > maxCatalogLimit {
		limit = maxCatalogLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.productRepo.FindWithFilter(repository.ProductFilter{
		Search:     search,
		ActiveOnly: true,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *productService) GetFeatured() ([]model.Product, error) {
	products, err := s.productRepo.FindFeatured(featuredLimit)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return products, nil
	}
	return s.productRepo.FindMostViewed(featuredLimit)
}

func (s *productService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}

	if err := s.productRepo.IncrementViewCount(id); err != nil {
		logger.Warn("Failed to count product view", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
	} else {
		product.Views++
	}
	return product, nil
}
