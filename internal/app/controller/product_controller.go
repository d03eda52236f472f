package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
)

// ProductController serves the public catalog
type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ListCategories returns categories in display order
// GET /api/categories
func (ctrl *ProductController) ListCategories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories()
	if err != nil {
		respondServiceError(c, err, "fetch categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": categories,
	})
}

// GetCategoryProducts returns active products of a category
// GET /api/categories/:slug/products
func (ctrl *ProductController) GetCategoryProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	result, err := ctrl.productService.GetCategoryProducts(slug)
	if err != nil {
		respondServiceError(c, err, "fetch category products")
		return
	}

	log.Debug("Category products fetched", map[string]interface{}{
		"slug":  slug,
		"count": len(result.Products),
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"slug":     result.Slug,
		"name":     result.Name,
		"products": result.Products,
	})
}

// ListProducts returns active products
// GET /api/products?search=&limit=&offset=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	limit, offset := pagination(c)

	products, total, err := ctrl.productService.ListProducts(c.Query("search"), limit, offset)
	if err != nil {
		respondServiceError(c, err, "fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"data":  products,
		"total": total,
	})
}

// GetFeatured returns the home page selection
// GET /api/products/featured
func (ctrl *ProductController) GetFeatured(c *gin.Context) {
	products, err := ctrl.productService.GetFeatured()
	if err != nil {
		respondServiceError(c, err, "fetch featured products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": products,
	})
}

// GetProduct returns one active product and counts the view
// GET /api/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProduct(id)
	if err != nil {
		respondServiceError(c, err, "fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"product": product,
	})
}
