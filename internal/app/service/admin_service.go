package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

const (
	defaultAdminPageSize = 50
	maxAdminPageSize     = 200
	recentOrdersLimit    = 5
)

// ProductInput is the admin create-product payload
type ProductInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"image_url"`
	PriceNaira   int64    `json:"price_naira"`
	Rating       *float64 `json:"rating"`
	CategorySlug string   `json:"category_slug"`
	Category     string   `json:"category"`
	Type         string   `json:"type"`
	IsActive     *bool    `json:"is_active"`
	IsShow       *bool    `json:"is_show"`
}

// AdminStats is the dashboard summary. Revenue is whole naira.
type AdminStats struct {
	TotalProducts    int64 `json:"totalProducts"`
	TotalOrders      int64 `json:"totalOrders"`
	PaidOrders       int64 `json:"paidOrders"`
	PendingTransfers int64 `json:"pendingTransfers"`
	TotalCategories  int64 `json:"totalCategories"`
	TotalRevenue     int64 `json:"totalRevenue"`
}

type AdminService interface {
	ListProducts(search string, limit, offset int) ([]model.Product, int64, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	// UpdateProduct applies the whitelisted fields of updates; unknown keys are ignored.
	UpdateProduct(id uint, updates map[string]interface{}) (*model.Product, error)
	DeleteProduct(id uint) error

	ListOrders(status string, limit, offset int) ([]model.Order, int64, error)
	UpdateOrderStatus(id uint, status model.OrderStatus) (*model.Order, error)
	ExportOrders(w io.Writer, status string) error

	GetStats() (*AdminStats, []model.Order, error)
}

type adminService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	orderRepo    repository.OrderRepository
	transferRepo repository.BankTransferRepository
	notifier     NotificationService
}

func NewAdminService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	orderRepo repository.OrderRepository,
	transferRepo repository.BankTransferRepository,
	notifier NotificationService,
) AdminService {
	return &adminService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		orderRepo:    orderRepo,
		transferRepo: transferRepo,
		notifier:     notifier,
	}
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultAdminPageSize
	}
	if limit > maxAdminPageSize {
		return maxAdminPageSize
	}
	return limit
}

func (s *adminService) ListProducts(search string, limit, offset int) ([]model.Product, int64, error) {
	if offset < 0 {
		offset = 0
	}
	return s.productRepo.FindWithFilter(repository.ProductFilter{
		Search: strings.TrimSpace(search),
		Limit:  pageSize(limit),
		Offset: offset,
	})
}

func (s *adminService) CreateProduct(input ProductInput) (*model.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.CategorySlug = strings.TrimSpace(input.CategorySlug)
	if input.Name == "" || input.PriceNaira <= 0 || input.CategorySlug == "" {
		return nil, invalidInput("Missing required fields")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = input.CategorySlug
	}
	productType := strings.TrimSpace(input.Type)
	if productType == "" {
		productType = category
	}

	product := &model.Product{
		Name:         input.Name,
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		PriceNaira:   input.PriceNaira,
		Rating:       input.Rating,
		CategorySlug: input.CategorySlug,
		Category:     category,
		Type:         productType,
		IsActive:     input.IsActive == nil || *input.IsActive,
		IsShow:       input.IsShow == nil || *input.IsShow,
		Views:        0,
	}

	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": product.Name,
		})
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id":    product.ID,
		"category_slug": product.CategorySlug,
		"price_naira":   product.PriceNaira,
	})
	return product, nil
}

var productStringFields = map[string]bool{
	"name":          true,
	"description":   true,
	"category_slug": true,
	"category":      true,
	"type":          true,
	"image_url":     true,
}

var productBoolFields = map[string]bool{
	"is_active": true,
	"is_show":   true,
}

// sanitizeProductUpdates keeps whitelisted columns and coerces JSON values to column types
func sanitizeProductUpdates(updates map[string]interface{}) (map[string]interface{}, error) {
	clean := make(map[string]interface{})
	for key, value := range updates {
		switch {
		case productStringFields[key]:
			str, ok := value.(string)
			if !ok && value != nil {
				return nil, invalidInput(key + " must be a string")
			}
			if (key == "name" || key == "category_slug") && strings.TrimSpace(str) == "" {
				return nil, invalidInput(key + " cannot be empty")
			}
			clean[key] = str

		case productBoolFields[key]:
			b, ok := value.(bool)
			if !ok {
				return nil, invalidInput(key + " must be a boolean")
			}
			clean[key] = b

		case key == "price_naira":
			n, err := toInt64(value)
			if err != nil || n <= 0 {
				return nil, invalidInput("price_naira must be a positive whole number")
			}
			clean[key] = n

		case key == "rating":
			if value == nil || value == "" {
				clean[key] = nil
				continue
			}
			f, err := toFloat64(value)
			if err != nil {
				return nil, invalidInput("rating must be a number")
			}
			clean[key] = f
		}
	}
	return clean, nil
}

func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("unsupported number type %T", value)
}

func toInt64(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	}
	f, err := toFloat64(value)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	return int64(f), nil
}

func (s *adminService) UpdateProduct(id uint, updates map[string]interface{}) (*model.Product, error) {
	if id == 0 {
		return nil, invalidInput("Product ID required")
	}

	clean, err := sanitizeProductUpdates(updates)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Update(id, clean)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
		"fields":     len(clean),
	})
	return product, nil
}

func (s *adminService) DeleteProduct(id uint) error {
	if id == 0 {
		return invalidInput("Product ID required")
	}
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func parseStatusFilter(status string) (*model.OrderStatus, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, nil
	}
	st := model.OrderStatus(status)
	if !st.IsValid() {
		return nil, ErrInvalidOrderStatus
	}
	return &st, nil
}

func (s *adminService) ListOrders(status string, limit, offset int) ([]model.Order, int64, error) {
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, 0, err
	}
	if offset < 0 {
		offset = 0
	}
	return s.orderRepo.FindWithFilter(repository.OrderFilter{
		Status: st,
		Limit:  pageSize(limit),
		Offset: offset,
	})
}

func (s *adminService) UpdateOrderStatus(id uint, status model.OrderStatus) (*model.Order, error) {
	if id == 0 || status == "" {
		return nil, invalidInput("Order ID and status required")
	}
	if !status.IsValid() {
		return nil, ErrInvalidOrderStatus
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})
	s.notifier.OrderStatusChanged(id, status)
	return order, nil
}

func (s *adminService) GetStats() (*AdminStats, []model.Order, error) {
	stats := &AdminStats{}
	var err error

	if stats.TotalProducts, err = s.productRepo.Count(); err != nil {
		return nil, nil, err
	}
	if stats.TotalOrders, err = s.orderRepo.CountByStatuses(); err != nil {
		return nil, nil, err
	}
	if stats.PaidOrders, err = s.orderRepo.CountByStatuses(model.OrderStatusPaid); err != nil {
		return nil, nil, err
	}
	if stats.PendingTransfers, err = s.transferRepo.CountPending(); err != nil {
		return nil, nil, err
	}
	if stats.TotalCategories, err = s.categoryRepo.Count(); err != nil {
		return nil, nil, err
	}
	if stats.TotalRevenue, err = s.orderRepo.SumTotalByStatuses(model.RevenueStatuses...); err != nil {
		return nil, nil, err
	}

	recent, err := s.orderRepo.FindRecent(recentOrdersLimit)
	if err != nil {
		return nil, nil, err
	}
	return stats, recent, nil
}

const exportBatchSize = 500

// ExportOrders writes an xlsx workbook with an Orders sheet and an Items sheet
func (s *adminService) ExportOrders(w io.Writer, status string) error {
	st, err := parseStatusFilter(status)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const ordersSheet, itemsSheet = "Orders", "Items"
	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return err
	}

	orderHeader := []interface{}{"Order ID", "Created At", "Customer", "Status", "Payment Method", "Reference", "Paid At", "Total (NGN)"}
	itemHeader := []interface{}{"Order ID", "Product ID", "Product", "Quantity", "Unit Price (NGN)", "Line Total (NGN)"}
	if err := f.SetSheetRow(ordersSheet, "A1", &orderHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(itemsSheet, "A1", &itemHeader); err != nil {
		return err
	}

	orderRow, itemRow := 2, 2
	for offset := 0; ; offset += exportBatchSize {
		orders, _, err := s.orderRepo.FindWithFilter(repository.OrderFilter{
			Status: st,
			Limit:  exportBatchSize,
			Offset: offset,
		})
		if err != nil {
			return err
		}

		for _, o := range orders {
			customer := ""
			if o.User != nil {
				customer = o.User.Email
			}
			reference := ""
			if o.PaymentReference != nil {
				reference = *o.PaymentReference
			}
			paidAt := ""
			if o.PaidAt != nil {
				paidAt = o.PaidAt.Format("2006-01-02 15:04")
			}

			row := []interface{}{o.ID, o.CreatedAt.Format("2006-01-02 15:04"), customer, string(o.Status), string(o.PaymentMethod), reference, paidAt, o.TotalNaira}
			cell, _ := excelize.CoordinatesToCellName(1, orderRow)
			if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
				return err
			}
			orderRow++

			for _, it := range o.OrderItems {
				line := []interface{}{o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPriceNaira, it.LineTotal()}
				cell, _ := excelize.CoordinatesToCellName(1, itemRow)
				if err := f.SetSheetRow(itemsSheet, cell, &line); err != nil {
					return err
				}
				itemRow++
			}
		}

		if len(orders) < exportBatchSize {
			break
		}
	}

	logger.Info("Orders exported", map[string]interface{}{
		"orders": orderRow - 2,
		"items":  itemRow - 2,
		"status": status,
	})

	_, err = f.WriteTo(w)
	return err
}
