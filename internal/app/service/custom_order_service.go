package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCustomOrderNotFound = errors.New("custom order not found")
	ErrInvalidCustomStatus = errors.New("invalid custom order status")
	ErrInvalidDeliveryDate = errors.New("delivery_date must be YYYY-MM-DD")
)

const publicCustomOrderLimit = 24

var customOrderRequired = []string{
	"cake_type", "shape", "tiers", "servings", "size", "flavor", "frosting", "delivery_date", "delivery_address",
}

type CustomOrderInput struct {
	CakeType        string   `json:"cake_type"`
	Shape           string   `json:"shape"`
	Tiers           int      `json:"tiers"`
	Servings        int      `json:"servings"`
	Size            string   `json:"size"`
	Flavor          string   `json:"flavor"`
	Filling         string   `json:"filling"`
	Frosting        string   `json:"frosting"`
	Colors          []string `json:"colors"`
	Dietary         []string `json:"dietary"`
	MessageOnCake   string   `json:"message_on_cake"`
	DeliveryDate    string   `json:"delivery_date"`
	DeliveryTime    string   `json:"delivery_time"`
	DeliveryAddress string   `json:"delivery_address"`
	BudgetNaira     *int64   `json:"budget_naira"`
	Notes           string   `json:"notes"`
	IsPublic        bool     `json:"is_public"`
	ImageURLs       []string `json:"image_urls"`
}

type CustomOrderService interface {
	Submit(userID uint, input CustomOrderInput) (*model.CustomOrder, error)
	ListMine(userID uint) ([]model.CustomOrder, error)
	ListPublic() ([]model.CustomOrder, error)
	// Get returns public requests to anyone and private ones to the owner or an admin.
	Get(id, viewerID uint, viewerIsAdmin bool) (*model.CustomOrder, error)
	UpdateStatus(id uint, status model.CustomOrderStatus) (*model.CustomOrder, error)
}

type customOrderService struct {
	repo     repository.CustomOrderRepository
	notifier NotificationService
}

func NewCustomOrderService(repo repository.CustomOrderRepository, notifier NotificationService) CustomOrderService {
	return &customOrderService{
		repo:     repo,
		notifier: notifier,
	}
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (in *CustomOrderInput) normalize() {
	in.CakeType = strings.TrimSpace(in.CakeType)
	in.Shape = strings.TrimSpace(in.Shape)
	in.Size = strings.TrimSpace(in.Size)
	in.Flavor = strings.TrimSpace(in.Flavor)
	in.Filling = strings.TrimSpace(in.Filling)
	in.Frosting = strings.TrimSpace(in.Frosting)
	in.DeliveryDate = strings.TrimSpace(in.DeliveryDate)
	in.DeliveryTime = strings.TrimSpace(in.DeliveryTime)
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
}

// requiredValues maps each required field to its value, blank when unset
func (in CustomOrderInput) requiredValues() map[string]string {
	positive := func(n int) string {
		if n > 0 {
			return strconv.Itoa(n)
		}
		return ""
	}
	return map[string]string{
		"cake_type":        in.CakeType,
		"shape":            in.Shape,
		"tiers":            positive(in.Tiers),
		"servings":         positive(in.Servings),
		"size":             in.Size,
		"flavor":           in.Flavor,
		"frosting":         in.Frosting,
		"delivery_date":    in.DeliveryDate,
		"delivery_address": in.DeliveryAddress,
	}
}

func (s *customOrderService) Submit(userID uint, input CustomOrderInput) (*model.CustomOrder, error) {
	input.normalize()
	if err := missingFields(input.requiredValues(), customOrderRequired...); err != nil {
		return nil, err
	}
	if _, err := time.Parse("2006-01-02", input.DeliveryDate); err != nil {
		return nil, ErrInvalidDeliveryDate
	}
	if input.BudgetNaira != nil && *input.BudgetNaira <= 0 {
		input.BudgetNaira = nil
	}

	urls := cleanList(input.ImageURLs)
	if len(urls) > model.MaxCustomOrderImages {
		urls = urls[:model.MaxCustomOrderImages]
	}
	images := make([]model.CustomOrderImage, 0, len(urls))
	for _, u := range urls {
		images = append(images, model.CustomOrderImage{URL: u})
	}

	order := &model.CustomOrder{
		UserID:          userID,
		CakeType:        input.CakeType,
		Shape:           input.Shape,
		Tiers:           input.Tiers,
		Servings:        input.Servings,
		Size:            input.Size,
		Flavor:          input.Flavor,
		Filling:         input.Filling,
		Frosting:        input.Frosting,
		Colors:          cleanList(input.Colors),
		Dietary:         cleanList(input.Dietary),
		MessageOnCake:   strings.TrimSpace(input.MessageOnCake),
		DeliveryDate:    input.DeliveryDate,
		DeliveryTime:    input.DeliveryTime,
		DeliveryAddress: input.DeliveryAddress,
		BudgetNaira:     input.BudgetNaira,
		Notes:           strings.TrimSpace(input.Notes),
		IsPublic:        input.IsPublic,
		Status:          model.CustomOrderSubmitted,
		Images:          images,
	}
	if err := s.repo.Create(order); err != nil {
		return nil, err
	}

	logger.Info("Custom order submitted", map[string]interface{}{
		"custom_order_id": order.ID,
		"user_id":         userID,
		"images":          len(images),
	})
	s.notifier.CustomOrderSubmitted(order)
	return order, nil
}

func (s *customOrderService) ListMine(userID uint) ([]model.CustomOrder, error) {
	return s.repo.FindByUserID(userID)
}

func (s *customOrderService) ListPublic() ([]model.CustomOrder, error) {
	return s.repo.FindPublic(publicCustomOrderLimit)
}

func (s *customOrderService) Get(id, viewerID uint, viewerIsAdmin bool) (*model.CustomOrder, error) {
	order, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomOrderNotFound
		}
		return nil, err
	}

	if !order.IsPublic && !viewerIsAdmin && (viewerID == 0 || order.UserID != viewerID) {
		return nil, ErrCustomOrderNotFound
	}
	return order, nil
}

func (s *customOrderService) UpdateStatus(id uint, status model.CustomOrderStatus) (*model.CustomOrder, error) {
	if id == 0 || status == "" {
		return nil, invalidInput("Custom order ID and status required")
	}
	if !status.IsValid() {
		return nil, ErrInvalidCustomStatus
	}

	if err := s.repo.UpdateStatus(id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomOrderNotFound
		}
		return nil, err
	}

	logger.Info("Custom order status updated", map[string]interface{}{
		"custom_order_id": id,
		"status":          status,
	})
	return s.repo.FindByID(id)
}
