package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/service"
	apperrors "github.com/virginiacakes/storefront-backend/internal/errors"
	"github.com/virginiacakes/storefront-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminController serves the dashboard. Every route runs behind RequireAdmin.
type AdminController struct {
	adminService       service.AdminService
	transferService    service.TransferService
	customOrderService service.CustomOrderService
}

func NewAdminController(
	adminService service.AdminService,
	transferService service.TransferService,
	customOrderService service.CustomOrderService,
) *AdminController {
	return &AdminController{
		adminService:       adminService,
		transferService:    transferService,
		customOrderService: customOrderService,
	}
}

type UpdateOrderStatusRequest struct {
	ID     uint              `json:"id"`
	Status model.OrderStatus `json:"status"`
}

type UpdateCustomOrderStatusRequest struct {
	ID     uint                    `json:"id"`
	Status model.CustomOrderStatus `json:"status"`
}

type ConfirmTransferRequest struct {
	TransferID uint `json:"transferId"`
}

// idFromBody reads the "id" of a PATCH body decoded into a map
func idFromBody(body map[string]interface{}) uint {
	switch v := body["id"].(type) {
	case float64:
		if v > 0 && v == float64(uint(v)) {
			return uint(v)
		}
	case string:
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint(n)
		}
	}
	return 0
}

// Me returns the signed-in admin
// GET /api/admin/me
func (ctrl *AdminController) Me(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	email, _ := middleware.GetUserEmail(c)

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"user": gin.H{
			"id":    userID,
			"email": email,
		},
	})
}

// ListProducts returns every product, active or not
// GET /api/admin/products?search=&limit=50&offset=0
func (ctrl *AdminController) ListProducts(c *gin.Context) {
	limit, offset := pagination(c)

	products, total, err := ctrl.adminService.ListProducts(c.Query("search"), limit, offset)
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

// CreateProduct adds a catalog item
// POST /api/admin/products
func (ctrl *AdminController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}

	product, err := ctrl.adminService.CreateProduct(req)
	if err != nil {
		respondServiceError(c, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":   true,
		"data": product,
	})
}

// UpdateProduct applies whitelisted fields from {id, ...}
// PATCH /api/admin/products
func (ctrl *AdminController) UpdateProduct(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}

	product, err := ctrl.adminService.UpdateProduct(idFromBody(body), body)
	if err != nil {
		respondServiceError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": product,
	})
}

// DeleteProduct soft-deletes a product; past orders keep their snapshot
// DELETE /api/admin/products?id=
func (ctrl *AdminController) DeleteProduct(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Query("id"), 10, 32)

	if err := ctrl.adminService.DeleteProduct(uint(id)); err != nil {
		respondServiceError(c, err, "delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
	})
}

// ListOrders returns orders with their items
// GET /api/admin/orders?status=&limit=50&offset=0
func (ctrl *AdminController) ListOrders(c *gin.Context) {
	limit, offset := pagination(c)

	orders, total, err := ctrl.adminService.ListOrders(c.Query("status"), limit, offset)
	if err != nil {
		respondServiceError(c, err, "fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"data":  orders,
		"total": total,
	})
}

// UpdateOrderStatus moves an order to any of the order statuses
// PATCH /api/admin/orders
func (ctrl *AdminController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}

	order, err := ctrl.adminService.UpdateOrderStatus(req.ID, req.Status)
	if err != nil {
		respondServiceError(c, err, "update order")
		return
	}

	log.Info("Order status updated by admin", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": order,
	})
}

// ExportOrders downloads orders and their items as a spreadsheet
// GET /api/admin/orders/export?status=
func (ctrl *AdminController) ExportOrders(c *gin.Context) {
	var buf bytes.Buffer
	if err := ctrl.adminService.ExportOrders(&buf, c.Query("status")); err != nil {
		respondServiceError(c, err, "export orders")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetStats returns the dashboard counters and the latest orders
// GET /api/admin/stats
func (ctrl *AdminController) GetStats(c *gin.Context) {
	stats, recent, err := ctrl.adminService.GetStats()
	if err != nil {
		respondServiceError(c, err, "fetch stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"stats":        stats,
		"recentOrders": recent,
	})
}

// ListPendingTransfers returns transfers awaiting review, newest first
// GET /api/admin/pending-transfers
func (ctrl *AdminController) ListPendingTransfers(c *gin.Context) {
	transfers, err := ctrl.transferService.ListPending()
	if err != nil {
		respondServiceError(c, err, "fetch transfers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": transfers,
	})
}

// ConfirmTransfer verifies a bank transfer and marks its order paid
// POST /api/admin/confirm-transfer
func (ctrl *AdminController) ConfirmTransfer(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	adminID, _ := middleware.GetUserID(c)

	var req ConfirmTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TransferID == 0 {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "transferId is required")
		return
	}

	result, err := ctrl.transferService.ConfirmTransfer(c.Request.Context(), adminID, req.TransferID)
	if err != nil {
		respondServiceError(c, err, "confirm transfer")
		return
	}

	if result.AlreadyVerified {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"message": "Already verified",
		})
		return
	}

	log.Info("Transfer confirmed", map[string]interface{}{
		"admin_id":    adminID,
		"transfer_id": req.TransferID,
		"order_id":    result.OrderID,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"orderId":     result.OrderID,
		"total_naira": result.TotalNaira,
	})
}

// UpdateCustomOrderStatus answers a custom cake request
// PATCH /api/admin/custom-orders
func (ctrl *AdminController) UpdateCustomOrderStatus(c *gin.Context) {
	var req UpdateCustomOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}

	order, err := ctrl.customOrderService.UpdateStatus(req.ID, req.Status)
	if err != nil {
		respondServiceError(c, err, "update custom order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"data": order,
	})
}
