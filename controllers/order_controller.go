package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/models"
	"storefront/services"
	"storefront/utils"
)

const defaultOrderPageSize = 10

type OrderManager interface {
	Checkout(ctx context.Context, buyer *models.Identity, cart *services.Cart, req models.CheckoutRequest) (*models.Order, error)
	ListOrders(ctx context.Context, userID, page, limit int) (*models.PaginationResponse, error)
	ListAllOrders(ctx context.Context, status string, page, limit int) (*models.PaginationResponse, error)
	UpdateStatus(ctx context.Context, id int, status string) error
}

type OrderController struct {
	orders OrderManager
}

func NewOrderController(orders OrderManager) *OrderController {
	return &OrderController{orders: orders}
}

// @Summary Get all orders
// @Description Get all orders with pagination (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} models.HATEOASResponse
// @Router /admin/orders [get]
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	page, limit, _ := utils.PageParams(c.Query("page"), c.Query("limit"), defaultOrderPageSize)

	result, err := ctrl.orders.ListAllOrders(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withLinks(c, result))
}

// @Summary Update order status
// @Tags Admin - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.OrderStatusRequest true "Status"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req models.OrderStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	if err := ctrl.orders.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Order status updated", gin.H{"id": id, "status": req.Status})
}
