package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/models"
)

type TransactionController struct {
	orders   OrderManager
	sessions CartOpener
}

func NewTransactionController(orders OrderManager, sessions CartOpener) *TransactionController {
	return &TransactionController{orders: orders, sessions: sessions}
}

// @Summary Checkout
// @Description Turns the caller's cart into an order. Stock is checked again when the order is placed.
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Delivery details"
// @Success 201 {object} models.Response{data=models.Order}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.Response
// @Failure 503 {object} models.ErrorResponse
// @Router /orders/checkout [post]
func (ctrl *TransactionController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	cart, err := ctrl.sessions.Open(c.Request.Context(), middleware.CartSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := ctrl.orders.Checkout(c.Request.Context(), middleware.CurrentIdentity(c), cart, req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Order placed successfully", order)
}
