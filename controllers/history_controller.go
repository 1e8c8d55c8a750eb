package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/services"
	"storefront/utils"
)

type HistoryController struct {
	orders OrderManager
}

func NewHistoryController(orders OrderManager) *HistoryController {
	return &HistoryController{orders: orders}
}

// @Summary Order history
// @Description The caller's orders, newest first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.HATEOASResponse
// @Router /orders [get]
func (ctrl *HistoryController) GetHistory(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		respondError(c, services.ErrUnauthenticated)
		return
	}
	page, limit, _ := utils.PageParams(c.Query("page"), c.Query("limit"), defaultOrderPageSize)

	result, err := ctrl.orders.ListOrders(c.Request.Context(), id.UserID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withLinks(c, result))
}
