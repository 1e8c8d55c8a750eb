package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"
)

type CartOpener interface {
	Open(ctx context.Context, sessionID string) (*services.Cart, error)
}

type ProductLookup interface {
	GetProductByID(ctx context.Context, id int) (*models.Product, error)
}

type CartController struct {
	sessions CartOpener
	products ProductLookup
}

func NewCartController(sessions CartOpener, products ProductLookup) *CartController {
	return &CartController{sessions: sessions, products: products}
}

func (ctrl *CartController) cart(c *gin.Context) (*services.Cart, bool) {
	cart, err := ctrl.sessions.Open(c.Request.Context(), middleware.CartSessionID(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return cart, true
}

// @Summary Get cart
// @Description Lines, item count and subtotal of the caller's cart
// @Tags Cart
// @Produce json
// @Param X-Cart-Session header string false "Guest cart id"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, found := ctrl.cart(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, "Cart retrieved successfully", cart.View())
}

// @Summary Add cart line
// @Description Adds a product in a given size and color. Adding a line that already exists is rejected.
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Cart-Session header string false "Guest cart id"
// @Param request body models.AddCartLineRequest true "Line"
// @Success 201 {object} models.Response{data=models.CartView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/lines [post]
func (ctrl *CartController) AddLine(c *gin.Context) {
	var req models.AddCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	product, err := ctrl.products.GetProductByID(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	cart, found := ctrl.cart(c)
	if !found {
		return
	}
	if _, err := cart.AddLine(product, req.Quantity, req.Size, req.Color); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Added to cart", cart.View())
}

// @Summary Update cart line quantity
// @Description Zero or less removes the line; quantities above stock are clamped and reported with stock_clamped
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Cart-Session header string false "Guest cart id"
// @Param request body models.UpdateCartLineRequest true "Line and quantity"
// @Success 200 {object} models.Response{data=models.UpdateCartLineResponse}
// @Router /cart/lines [patch]
func (ctrl *CartController) UpdateLine(c *gin.Context) {
	var req models.UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	cart, found := ctrl.cart(c)
	if !found {
		return
	}

	res := cart.UpdateQuantity(req.Key(), *req.Quantity)
	message := "Cart updated"
	switch {
	case !res.Found:
		message = "Line not in cart"
	case res.Removed:
		message = "Removed from cart"
	case res.Clamped:
		message = "Quantity limited to available stock"
	}
	ok(c, http.StatusOK, message, models.UpdateCartLineResponse{
		Line:    res.Line,
		Removed: res.Removed,
		Clamped: res.Clamped,
		Cart:    cart.View(),
	})
}

// @Summary Remove cart line
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Cart-Session header string false "Guest cart id"
// @Param request body models.CartLineRequest true "Line"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/lines [delete]
func (ctrl *CartController) RemoveLine(c *gin.Context) {
	var req models.CartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	cart, found := ctrl.cart(c)
	if !found {
		return
	}

	message := "Line not in cart"
	if cart.RemoveLine(req.Key()) {
		message = "Removed from cart"
	}
	ok(c, http.StatusOK, message, cart.View())
}

// @Summary Clear cart
// @Tags Cart
// @Produce json
// @Param X-Cart-Session header string false "Guest cart id"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	cart, found := ctrl.cart(c)
	if !found {
		return
	}
	cart.Clear()
	ok(c, http.StatusOK, "Cart cleared", cart.View())
}
