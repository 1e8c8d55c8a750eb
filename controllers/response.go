package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/models"
	"storefront/services"
)

// respondError maps service errors onto HTTP statuses. Anything unknown is a
// 500 and is attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	var validation *services.ValidationError
	var stock *services.InsufficientStockError
	var persistence *services.PersistenceError

	status := http.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
		message = "Validation failed"
	case errors.As(err, &stock):
		c.AbortWithStatusJSON(http.StatusConflict, models.Response{
			Success: false,
			Message: services.ErrInsufficientStock.Error(),
			Data:    gin.H{"product_id": stock.ProductID, "requested": stock.Requested, "available": stock.Available},
		})
		return
	case errors.Is(err, services.ErrDuplicateLine),
		errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrPromoNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrCartEmpty):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrTransactionAborted):
		status = http.StatusServiceUnavailable
	case errors.As(err, &persistence):
		_ = c.Error(err)
		status = http.StatusServiceUnavailable
		message = "Cart temporarily unavailable, please try again"
	default:
		_ = c.Error(err)
		message = "Internal server error"
	}

	resp := models.ErrorResponse{Success: false, Message: message}
	if status != http.StatusInternalServerError {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.Response{Success: true, Message: message, Data: data})
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		badRequest(c, fmt.Sprintf("Invalid %s", name), nil)
		return 0, false
	}
	return id, true
}

// withLinks adds self/prev/next links for the current request to a page.
func withLinks(c *gin.Context, page *models.PaginationResponse) models.HATEOASResponse {
	scheme := "https"
	if c.Request.TLS == nil {
		scheme = "http"
	}
	query := c.Request.URL.Query()

	makeURL := func(n int) string {
		params := url.Values{}
		for key, values := range query {
			if key == "page" || key == "limit" {
				continue
			}
			for _, v := range values {
				params.Add(key, v)
			}
		}
		params.Set("page", strconv.Itoa(n))
		params.Set("limit", strconv.Itoa(page.Meta.Limit))
		return fmt.Sprintf("%s://%s%s?%s", scheme, c.Request.Host, c.Request.URL.Path, params.Encode())
	}

	links := models.PaginationLinks{Self: makeURL(page.Meta.Page)}
	if page.Meta.Page > 1 {
		links.Prev = makeURL(page.Meta.Page - 1)
	}
	if page.Meta.Page < page.Meta.TotalPages {
		links.Next = makeURL(page.Meta.Page + 1)
	}

	return models.HATEOASResponse{
		Success: page.Success,
		Message: page.Message,
		Data:    page.Data,
		Meta:    page.Meta,
		Links:   links,
	}
}
