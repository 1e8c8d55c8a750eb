package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/middleware"
	"storefront/models"
)

type ReviewManager interface {
	SubmitReview(ctx context.Context, productID int, author *models.Identity, rating int, comment string) (*models.ReviewList, error)
	ListReviews(ctx context.Context, productID int) (*models.ReviewList, error)
}

type ReviewController struct {
	reviews ReviewManager
}

func NewReviewController(reviews ReviewManager) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// @Summary List product reviews
// @Description Newest first, with the product's rating summary
// @Tags Reviews
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response{data=models.ReviewList}
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id}/reviews [get]
func (ctrl *ReviewController) ListReviews(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	list, err := ctrl.reviews.ListReviews(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Reviews retrieved successfully", list)
}

// @Summary Submit review
// @Description One review per product and author. Rating 1-5, comment 10-500 characters.
// @Tags Reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body models.SubmitReviewRequest true "Review"
// @Success 201 {object} models.Response{data=models.ReviewList}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /products/{id}/reviews [post]
func (ctrl *ReviewController) SubmitReview(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req models.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	list, err := ctrl.reviews.SubmitReview(c.Request.Context(), id, middleware.CurrentIdentity(c), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Review submitted", list)
}
