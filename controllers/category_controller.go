package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/models"
)

type CategoryManager interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int) error
}

type CategoryController struct {
	categories CategoryManager
}

func NewCategoryController(categories CategoryManager) *CategoryController {
	return &CategoryController{categories: categories}
}

// @Summary Get all categories
// @Description Get list of all categories
// @Tags Categories
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Category}
// @Router /categories [get]
func (ctrl *CategoryController) GetAllCategories(c *gin.Context) {
	categories, err := ctrl.categories.GetAllCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	ok(c, http.StatusOK, "Categories retrieved", categories)
}

// @Summary Create category
// @Tags Admin - Categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CategoryRequest true "Category"
// @Success 201 {object} models.Response{data=models.Category}
// @Router /admin/categories [post]
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	cat, err := ctrl.categories.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Category created successfully", cat)
}

// @Summary Delete category
// @Tags Admin - Categories
// @Security BearerAuth
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Response
// @Router /admin/categories/{id} [delete]
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := ctrl.categories.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Category deleted successfully", nil)
}
