package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/models"
	"storefront/services"
	"storefront/utils"
)

type ProductCatalog interface {
	GetAllProducts(ctx context.Context, page, limit int) (*models.PaginationResponse, error)
	GetProductByID(ctx context.Context, id int) (*models.Product, error)
	CreateProduct(ctx context.Context, req models.CreateProductRequest, image *services.ImageUpload) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int, req models.UpdateProductRequest, image *services.ImageUpload) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int) error
}

type ProductController struct {
	products      ProductCatalog
	maxUploadSize int64
}

func NewProductController(products ProductCatalog, maxUploadSize int64) *ProductController {
	return &ProductController{products: products, maxUploadSize: maxUploadSize}
}

// @Summary Get all products
// @Description Get paginated list of products
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} models.HATEOASResponse
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	page, limit, _ := utils.PageParams(c.Query("page"), c.Query("limit"), services.DefaultProductPageSize)

	result, err := ctrl.products.GetAllProducts(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withLinks(c, result))
}

// @Summary Get product
// @Description Product detail including its rating summary
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	product, err := ctrl.products.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product retrieved successfully", product)
}

// @Summary Create product
// @Tags Admin - Products
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param description formData string true "Description"
// @Param category_id formData int true "Category ID"
// @Param price formData string true "Price"
// @Param stock formData int false "Stock"
// @Param sizes formData []string false "Sizes"
// @Param colors formData []string false "Colors"
// @Param image formData file false "Product image"
// @Success 201 {object} models.Response{data=models.Product}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	image, cleanup, valid := ctrl.imageUpload(c)
	if !valid {
		return
	}
	defer cleanup()

	product, err := ctrl.products.CreateProduct(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Product created successfully", product)
}

// @Summary Update product
// @Tags Admin - Products
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Product ID"
// @Param name formData string false "Name"
// @Param description formData string false "Description"
// @Param category_id formData int false "Category ID"
// @Param price formData string false "Price"
// @Param stock formData int false "Stock"
// @Param is_active formData bool false "Active"
// @Param image formData file false "Product image"
// @Success 200 {object} models.Response{data=models.Product}
// @Router /admin/products/{id} [patch]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req models.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	image, cleanup, valid := ctrl.imageUpload(c)
	if !valid {
		return
	}
	defer cleanup()

	product, err := ctrl.products.UpdateProduct(c.Request.Context(), id, req, image)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product updated successfully", product)
}

// @Summary Delete product
// @Description Takes the product off sale; orders and reviews keep referring to it
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /admin/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := ctrl.products.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Product deleted successfully", nil)
}

// imageUpload opens the optional "image" form file. The returned cleanup
// closes it and is always safe to call.
func (ctrl *ProductController) imageUpload(c *gin.Context) (*services.ImageUpload, func(), bool) {
	noop := func() {}
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, true
	}
	if err != nil {
		badRequest(c, "Invalid image upload", err)
		return nil, noop, false
	}
	if err := utils.ValidateImage(header, ctrl.maxUploadSize); err != nil {
		badRequest(c, "Invalid image upload", err)
		return nil, noop, false
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "Invalid image upload", err)
		return nil, noop, false
	}
	return &services.ImageUpload{File: file, Filename: header.Filename}, func() { file.Close() }, true
}
