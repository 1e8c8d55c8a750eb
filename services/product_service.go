package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/models"
	"storefront/repositories"
	"storefront/utils"
)

const DefaultProductPageSize = 10

type ProductStore interface {
	GetAll(ctx context.Context, limit, offset int) ([]models.Product, int, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int) error
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, cat *models.Category) error
	DeleteCategory(ctx context.Context, id int) error
}

// ProductListCache keeps encoded product list pages. Misses and write
// failures are the cache's own business; callers fall back to the store.
type ProductListCache interface {
	Get(ctx context.Context, page, limit int) ([]byte, bool)
	Set(ctx context.Context, page, limit int, data []byte)
	Invalidate(ctx context.Context)
}

type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (url, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}

type ImageUpload struct {
	File     io.Reader
	Filename string
}

type productPage struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

type ProductService struct {
	products ProductStore
	cache    ProductListCache
	images   ImageStore
	logger   *zap.Logger
}

// NewProductService accepts a nil images store; uploads are then refused.
func NewProductService(products ProductStore, cache ProductListCache, images ImageStore, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, cache: cache, images: images, logger: logger}
}

func (s *ProductService) GetAllProducts(ctx context.Context, page, limit int) (*models.PaginationResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultProductPageSize
	}

	var result productPage
	cached := false
	if data, ok := s.cache.Get(ctx, page, limit); ok {
		if err := json.Unmarshal(data, &result); err == nil {
			cached = true
		}
	}
	if !cached {
		products, total, err := s.products.GetAll(ctx, limit, (page-1)*limit)
		if err != nil {
			return nil, err
		}
		result = productPage{Products: products, Total: total}
		if data, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, page, limit, data)
		}
	}
	if result.Products == nil {
		result.Products = []models.Product{}
	}

	message := "Products retrieved successfully"
	if cached {
		message = "Products retrieved from cache"
	}
	return &models.PaginationResponse{
		Success: true,
		Message: message,
		Data:    result.Products,
		Meta: models.PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalItems: result.Total,
			TotalPages: utils.TotalPages(result.Total, limit),
		},
	}, nil
}

// GetProductByID only returns products that are on sale.
func (s *ProductService) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest, image *ImageUpload) (*models.Product, error) {
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	if req.Stock < 0 {
		return nil, invalid("stock", "must not be negative")
	}

	product := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CategoryID:  req.CategoryID,
		Price:       price,
		Stock:       req.Stock,
		Sizes:       cleanOptions(req.Sizes),
		Colors:      cleanOptions(req.Colors),
		IsActive:    true,
	}
	if image != nil {
		if product.ImageURL, product.CloudinaryID, err = s.upload(ctx, image); err != nil {
			return nil, err
		}
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.discardImage(ctx, product.CloudinaryID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	s.cache.Invalidate(ctx)
	s.logger.Info("product created", zap.Int("product_id", product.ID))
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int, req models.UpdateProductRequest, image *ImageUpload) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.CategoryID != nil && *req.CategoryID > 0 {
		product.CategoryID = *req.CategoryID
	}
	if req.Price != nil {
		if product.Price, err = parsePrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, invalid("stock", "must not be negative")
		}
		product.Stock = *req.Stock
	}
	if req.Sizes != nil {
		product.Sizes = cleanOptions(req.Sizes)
	}
	if req.Colors != nil {
		product.Colors = cleanOptions(req.Colors)
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	oldImage := ""
	if image != nil {
		oldImage = product.CloudinaryID
		if product.ImageURL, product.CloudinaryID, err = s.upload(ctx, image); err != nil {
			return nil, err
		}
	}

	if err := s.products.Update(ctx, product); err != nil {
		if image != nil {
			s.discardImage(ctx, product.CloudinaryID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	s.discardImage(ctx, oldImage)
	s.cache.Invalidate(ctx)
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *ProductService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.products.GetAllCategories(ctx)
}

func (s *ProductService) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	cat := &models.Category{Name: name}
	if err := s.products.CreateCategory(ctx, cat); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, invalid("name", "category %q already exists", name)
		}
		return nil, err
	}
	return cat, nil
}

func (s *ProductService) DeleteCategory(ctx context.Context, id int) error {
	err := s.products.DeleteCategory(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCategoryNotFound
	}
	return err
}

func (s *ProductService) upload(ctx context.Context, image *ImageUpload) (string, string, error) {
	if s.images == nil {
		return "", "", invalid("image", "image upload is not available")
	}
	return s.images.Upload(ctx, image.File, image.Filename)
}

func (s *ProductService) discardImage(ctx context.Context, publicID string) {
	if publicID == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.logger.Warn("product image not deleted", zap.String("public_id", publicID), zap.Error(err))
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalid("price", "must be a decimal amount")
	}
	if !price.IsPositive() {
		return decimal.Zero, invalid("price", "must be greater than zero")
	}
	return price.Round(2), nil
}

func cleanOptions(values []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
