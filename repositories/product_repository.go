package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/models"
)

const productColumns = `id, name, description, category_id, price, stock, sizes, colors,
	COALESCE(image_url, ''), COALESCE(cloudinary_id, ''), is_active,
	average_rating, total_reviews, created_at, updated_at`

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.Price, &p.Stock, &p.Sizes, &p.Colors,
		&p.ImageURL, &p.CloudinaryID, &p.IsActive,
		&p.ReviewSummary.AverageRating, &p.ReviewSummary.TotalReviews, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Rating = p.ReviewSummary.AverageRating
	return &p, nil
}

func (r *ProductRepository) GetAll(ctx context.Context, limit, offset int) ([]models.Product, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active = true`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + `
	          FROM products WHERE is_active = true ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Product, error) {
		p, err := scanProduct(row)
		if err != nil {
			return models.Product{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID returns the product whether or not it is still active; callers
// decide what an inactive product means for them.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, category_id, price, stock, sizes, colors,
			image_url, cloudinary_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), true, $10, $10)
		RETURNING id, is_active, created_at, updated_at
	`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.CategoryID, product.Price, product.Stock,
		nonNil(product.Sizes), nonNil(product.Colors), product.ImageURL, product.CloudinaryID, now,
	).Scan(&product.ID, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	return translate(err)
}

// Update writes the editable catalog fields. The rating summary is owned by
// the review transaction and is never written here.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	query := `UPDATE products SET name = $1, description = $2, category_id = $3, price = $4,
	          stock = $5, sizes = $6, colors = $7, image_url = NULLIF($8, ''), cloudinary_id = NULLIF($9, ''),
	          is_active = $10, updated_at = $11 WHERE id = $12
	          RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.CategoryID, product.Price, product.Stock,
		nonNil(product.Sizes), nonNil(product.Colors), product.ImageURL, product.CloudinaryID,
		product.IsActive, time.Now().UTC(), product.ID,
	).Scan(&product.UpdatedAt)
	return translate(err)
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, name, is_active, created_at FROM categories WHERE is_active = true ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Category, error) {
		var cat models.Category
		err := row.Scan(&cat.ID, &cat.Name, &cat.IsActive, &cat.CreatedAt)
		return cat, err
	})
}

func (r *ProductRepository) CreateCategory(ctx context.Context, cat *models.Category) error {
	query := `INSERT INTO categories (name, is_active, created_at) VALUES ($1, true, now())
	          RETURNING id, is_active, created_at`
	err := r.db.QueryRow(ctx, query, cat.Name).Scan(&cat.ID, &cat.IsActive, &cat.CreatedAt)
	return translate(err)
}

func (r *ProductRepository) DeleteCategory(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET is_active = false WHERE id = $1 AND is_active = true`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
