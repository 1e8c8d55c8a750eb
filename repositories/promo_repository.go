package repositories

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/models"
)

type PromoRepository struct {
	db *pgxpool.Pool
}

func NewPromoRepository(db *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) GetActive(ctx context.Context) ([]models.Promo, error) {
	query := `SELECT id, title, COALESCE(description, ''), code, is_active, created_at
	          FROM promos WHERE is_active = true ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Promo, error) {
		var p models.Promo
		err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Code, &p.IsActive, &p.CreatedAt)
		return p, err
	})
}

func (r *PromoRepository) Create(ctx context.Context, promo *models.Promo) error {
	query := `INSERT INTO promos (title, description, code, is_active, created_at)
	          VALUES ($1, NULLIF($2, ''), $3, true, now())
	          RETURNING id, is_active, created_at`
	promo.Code = strings.ToUpper(promo.Code)
	err := r.db.QueryRow(ctx, query, promo.Title, promo.Description, promo.Code).
		Scan(&promo.ID, &promo.IsActive, &promo.CreatedAt)
	return translate(err)
}

func (r *PromoRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `UPDATE promos SET is_active = false WHERE id = $1 AND is_active = true`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
