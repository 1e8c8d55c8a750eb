package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/models"
)

// ReviewTx is the set of reads and writes a review submission may perform
// inside its transaction.
type ReviewTx interface {
	LockProduct(ctx context.Context, productID int) error
	HasReview(ctx context.Context, productID, authorID int) (bool, error)
	InsertReview(ctx context.Context, review *models.Review) error
	Ratings(ctx context.Context, productID int) ([]int, error)
	SetRatingSummary(ctx context.Context, productID int, summary models.RatingSummary) error
}

type ReviewRepository struct {
	db *pgxpool.Pool
	tx *TxRunner
}

func NewReviewRepository(db *pgxpool.Pool, tx *TxRunner) *ReviewRepository {
	return &ReviewRepository{db: db, tx: tx}
}

func (r *ReviewRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx ReviewTx) error) error {
	return r.tx.Run(ctx, "review", func(tx pgx.Tx) error {
		return fn(ctx, &reviewTx{tx: tx})
	})
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int) ([]models.Review, models.RatingSummary, error) {
	var summary models.RatingSummary
	err := r.db.QueryRow(ctx,
		`SELECT average_rating, total_reviews FROM products WHERE id = $1 AND is_active = true`,
		productID).Scan(&summary.AverageRating, &summary.TotalReviews)
	if err != nil {
		return nil, summary, translate(err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, product_id, author_id, author_name, rating, comment, created_at
		 FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, summary, err
	}
	reviews, err := pgx.CollectRows(rows, scanReview)
	if err != nil {
		return nil, summary, err
	}
	return reviews, summary, nil
}

func scanReview(row pgx.CollectableRow) (models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.ProductID, &rv.AuthorID, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	return rv, err
}

type reviewTx struct {
	tx pgx.Tx
}

func (t *reviewTx) LockProduct(ctx context.Context, productID int) error {
	var id int
	err := t.tx.QueryRow(ctx,
		`SELECT id FROM products WHERE id = $1 AND is_active = true FOR UPDATE`, productID).Scan(&id)
	return translate(err)
}

func (t *reviewTx) HasReview(ctx context.Context, productID, authorID int) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM reviews WHERE product_id = $1 AND author_id = $2)`,
		productID, authorID).Scan(&exists)
	return exists, err
}

func (t *reviewTx) InsertReview(ctx context.Context, review *models.Review) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO reviews (id, product_id, author_id, author_name, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		review.ID, review.ProductID, review.AuthorID, review.AuthorName, review.Rating, review.Comment, review.CreatedAt)
	return translate(err)
}

func (t *reviewTx) Ratings(ctx context.Context, productID int) ([]int, error) {
	rows, err := t.tx.Query(ctx, `SELECT rating FROM reviews WHERE product_id = $1`, productID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (t *reviewTx) SetRatingSummary(ctx context.Context, productID int, summary models.RatingSummary) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE products SET average_rating = $1, total_reviews = $2, updated_at = now() WHERE id = $3`,
		summary.AverageRating, summary.TotalReviews, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
