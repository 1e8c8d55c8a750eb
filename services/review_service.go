package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/models"
	"storefront/repositories"
)

const (
	MinReviewRating  = 1
	MaxReviewRating  = 5
	MinCommentLength = 10
	MaxCommentLength = 500

	TopicReviewSubmitted = "review.submitted"
)

// ReviewStore runs review writes as one atomic unit. InTx retries fn itself
// on write conflicts and reports exhaustion as repositories.ErrTxAborted.
type ReviewStore interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx repositories.ReviewTx) error) error
	ListByProduct(ctx context.Context, productID int) ([]models.Review, models.RatingSummary, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type ReviewSubmittedEvent struct {
	EventID   uuid.UUID            `json:"event_id"`
	Review    models.Review        `json:"review"`
	Summary   models.RatingSummary `json:"summary"`
	Submitted time.Time            `json:"submitted_at"`
}

type ReviewService struct {
	store  ReviewStore
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

func NewReviewService(store ReviewStore, events EventPublisher, logger *zap.Logger) *ReviewService {
	return &ReviewService{store: store, events: events, logger: logger, now: time.Now}
}

// SubmitReview records author's review of a product and recomputes the
// product's rating summary in the same transaction. An author gets one
// review per product.
func (s *ReviewService) SubmitReview(ctx context.Context, productID int, author *models.Identity, rating int, comment string) (*models.ReviewList, error) {
	if author == nil || author.UserID <= 0 {
		return nil, ErrUnauthenticated
	}
	comment = strings.TrimSpace(comment)
	if err := validateReview(productID, rating, comment); err != nil {
		reviewsSubmitted.WithLabelValues("invalid").Inc()
		return nil, err
	}

	review := models.Review{
		ID:         uuid.New(),
		ProductID:  productID,
		AuthorID:   author.UserID,
		AuthorName: author.Name,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  s.now().UTC(),
	}

	var summary models.RatingSummary
	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.ReviewTx) error {
		if err := tx.LockProduct(ctx, productID); err != nil {
			return err
		}
		exists, err := tx.HasReview(ctx, productID, author.UserID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyReviewed
		}
		if err := tx.InsertReview(ctx, &review); err != nil {
			return err
		}
		ratings, err := tx.Ratings(ctx, productID)
		if err != nil {
			return err
		}
		summary = ComputeSummary(ratings)
		return tx.SetRatingSummary(ctx, productID, summary)
	})
	if err != nil {
		err = reviewError(err)
		reviewsSubmitted.WithLabelValues(outcomeLabel(err)).Inc()
		if errors.Is(err, ErrTransactionAborted) {
			s.logger.Error("review transaction aborted", zap.Int("product_id", productID), zap.Error(err))
		}
		return nil, err
	}
	reviewsSubmitted.WithLabelValues("ok").Inc()

	s.logger.Info("review submitted",
		zap.Int("product_id", productID),
		zap.Int("author_id", author.UserID),
		zap.Float64("average_rating", summary.AverageRating),
		zap.Int("total_reviews", summary.TotalReviews))

	s.publish(ctx, review, summary)

	list, err := s.ListReviews(ctx, productID)
	if err != nil {
		s.logger.Warn("review saved but list refresh failed", zap.Int("product_id", productID), zap.Error(err))
		return &models.ReviewList{ProductID: productID, Reviews: []models.Review{review}, Summary: summary}, nil
	}
	return list, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, productID int) (*models.ReviewList, error) {
	reviews, summary, err := s.store.ListByProduct(ctx, productID)
	if err != nil {
		return nil, reviewError(err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return &models.ReviewList{ProductID: productID, Reviews: reviews, Summary: summary}, nil
}

func (s *ReviewService) publish(ctx context.Context, review models.Review, summary models.RatingSummary) {
	if s.events == nil {
		return
	}
	event := ReviewSubmittedEvent{EventID: uuid.New(), Review: review, Summary: summary, Submitted: review.CreatedAt}
	if err := s.events.Publish(ctx, TopicReviewSubmitted, review.ID.String(), event); err != nil {
		s.logger.Warn("review event not published", zap.String("review_id", review.ID.String()), zap.Error(err))
	}
}

func validateReview(productID, rating int, comment string) error {
	if productID <= 0 {
		return invalid("product_id", "must be a positive id")
	}
	if rating < MinReviewRating || rating > MaxReviewRating {
		return invalid("rating", "must be between %d and %d", MinReviewRating, MaxReviewRating)
	}
	n := utf8.RuneCountInString(comment)
	if n < MinCommentLength || n > MaxCommentLength {
		return invalid("comment", "must be between %d and %d characters", MinCommentLength, MaxCommentLength)
	}
	return nil
}

func reviewError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return ErrAlreadyReviewed
	case errors.Is(err, repositories.ErrTxAborted):
		return ErrTransactionAborted
	}
	return err
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyReviewed):
		return "duplicate"
	case errors.Is(err, ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrTransactionAborted):
		return "aborted"
	}
	return "error"
}
