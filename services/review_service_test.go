package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/models"
	"storefront/repositories"
)

const goodComment = "Lovely crema, would order again."

func reviewer(id int) *models.Identity {
	return &models.Identity{UserID: id, Email: fmt.Sprintf("u%d@example.com", id), Role: models.RoleCustomer, Name: fmt.Sprintf("User %d", id)}
}

func TestSubmitReviewRecomputesSummary(t *testing.T) {
	store := newMemReviewStore(1)
	store.seed(1, 5, 4)
	events := &recordingPublisher{}
	svc := NewReviewService(store, events, zap.NewNop())

	list, err := svc.SubmitReview(context.Background(), 1, reviewer(1), 3, goodComment)
	require.NoError(t, err)

	assert.Equal(t, models.RatingSummary{AverageRating: 4.0, TotalReviews: 3}, list.Summary)
	assert.Equal(t, list.Summary, store.summary(1))
	assert.Len(t, list.Reviews, 3)
	assert.Equal(t, []string{TopicReviewSubmitted}, events.topics())
}

func TestSubmitReviewRejectsSecondReviewBySameAuthor(t *testing.T) {
	store := newMemReviewStore(1)
	svc := NewReviewService(store, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.SubmitReview(ctx, 1, reviewer(9), 5, goodComment)
	require.NoError(t, err)

	_, err = svc.SubmitReview(ctx, 1, reviewer(9), 1, "Changed my mind about this one.")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, models.RatingSummary{AverageRating: 5, TotalReviews: 1}, store.summary(1))
}

func TestSubmitReviewConcurrentAuthors(t *testing.T) {
	store := newMemReviewStore(1)
	store.seed(1, 3)
	svc := NewReviewService(store, nil, zap.NewNop())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, rating := range []int{5, 4} {
		wg.Add(1)
		go func(i, rating int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitReview(context.Background(), 1, reviewer(i+1), rating, goodComment)
		}(i, rating)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, models.RatingSummary{AverageRating: 4.0, TotalReviews: 3}, store.summary(1))
}

func TestSubmitReviewValidatesBeforeStore(t *testing.T) {
	tests := []struct {
		name    string
		author  *models.Identity
		product int
		rating  int
		comment string
		want    error
	}{
		{name: "anonymous", author: nil, product: 1, rating: 4, comment: goodComment, want: ErrUnauthenticated},
		{name: "rating too low", author: reviewer(1), product: 1, rating: 0, comment: goodComment, want: ErrValidation},
		{name: "rating too high", author: reviewer(1), product: 1, rating: 6, comment: goodComment, want: ErrValidation},
		{name: "comment too short", author: reviewer(1), product: 1, rating: 4, comment: "too short", want: ErrValidation},
		{name: "padding does not count", author: reviewer(1), product: 1, rating: 4, comment: "   short     ", want: ErrValidation},
		{name: "comment too long", author: reviewer(1), product: 1, rating: 4, comment: strings.Repeat("a", 501), want: ErrValidation},
		{name: "bad product id", author: reviewer(1), product: 0, rating: 4, comment: goodComment, want: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemReviewStore(1)
			svc := NewReviewService(store, nil, zap.NewNop())

			_, err := svc.SubmitReview(context.Background(), tt.product, tt.author, tt.rating, tt.comment)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, store.calls)
		})
	}
}

func TestSubmitReviewCommentBoundaries(t *testing.T) {
	store := newMemReviewStore(1, 2)
	svc := NewReviewService(store, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.SubmitReview(ctx, 1, reviewer(1), 4, strings.Repeat("é", MinCommentLength))
	assert.NoError(t, err)
	_, err = svc.SubmitReview(ctx, 2, reviewer(1), 4, strings.Repeat("b", MaxCommentLength))
	assert.NoError(t, err)
}

func TestSubmitReviewUnknownProduct(t *testing.T) {
	svc := NewReviewService(newMemReviewStore(1), nil, zap.NewNop())
	_, err := svc.SubmitReview(context.Background(), 42, reviewer(1), 4, goodComment)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSubmitReviewTransactionAborted(t *testing.T) {
	store := newMemReviewStore(1)
	store.abortErr = fmt.Errorf("review: %w", repositories.ErrTxAborted)
	events := &recordingPublisher{}
	svc := NewReviewService(store, events, zap.NewNop())

	_, err := svc.SubmitReview(context.Background(), 1, reviewer(1), 4, goodComment)
	assert.ErrorIs(t, err, ErrTransactionAborted)
	assert.Empty(t, events.topics())
	assert.Equal(t, models.RatingSummary{}, store.summary(1))
}

func TestSubmitReviewUniqueViolationMeansAlreadyReviewed(t *testing.T) {
	store := newMemReviewStore(1)
	store.abortErr = repositories.ErrDuplicate
	svc := NewReviewService(store, nil, zap.NewNop())

	_, err := svc.SubmitReview(context.Background(), 1, reviewer(1), 4, goodComment)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestSubmitReviewEventFailureIsNotFatal(t *testing.T) {
	events := &recordingPublisher{err: errStoreDown}
	svc := NewReviewService(newMemReviewStore(1), events, zap.NewNop())

	list, err := svc.SubmitReview(context.Background(), 1, reviewer(1), 2, goodComment)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Summary.TotalReviews)
}

func TestListReviews(t *testing.T) {
	svc := NewReviewService(newMemReviewStore(1), nil, zap.NewNop())

	list, err := svc.ListReviews(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, list.Reviews)
	assert.Empty(t, list.Reviews)

	_, err = svc.ListReviews(context.Background(), 2)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
