package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/models"
)

func TestComputeSummary(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    models.RatingSummary
	}{
		{name: "no reviews", ratings: nil, want: models.RatingSummary{}},
		{name: "single", ratings: []int{4}, want: models.RatingSummary{AverageRating: 4, TotalReviews: 1}},
		{name: "exact", ratings: []int{5, 4, 3}, want: models.RatingSummary{AverageRating: 4, TotalReviews: 3}},
		{name: "rounds down", ratings: []int{1, 1, 1, 2}, want: models.RatingSummary{AverageRating: 1.3, TotalReviews: 4}},
		{name: "half rounds away from zero", ratings: []int{4, 5, 5, 5}, want: models.RatingSummary{AverageRating: 4.8, TotalReviews: 4}},
		{name: "two thirds", ratings: []int{5, 5, 4}, want: models.RatingSummary{AverageRating: 4.7, TotalReviews: 3}},
		{name: "half reaches whole", ratings: []int{1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}, want: models.RatingSummary{AverageRating: 2, TotalReviews: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeSummary(tt.ratings))
		})
	}
}
