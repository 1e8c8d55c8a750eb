package services

import (
	"github.com/shopspring/decimal"

	"storefront/models"
)

// ComputeSummary returns the unweighted mean of ratings rounded half away
// from zero to one decimal, plus the count.
func ComputeSummary(ratings []int) models.RatingSummary {
	if len(ratings) == 0 {
		return models.RatingSummary{}
	}

	sum := int64(0)
	for _, r := range ratings {
		sum += int64(r)
	}
	avg := decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(len(ratings))), 1)

	return models.RatingSummary{
		AverageRating: avg.InexactFloat64(),
		TotalReviews:  len(ratings),
	}
}
