package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RatingSummary is the review aggregate stored on the product row. Readers
// display it as-is and never recompute it.
type RatingSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CategoryID    int             `json:"category_id"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
	ImageURL      string          `json:"image_url"`
	CloudinaryID  string          `json:"-"`
	IsActive      bool            `json:"is_active"`
	Rating        float64         `json:"rating"`
	ReviewSummary RatingSummary   `json:"review_summary"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OffersSize reports whether size is one of the product's options. Products
// without options accept no size at all.
func (p *Product) OffersSize(size string) bool {
	return size == "" || contains(p.Sizes, size)
}

func (p *Product) OffersColor(color string) bool {
	return color == "" || contains(p.Colors, color)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
