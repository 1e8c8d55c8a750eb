package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID `json:"id"`
	ProductID  int       `json:"product_id"`
	AuthorID   int       `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewList struct {
	ProductID int           `json:"product_id"`
	Reviews   []Review      `json:"reviews"`
	Summary   RatingSummary `json:"summary"`
}
