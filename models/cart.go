package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CartSnapshotVersion tags every persisted cart blob. Bump it when CartLine
// changes shape.
const CartSnapshotVersion = 1

// LineKey identifies a cart line. Two keys are the same line when all three
// fields are equal; an empty Size or Color means no selection.
type LineKey struct {
	ProductID int    `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

func NewLineKey(productID int, size, color string) LineKey {
	return LineKey{
		ProductID: productID,
		Size:      strings.TrimSpace(size),
		Color:     strings.TrimSpace(color),
	}
}

func (k LineKey) String() string {
	return fmt.Sprintf("%d/%q/%q", k.ProductID, k.Size, k.Color)
}

type CartLine struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

func (l CartLine) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is the whole cart as written to the session store.
type CartSnapshot struct {
	Version int        `json:"version"`
	Lines   []CartLine `json:"lines"`
	SavedAt time.Time  `json:"saved_at"`
}

type CartView struct {
	SessionID string          `json:"session_id"`
	Lines     []CartLine      `json:"lines"`
	Count     int             `json:"count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}
