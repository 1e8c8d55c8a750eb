package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/models"
)

func testProduct(id, stock int, price string) *models.Product {
	return &models.Product{
		ID:       id,
		Name:     "Product",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Sizes:    []string{"S", "M", "L"},
		Colors:   []string{"red", "blue"},
		IsActive: true,
	}
}

func newTestCart(t *testing.T, store CartStore) *Cart {
	t.Helper()
	if store == nil {
		store = newMemCartStore()
	}
	c := NewCart("guest:test", nil, store, zap.NewNop())
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestCartStockCeiling(t *testing.T) {
	c := newTestCart(t, nil)
	p := testProduct(1, 3, "4.50")

	_, err := c.AddLine(p, 5, "M", "")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)
	assert.Empty(t, c.Lines())

	line, err := c.AddLine(p, 2, "M", "")
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	res := c.UpdateQuantity(line.Key(), 10)
	assert.True(t, res.Found)
	assert.True(t, res.Clamped)
	require.NotNil(t, res.Line)
	assert.Equal(t, 3, res.Line.Quantity)
	assert.Equal(t, 3, c.Count())
}

func TestCartAddLineRejectsDuplicate(t *testing.T) {
	c := newTestCart(t, nil)
	p := testProduct(1, 10, "2.00")

	_, err := c.AddLine(p, 2, "L", "red")
	require.NoError(t, err)

	_, err = c.AddLine(p, 1, " L ", "red")
	assert.ErrorIs(t, err, ErrDuplicateLine)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	// a different size is a different line
	_, err = c.AddLine(p, 1, "S", "red")
	require.NoError(t, err)
	assert.Len(t, c.Lines(), 2)
}

func TestCartAddLineValidation(t *testing.T) {
	p := testProduct(1, 10, "2.00")

	tests := []struct {
		name    string
		product *models.Product
		qty     int
		size    string
		color   string
		want    error
	}{
		{name: "zero quantity", product: p, qty: 0, want: ErrValidation},
		{name: "negative quantity", product: p, qty: -2, want: ErrValidation},
		{name: "unknown size", product: p, qty: 1, size: "XXL", want: ErrValidation},
		{name: "unknown color", product: p, qty: 1, color: "green", want: ErrValidation},
		{name: "missing product", product: nil, qty: 1, want: ErrProductNotFound},
		{name: "inactive product", product: &models.Product{ID: 2, Stock: 5}, qty: 1, want: ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCart(t, nil)
			_, err := c.AddLine(tt.product, tt.qty, tt.size, tt.color)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, c.Lines())
		})
	}
}

func TestCartUpdateToZeroRemoves(t *testing.T) {
	p := testProduct(1, 10, "2.00")

	a := newTestCart(t, nil)
	b := newTestCart(t, nil)
	for _, c := range []*Cart{a, b} {
		_, err := c.AddLine(p, 2, "S", "")
		require.NoError(t, err)
		_, err = c.AddLine(p, 1, "M", "")
		require.NoError(t, err)
	}

	key := models.NewLineKey(1, "S", "")
	res := a.UpdateQuantity(key, 0)
	assert.True(t, res.Removed)
	assert.True(t, b.RemoveLine(key))

	assert.Equal(t, a.Lines(), b.Lines())
	assert.Equal(t, 1, a.Count())
}

func TestCartUnknownKeyIsNoop(t *testing.T) {
	c := newTestCart(t, nil)
	_, err := c.AddLine(testProduct(1, 10, "2.00"), 1, "", "")
	require.NoError(t, err)

	res := c.UpdateQuantity(models.NewLineKey(99, "", ""), 3)
	assert.False(t, res.Found)
	assert.False(t, c.RemoveLine(models.NewLineKey(1, "S", "")))
	assert.Equal(t, 1, c.Count())
}

func TestCartCountAndSubtotal(t *testing.T) {
	c := newTestCart(t, nil)
	assert.Equal(t, 0, c.Count())
	assert.True(t, c.Subtotal().IsZero())

	_, err := c.AddLine(testProduct(1, 10, "2.50"), 3, "", "")
	require.NoError(t, err)
	_, err = c.AddLine(testProduct(2, 10, "0.10"), 2, "", "")
	require.NoError(t, err)

	assert.Equal(t, 5, c.Count())
	assert.True(t, decimal.RequireFromString("7.70").Equal(c.Subtotal()), c.Subtotal().String())

	view := c.View()
	assert.Equal(t, 5, view.Count)
	assert.Len(t, view.Lines, 2)

	c.Clear()
	assert.Equal(t, 0, c.Count())
	assert.Empty(t, c.Lines())
}

func TestCartPreservesInsertionOrder(t *testing.T) {
	c := newTestCart(t, nil)
	for _, id := range []int{3, 1, 2} {
		_, err := c.AddLine(testProduct(id, 5, "1.00"), 1, "", "")
		require.NoError(t, err)
	}
	c.UpdateQuantity(models.NewLineKey(1, "", ""), 4)

	var ids []int
	for _, l := range c.Lines() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []int{3, 1, 2}, ids)
}

func TestCartRemoveLinesKeepsOthers(t *testing.T) {
	c := newTestCart(t, nil)
	for _, id := range []int{1, 2, 3} {
		_, err := c.AddLine(testProduct(id, 5, "1.00"), 1, "M", "")
		require.NoError(t, err)
	}

	removed := c.RemoveLines([]models.LineKey{
		{ProductID: 1, Size: " M "},
		models.NewLineKey(3, "M", ""),
		models.NewLineKey(9, "", ""),
	})

	assert.Equal(t, 2, removed)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].ProductID)
	assert.Zero(t, c.RemoveLines(nil))
}

func TestCartInvariantsUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []*models.Product{
		testProduct(1, 3, "1.00"),
		testProduct(2, 7, "2.25"),
		testProduct(3, 1, "9.99"),
	}
	sizes := []string{"", "S", "M"}
	c := newTestCart(t, nil)

	for i := 0; i < 2000; i++ {
		p := products[rng.Intn(len(products))]
		size := sizes[rng.Intn(len(sizes))]
		key := models.NewLineKey(p.ID, size, "")

		switch rng.Intn(5) {
		case 0, 1:
			_, _ = c.AddLine(p, rng.Intn(10)-2, size, "")
		case 2:
			c.UpdateQuantity(key, rng.Intn(12)-3)
		case 3:
			c.RemoveLine(key)
		case 4:
			if rng.Intn(20) == 0 {
				c.Clear()
			}
		}

		sum := 0
		seen := make(map[models.LineKey]bool)
		for _, l := range c.Lines() {
			require.GreaterOrEqual(t, l.Quantity, 1)
			require.LessOrEqual(t, l.Quantity, l.Stock)
			require.False(t, seen[l.Key()], "duplicate key %s", l.Key())
			seen[l.Key()] = true
			sum += l.Quantity
		}
		require.Equal(t, sum, c.Count())
	}
}

func TestCartPersistsLatestSnapshot(t *testing.T) {
	store := newMemCartStore()
	c := newTestCart(t, store)

	_, err := c.AddLine(testProduct(1, 10, "12.50"), 2, "M", "red")
	require.NoError(t, err)
	_, err = c.AddLine(testProduct(2, 10, "3.00"), 1, "", "")
	require.NoError(t, err)
	c.UpdateQuantity(models.NewLineKey(1, "M", "red"), 4)

	require.NoError(t, c.Flush(context.Background()))

	snap, err := store.Load(context.Background(), "guest:test")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, models.CartSnapshotVersion, snap.Version)

	reloaded := NewCart("guest:test", snap, store, zap.NewNop())
	defer reloaded.Close(context.Background())

	want, got := c.Lines(), reloaded.Lines()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Key(), got[i].Key())
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.Equal(t, want[i].Stock, got[i].Stock)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice))
	}
	assert.True(t, c.Subtotal().Equal(reloaded.Subtotal()))
}

func TestCartPersistCoalesces(t *testing.T) {
	store := newMemCartStore()
	store.started = make(chan struct{})
	store.release = make(chan struct{})
	c := newTestCart(t, store)
	p := testProduct(1, 100, "1.00")

	line, err := c.AddLine(p, 1, "", "")
	require.NoError(t, err)

	select {
	case <-store.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first save never started")
	}

	for q := 2; q <= 10; q++ {
		c.UpdateQuantity(line.Key(), q)
	}
	close(store.release)

	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 2, store.saveCount())

	snap, err := store.Load(context.Background(), "guest:test")
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 10, snap.Lines[0].Quantity)
}

func TestCartPersistFailureKeepsMemory(t *testing.T) {
	store := newMemCartStore()
	store.saveErr = errStoreDown
	c := newTestCart(t, store)

	_, err := c.AddLine(testProduct(1, 10, "1.00"), 2, "", "")
	require.NoError(t, err)

	err = c.Flush(context.Background())
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, "guest:test", perr.SessionID)

	assert.Equal(t, 2, c.Count())
}

func TestCartFlushWithoutChanges(t *testing.T) {
	store := newMemCartStore()
	c := newTestCart(t, store)
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 0, store.saveCount())
}
