package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/models"
)

// CartStore keeps one snapshot per shopping session. Load returns nil, nil
// when the session has never been saved.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*models.CartSnapshot, error)
	Save(ctx context.Context, sessionID string, snapshot models.CartSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// UpdateResult describes what UpdateQuantity did. Found is false when the key
// was not in the cart, in which case nothing changed.
type UpdateResult struct {
	Found   bool
	Removed bool
	Clamped bool
	Line    *models.CartLine
}

// Cart is the pending purchase set of one shopping session. Mutations apply
// to memory immediately and in call order; the full snapshot is then handed
// to a background writer, so the store may lag but always converges to the
// latest state.
type Cart struct {
	sessionID string
	logger    *zap.Logger

	mu    sync.Mutex
	lines []models.CartLine

	persist *persister
}

func NewCart(sessionID string, snapshot *models.CartSnapshot, store CartStore, logger *zap.Logger) *Cart {
	c := &Cart{
		sessionID: sessionID,
		logger:    logger.With(zap.String("cart_session", sessionID)),
	}
	if snapshot != nil {
		c.lines = append([]models.CartLine(nil), snapshot.Lines...)
	}
	c.persist = newPersister(sessionID, store, c.logger)
	return c
}

// AddLine appends a new line for product. An existing line with the same
// product, size and color is never merged: the call fails with
// ErrDuplicateLine and the cart is left as it was.
func (c *Cart) AddLine(product *models.Product, quantity int, size, color string) (models.CartLine, error) {
	if product == nil || !product.IsActive {
		return models.CartLine{}, ErrProductNotFound
	}
	if quantity < 1 {
		return models.CartLine{}, invalid("quantity", "must be at least 1")
	}

	key := models.NewLineKey(product.ID, size, color)
	if !product.OffersSize(key.Size) {
		return models.CartLine{}, invalid("size", "%q is not available for this product", key.Size)
	}
	if !product.OffersColor(key.Color) {
		return models.CartLine{}, invalid("color", "%q is not available for this product", key.Color)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(key) >= 0 {
		return models.CartLine{}, ErrDuplicateLine
	}
	if quantity > product.Stock {
		return models.CartLine{}, &InsufficientStockError{
			ProductID: product.ID,
			Requested: quantity,
			Available: product.Stock,
		}
	}

	line := models.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		ImageURL:  product.ImageURL,
		UnitPrice: product.Price,
		Stock:     product.Stock,
		Quantity:  quantity,
		Size:      key.Size,
		Color:     key.Color,
	}
	c.lines = append(c.lines, line)
	c.changed()

	c.logger.Debug("line added", zap.Stringer("line", key), zap.Int("quantity", quantity))
	return line, nil
}

// UpdateQuantity sets a line's quantity. Zero or less removes the line and a
// value above the captured stock is clamped to it.
func (c *Cart) UpdateQuantity(key models.LineKey, quantity int) UpdateResult {
	key = models.NewLineKey(key.ProductID, key.Size, key.Color)

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(key)
	if i < 0 {
		return UpdateResult{}
	}
	if quantity <= 0 {
		c.removeAt(i)
		c.changed()
		return UpdateResult{Found: true, Removed: true}
	}

	res := UpdateResult{Found: true}
	if quantity > c.lines[i].Stock {
		quantity = c.lines[i].Stock
		res.Clamped = true
		c.logger.Info("quantity clamped to stock", zap.Stringer("line", key), zap.Int("stock", quantity))
	}
	c.lines[i].Quantity = quantity
	c.changed()

	line := c.lines[i]
	res.Line = &line
	return res
}

func (c *Cart) RemoveLine(key models.LineKey) bool {
	key = models.NewLineKey(key.ProductID, key.Size, key.Color)

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	c.changed()
	return true
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.changed()
}

// RemoveLines drops every line whose key is listed, keeping the others in
// order, and reports how many went. One snapshot covers the whole removal.
func (c *Cart) RemoveLines(keys []models.LineKey) int {
	drop := make(map[models.LineKey]bool, len(keys))
	for _, k := range keys {
		drop[models.NewLineKey(k.ProductID, k.Size, k.Color)] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]models.CartLine, 0, len(c.lines))
	for _, l := range c.lines {
		if !drop[l.Key()] {
			kept = append(kept, l)
		}
	}
	removed := len(c.lines) - len(kept)
	if removed > 0 {
		c.lines = kept
		c.changed()
	}
	return removed
}

func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	return subtotal(c.lines)
}

func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]models.CartLine{}, c.lines...)
}

func (c *Cart) View() models.CartView {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := models.CartView{
		SessionID: c.sessionID,
		Lines:     append([]models.CartLine{}, c.lines...),
		Subtotal:  subtotal(c.lines),
	}
	for _, l := range c.lines {
		view.Count += l.Quantity
	}
	return view
}

// Flush blocks until the newest snapshot has been written (or failed to be).
func (c *Cart) Flush(ctx context.Context) error {
	return c.persist.flush(ctx)
}

// Close flushes and stops the background writer. The cart must not be used
// afterwards.
func (c *Cart) Close(ctx context.Context) error {
	return c.persist.close(ctx)
}

func (c *Cart) indexOf(key models.LineKey) int {
	for i, l := range c.lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
}

// changed must be called with c.mu held so snapshots reach the writer in
// mutation order.
func (c *Cart) changed() {
	c.persist.schedule(models.CartSnapshot{
		Version: models.CartSnapshotVersion,
		Lines:   append([]models.CartLine{}, c.lines...),
		SavedAt: time.Now().UTC(),
	})
}

func subtotal(lines []models.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}
