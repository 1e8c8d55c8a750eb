package repositories

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/models"
)

// StockShortageError is returned by PlaceOrder when a locked product row no
// longer has enough stock for the ordered quantity.
type StockShortageError struct {
	ProductID int
	Requested int
	Available int
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("product %d: requested %d, %d in stock", e.ProductID, e.Requested, e.Available)
}

type OrderRepository struct {
	db *pgxpool.Pool
	tx *TxRunner
}

func NewOrderRepository(db *pgxpool.Pool, tx *TxRunner) *OrderRepository {
	return &OrderRepository{db: db, tx: tx}
}

// PlaceOrder locks every ordered product, checks and decrements stock and
// writes the order with its items, all in one transaction. order.Items must
// be filled in; IDs and timestamps are set on success.
func (r *OrderRepository) PlaceOrder(ctx context.Context, order *models.Order) error {
	need := make(map[int]int)
	for _, it := range order.Items {
		need[it.ProductID] += it.Quantity
	}
	ids := make([]int, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	// a fixed lock order keeps two checkouts from deadlocking each other
	sort.Ints(ids)

	return r.tx.Run(ctx, "checkout", func(tx pgx.Tx) error {
		for _, id := range ids {
			var stock int
			err := tx.QueryRow(ctx,
				`SELECT stock FROM products WHERE id = $1 AND is_active = true FOR UPDATE`, id).Scan(&stock)
			if err != nil {
				return fmt.Errorf("lock product %d: %w", id, translate(err))
			}
			if stock < need[id] {
				return &StockShortageError{ProductID: id, Requested: need[id], Available: stock}
			}
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO orders (order_number, user_id, status, email, full_name, address, delivery_method,
				subtotal, delivery_fee, total, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			RETURNING id, created_at, updated_at`,
			order.OrderNumber, order.UserID, order.Status, order.Email, order.FullName, order.Address,
			order.DeliveryMethod, order.Subtotal, order.DeliveryFee, order.Total,
		).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return translate(err)
		}

		rows := make([][]interface{}, len(order.Items))
		for i := range order.Items {
			it := &order.Items[i]
			it.OrderID = order.ID
			rows[i] = []interface{}{order.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Size, it.Color}
		}
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"order_items"},
			[]string{"order_id", "product_id", "product_name", "quantity", "unit_price", "size", "color"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		for _, id := range ids {
			if _, err := tx.Exec(ctx,
				`UPDATE products SET stock = stock - $1, updated_at = now() WHERE id = $2`, need[id], id); err != nil {
				return err
			}
		}
		return nil
	})
}

const orderColumns = `id, order_number, user_id, status, email, full_name, address, delivery_method,
	subtotal, delivery_fee, total, created_at, updated_at`

func scanOrder(row pgx.CollectableRow) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.Email, &o.FullName, &o.Address,
		&o.DeliveryMethod, &o.Subtotal, &o.DeliveryFee, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *OrderRepository) GetByUser(ctx context.Context, userID, limit, offset int) ([]models.Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return r.withItems(ctx, rows, total)
}

// GetAll lists every order, optionally filtered by status.
func (r *OrderRepository) GetAll(ctx context.Context, status string, limit, offset int) ([]models.Order, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`, status).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return r.withItems(ctx, rows, total)
}

func (r *OrderRepository) withItems(ctx context.Context, rows pgx.Rows, total int) ([]models.Order, int, error) {
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, 0, err
	}
	if len(orders) == 0 {
		return orders, total, nil
	}

	ids := make([]int, len(orders))
	byID := make(map[int]*models.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	itemRows, err := r.db.Query(ctx, `SELECT id, order_id, product_id, product_name, quantity, unit_price,
		COALESCE(size, ''), COALESCE(color, '') FROM order_items WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, 0, err
	}
	items, err := pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (models.OrderItem, error) {
		var it models.OrderItem
		err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Size, &it.Color)
		return it, err
	})
	if err != nil {
		return nil, 0, err
	}
	for _, it := range items {
		o := byID[it.OrderID]
		o.Items = append(o.Items, it)
	}
	return orders, total, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
