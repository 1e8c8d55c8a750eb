package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/models"
	"storefront/repositories"
	"storefront/utils"
)

const TopicOrderPlaced = "order.placed"

var DoorDeliveryFee = decimal.NewFromInt(10000)

type OrderStore interface {
	PlaceOrder(ctx context.Context, order *models.Order) error
	GetByUser(ctx context.Context, userID, limit, offset int) ([]models.Order, int, error)
	GetAll(ctx context.Context, status string, limit, offset int) ([]models.Order, int, error)
	UpdateStatus(ctx context.Context, id int, status string) error
}

type OrderMailer interface {
	SendOrderConfirmation(order *models.Order) error
}

type OrderPlacedEvent struct {
	EventID  uuid.UUID    `json:"event_id"`
	Order    models.Order `json:"order"`
	PlacedAt time.Time    `json:"placed_at"`
}

type OrderService struct {
	orders OrderStore
	mailer OrderMailer
	events EventPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewOrderService accepts nil mailer and events; confirmations and events are
// then skipped.
func NewOrderService(orders OrderStore, mailer OrderMailer, events EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, mailer: mailer, events: events, logger: logger, now: time.Now}
}

// Checkout turns the cart into an order at the unit prices captured in the
// cart. Stock is checked again under lock. Once the order is committed the
// ordered lines leave the cart; lines added meanwhile stay.
func (s *OrderService) Checkout(ctx context.Context, buyer *models.Identity, cart *Cart, req models.CheckoutRequest) (*models.Order, error) {
	if buyer == nil || buyer.UserID <= 0 {
		return nil, ErrUnauthenticated
	}
	lines := cart.Lines()
	order, err := s.buildOrder(buyer, lines, req)
	if err != nil {
		return nil, err
	}

	if err := s.orders.PlaceOrder(ctx, order); err != nil {
		return nil, checkoutError(err)
	}
	ordered := make([]models.LineKey, len(lines))
	for i, l := range lines {
		ordered[i] = l.Key()
	}
	cart.RemoveLines(ordered)
	ordersPlaced.Inc()

	s.logger.Info("order placed",
		zap.Int("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("user_id", buyer.UserID),
		zap.String("total", order.Total.StringFixed(2)))

	s.notify(ctx, order)
	return order, nil
}

func (s *OrderService) buildOrder(buyer *models.Identity, lines []models.CartLine, req models.CheckoutRequest) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	method := strings.ToLower(strings.TrimSpace(req.DeliveryMethod))
	if method == "" {
		method = models.DeliveryDineIn
	}
	if method != models.DeliveryDineIn && method != models.DeliveryDoor && method != models.DeliveryPickUp {
		return nil, invalid("delivery_method", "must be one of %s, %s, %s",
			models.DeliveryDineIn, models.DeliveryDoor, models.DeliveryPickUp)
	}
	address := strings.TrimSpace(req.Address)
	if method == models.DeliveryDoor && address == "" {
		return nil, invalid("address", "is required for door delivery")
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = buyer.Email
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "must be a valid email address")
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		fullName = buyer.Name
	}

	order := &models.Order{
		OrderNumber:    s.orderNumber(),
		UserID:         buyer.UserID,
		Status:         models.OrderStatusPending,
		Email:          email,
		FullName:       fullName,
		Address:        address,
		DeliveryMethod: method,
		Subtotal:       subtotal(lines),
		DeliveryFee:    decimal.Zero,
	}
	if method == models.DeliveryDoor {
		order.DeliveryFee = DoorDeliveryFee
	}
	order.Total = order.Subtotal.Add(order.DeliveryFee)

	for _, l := range lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Size:        l.Size,
			Color:       l.Color,
		})
	}
	return order, nil
}

func (s *OrderService) orderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", s.now().UTC().Format("20060102"), suffix)
}

func (s *OrderService) notify(ctx context.Context, order *models.Order) {
	if s.mailer != nil {
		if err := s.mailer.SendOrderConfirmation(order); err != nil {
			s.logger.Warn("order confirmation not sent", zap.String("order_number", order.OrderNumber), zap.Error(err))
		}
	}
	if s.events != nil {
		event := OrderPlacedEvent{EventID: uuid.New(), Order: *order, PlacedAt: order.CreatedAt}
		if err := s.events.Publish(ctx, TopicOrderPlaced, order.OrderNumber, event); err != nil {
			s.logger.Warn("order event not published", zap.String("order_number", order.OrderNumber), zap.Error(err))
		}
	}
}

func (s *OrderService) ListOrders(ctx context.Context, userID, page, limit int) (*models.PaginationResponse, error) {
	orders, total, err := s.orders.GetByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return orderPage("Order history retrieved successfully", orders, total, page, limit), nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, status string, page, limit int) (*models.PaginationResponse, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !validStatus(status) {
		return nil, invalid("status", "unknown order status %q", status)
	}
	orders, total, err := s.orders.GetAll(ctx, status, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return orderPage("Orders retrieved successfully", orders, total, page, limit), nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id int, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if !validStatus(status) {
		return invalid("status", "unknown order status %q", status)
	}
	err := s.orders.UpdateStatus(ctx, id, status)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

func orderPage(message string, orders []models.Order, total, page, limit int) *models.PaginationResponse {
	if orders == nil {
		orders = []models.Order{}
	}
	return &models.PaginationResponse{
		Success: true,
		Message: message,
		Data:    orders,
		Meta: models.PaginationMeta{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: utils.TotalPages(total, limit),
		},
	}
}

func validStatus(status string) bool {
	for _, s := range models.OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func checkoutError(err error) error {
	var shortage *repositories.StockShortageError
	switch {
	case errors.As(err, &shortage):
		return &InsufficientStockError{
			ProductID: shortage.ProductID,
			Requested: shortage.Requested,
			Available: shortage.Available,
		}
	case errors.Is(err, repositories.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, repositories.ErrTxAborted):
		return ErrTransactionAborted
	}
	return err
}
