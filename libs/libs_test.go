package libs

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/config"
	"storefront/models"
)

func TestEventPublisherWithoutBrokers(t *testing.T) {
	p := NewEventPublisher(nil, zap.NewNop())
	assert.Nil(t, p.writer)
	require.NoError(t, p.Publish(context.Background(), "review.submitted", "1", map[string]int{"rating": 5}))
	assert.NoError(t, p.Close())
}

func TestEventPublisherRejectsUnencodablePayload(t *testing.T) {
	p := NewEventPublisher(nil, zap.NewNop())
	err := p.Publish(context.Background(), "order.placed", "1", make(chan int))
	assert.Error(t, err)
}

func TestNewMailerRequiresSMTP(t *testing.T) {
	_, err := NewMailer(&config.Config{SMTPHost: "smtp.example.com"})
	assert.ErrorIs(t, err, ErrSMTPNotConfigured)
}

func TestOrderConfirmationBodyEscapes(t *testing.T) {
	order := &models.Order{
		OrderNumber: "ORD-1",
		FullName:    "<b>Ann</b>",
		Total:       decimal.RequireFromString("12.5"),
		Items: []models.OrderItem{
			{ProductName: "Latte & Co", Quantity: 2, UnitPrice: decimal.RequireFromString("6.25")},
		},
	}
	body := orderConfirmationBody(order)
	assert.Contains(t, body, "&lt;b&gt;Ann&lt;/b&gt;")
	assert.Contains(t, body, "Latte &amp; Co")
	assert.Contains(t, body, "12.50")
	assert.Contains(t, body, "6.25")
}

func TestNewImageUploaderRequiresCredentials(t *testing.T) {
	_, err := NewImageUploader(&config.Config{}, "products")
	assert.ErrorIs(t, err, ErrCloudinaryNotConfigured)

	u, err := NewImageUploader(&config.Config{
		CloudinaryCloudName: "demo", CloudinaryAPIKey: "key", CloudinaryAPISecret: "secret",
	}, "products")
	require.NoError(t, err)
	assert.NoError(t, u.Delete(context.Background(), ""))
}
