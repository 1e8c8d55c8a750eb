package libs

import (
	"errors"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"storefront/config"
	"storefront/models"
)

var ErrSMTPNotConfigured = errors.New("SMTP configuration missing")

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) (*Mailer, error) {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" {
		return nil, ErrSMTPNotConfigured
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   from,
	}, nil
}

func (m *Mailer) SendOrderConfirmation(order *models.Order) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s", order.OrderNumber))
	msg.SetBody("text/html", orderConfirmationBody(order))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func orderConfirmationBody(order *models.Order) string {
	rows := ""
	for _, it := range order.Items {
		rows += fmt.Sprintf(`<tr><td>%s</td><td>%d</td><td>%s</td></tr>`,
			html.EscapeString(it.ProductName), it.Quantity, it.UnitPrice.StringFixed(2))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px;">
        <h2 style="color: #333;">Order Confirmation</h2>
        <p>Hello %s, thank you for your order!</p>
        <div style="background-color: #fff7ed; padding: 20px; margin: 20px 0; border-radius: 8px;">
            <p><strong>Order Number:</strong> %s</p>
            <table width="100%%">%s</table>
            <p><strong>Total Amount:</strong> %s</p>
        </div>
        <p>Your order has been received and is being processed.</p>
    </div>
</body>
</html>
	`, html.EscapeString(order.FullName), html.EscapeString(order.OrderNumber), rows, order.Total.StringFixed(2))
}
