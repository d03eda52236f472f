package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/virginiacakes/storefront-backend/config"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/websocket"
	"github.com/virginiacakes/storefront-backend/pkg/logger"
	"github.com/virginiacakes/storefront-backend/pkg/mailer"
)

// covers an SMTP attempt plus the Resend fallback
const emailSendTimeout = 15 * time.Second

// NotificationService sends transactional emails and admin feed events.
// Every method is fire-and-forget: failures are logged, never returned.
type NotificationService interface {
	TransferSubmitted(order *model.Order, transfer *model.BankTransfer)
	TransferConfirmed(order *model.Order, transfer *model.BankTransfer, customerEmail string)
	OrderPaid(order *model.Order)
	OrderStatusChanged(orderID uint, status model.OrderStatus)
	CustomOrderSubmitted(order *model.CustomOrder)
	PasswordReset(email, link string)
	StalePendingDigest(orders []model.Order, transfers []model.BankTransfer)
}

type notificationService struct {
	sender mailer.Sender
	feed   websocket.Broadcaster
	cfg    config.EmailConfig
}

// NewNotificationService wires the mail sender and the admin feed. feed may be nil.
func NewNotificationService(sender mailer.Sender, feed websocket.Broadcaster, cfg config.EmailConfig) NotificationService {
	return &notificationService{
		sender: sender,
		feed:   feed,
		cfg:    cfg,
	}
}

func (s *notificationService) publish(eventType string, payload map[string]interface{}) {
	if s.feed == nil {
		return
	}
	s.feed.Broadcast(websocket.Event{Type: eventType, Payload: payload, At: time.Now()})
}

func (s *notificationService) send(msg mailer.Message) {
	if len(msg.To) == 0 || msg.To[0] == "" {
		logger.Warn("Email skipped: no recipient configured", map[string]interface{}{
			"subject": msg.Subject,
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), emailSendTimeout)
	defer cancel()

	if err := s.sender.Send(ctx, msg); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":      msg.To,
			"subject": msg.Subject,
		})
	}
}

func (s *notificationService) TransferSubmitted(order *model.Order, transfer *model.BankTransfer) {
	s.publish(websocket.EventTransferSubmitted, map[string]interface{}{
		"order_id":     order.ID,
		"transfer_id":  transfer.ID,
		"user_id":      transfer.UserID,
		"payer_name":   transfer.PayerName,
		"amount_naira": transfer.AmountNaira,
	})
}

func (s *notificationService) TransferConfirmed(order *model.Order, transfer *model.BankTransfer, customerEmail string) {
	s.publish(websocket.EventTransferVerified, map[string]interface{}{
		"order_id":    order.ID,
		"transfer_id": transfer.ID,
		"total_naira": order.TotalNaira,
	})

	html, err := render(transferConfirmedTmpl, map[string]interface{}{
		"Brand":     s.cfg.BrandName,
		"Order":     order,
		"Transfer":  transfer,
		"Email":     orNA(customerEmail),
		"Reference": orNA(transfer.TransferReference),
		"PaidAt":    formatTime(transfer.PaidAt),
	})
	if err != nil {
		logger.Error("Failed to render transfer email", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return
	}

	s.send(mailer.Message{
		To:      []string{s.cfg.AdminAddress},
		Subject: fmt.Sprintf("%s: Order Confirmed #%d - %s", s.cfg.BrandName, order.ID, FormatNaira(order.TotalNaira)),
		HTML:    html,
	})
}

func (s *notificationService) OrderPaid(order *model.Order) {
	s.publish(websocket.EventOrderPaid, map[string]interface{}{
		"order_id":          order.ID,
		"user_id":           order.UserID,
		"total_naira":       order.TotalNaira,
		"payment_reference": order.PaymentReference,
	})
}

func (s *notificationService) OrderStatusChanged(orderID uint, status model.OrderStatus) {
	s.publish(websocket.EventOrderStatus, map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
}

func (s *notificationService) CustomOrderSubmitted(order *model.CustomOrder) {
	s.publish(websocket.EventCustomOrder, map[string]interface{}{
		"custom_order_id": order.ID,
		"user_id":         order.UserID,
		"cake_type":       order.CakeType,
		"delivery_date":   order.DeliveryDate,
	})
}

func (s *notificationService) PasswordReset(email, link string) {
	html, err := render(passwordResetTmpl, map[string]interface{}{
		"Brand": s.cfg.BrandName,
		"Link":  link,
	})
	if err != nil {
		logger.Error("Failed to render password reset email", err)
		return
	}

	s.send(mailer.Message{
		To:      []string{email},
		Subject: s.cfg.BrandName + ": Reset your password",
		HTML:    html,
	})
}

func (s *notificationService) StalePendingDigest(orders []model.Order, transfers []model.BankTransfer) {
	if len(orders) == 0 && len(transfers) == 0 {
		return
	}

	html, err := render(staleDigestTmpl, map[string]interface{}{
		"Brand":     s.cfg.BrandName,
		"Orders":    orders,
		"Transfers": transfers,
	})
	if err != nil {
		logger.Error("Failed to render digest email", err)
		return
	}

	s.send(mailer.Message{
		To:      []string{s.cfg.AdminAddress},
		Subject: fmt.Sprintf("%s: %d pending orders, %d unverified transfers", s.cfg.BrandName, len(orders), len(transfers)),
		HTML:    html,
	})
}

// FormatNaira renders whole naira with thousands separators, e.g. ₦13,000
func FormatNaira(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b bytes.Buffer
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "₦" + b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("2006-01-02 15:04")
}

var emailFuncs = template.FuncMap{
	"naira": FormatNaira,
	"line": func(it model.OrderItem) int64 {
		return it.LineTotal()
	},
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var transferConfirmedTmpl = template.Must(template.New("transfer_confirmed").Funcs(emailFuncs).Parse(`
<div style="font-family:Inter,Segoe UI,Arial,sans-serif;color:#333;background:#fff;padding:24px;">
  <h2 style="margin:0 0 6px 0;">{{.Brand}} - Order Confirmed</h2>
  <p style="margin:0 0 16px 0;color:#666;">Order <strong>#{{.Order.ID}}</strong> has been confirmed and marked as paid.</p>
  <div style="border:1px solid #F8C8DC;border-radius:12px;padding:16px;background:#fff5f8;">
    <h3 style="margin:0 0 10px 0;">Payer &amp; Transfer Details</h3>
    <p style="margin:0;">
      <strong>Name:</strong> {{.Transfer.PayerName}}<br/>
      <strong>Phone:</strong> {{.Transfer.Phone}}<br/>
      <strong>User Email:</strong> {{.Email}}<br/>
      <strong>Reference:</strong> {{.Reference}}<br/>
      <strong>Paid At:</strong> {{.PaidAt}}
    </p>
  </div>
  <h3 style="margin:18px 0 8px 0;">Items</h3>
  <table style="width:100%;border-collapse:collapse;border:1px solid #eee;">
    <thead>
      <tr style="background:#fafafa;"><th align="left">Item</th><th align="left">Qty</th><th align="left">Unit</th><th align="left">Total</th></tr>
    </thead>
    <tbody>
      {{range .Order.OrderItems}}<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{naira .UnitPriceNaira}}</td><td>{{naira (line .)}}</td></tr>
      {{end}}
    </tbody>
    <tfoot>
      <tr><td colspan="3" align="right"><strong>Grand Total</strong></td><td><strong>{{naira .Order.TotalNaira}}</strong></td></tr>
    </tfoot>
  </table>
  <p style="margin-top:16px;color:#999;font-size:12px;">{{.Brand}} - Admin confirmation email</p>
</div>`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<div style="font-family:Inter,Segoe UI,Arial,sans-serif;color:#333;padding:24px;">
  <h2>{{.Brand}}</h2>
  <p>We received a request to reset your password. The link below is valid for one hour.</p>
  <p><a href="{{.Link}}" style="background:#F8C8DC;color:#333;padding:10px 16px;border-radius:8px;text-decoration:none;">Reset password</a></p>
  <p style="color:#999;font-size:12px;">If you did not ask for this you can ignore this email.</p>
</div>`))

var staleDigestTmpl = template.Must(template.New("stale_digest").Funcs(emailFuncs).Parse(`
<div style="font-family:Inter,Segoe UI,Arial,sans-serif;color:#333;padding:24px;">
  <h2>{{.Brand}} - Awaiting action</h2>
  {{if .Transfers}}<h3>Unverified bank transfers</h3>
  <table style="width:100%;border-collapse:collapse;">
    <tr><th align="left">Transfer</th><th align="left">Order</th><th align="left">Payer</th><th align="left">Amount</th><th align="left">Submitted</th></tr>
    {{range .Transfers}}<tr><td>#{{.ID}}</td><td>{{if .OrderID}}#{{.OrderID}}{{else}}-{{end}}</td><td>{{.PayerName}} ({{.Phone}})</td><td>{{naira .AmountNaira}}</td><td>{{date .CreatedAt}}</td></tr>
    {{end}}
  </table>{{end}}
  {{if .Orders}}<h3>Pending orders</h3>
  <table style="width:100%;border-collapse:collapse;">
    <tr><th align="left">Order</th><th align="left">Method</th><th align="left">Total</th><th align="left">Placed</th></tr>
    {{range .Orders}}<tr><td>#{{.ID}}</td><td>{{.PaymentMethod}}</td><td>{{naira .TotalNaira}}</td><td>{{date .CreatedAt}}</td></tr>
    {{end}}
  </table>{{end}}
</div>`))
