// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/config"
	"github.com/ultrulas16/sinekapar/internal/i18n"
	"github.com/ultrulas16/sinekapar/internal/models"
)

// OrderNotifier is told about order lifecycle events. Implementations must
// not fail the operation that triggered them.
type OrderNotifier interface {
	OrderPlaced(order *models.Order)
	OrderStatusChanged(order *models.Order)
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NotificationService emails buyers about their orders over SMTP.
type NotificationService struct {
	config    config.EmailConfig
	send      sendMailFunc
	templates map[string]*template.Template
}

func NewNotificationService(cfg config.EmailConfig) *NotificationService {
	templates := make(map[string]*template.Template, len(emailTemplates))
	for name, body := range emailTemplates {
		templates[name] = template.Must(template.New(name).Parse(body))
	}
	return &NotificationService{
		config:    cfg,
		send:      smtp.SendMail,
		templates: templates,
	}
}

func (s *NotificationService) OrderPlaced(order *models.Order) {
	s.notify(order, "order_placed", i18n.KeyEmailOrderPlacedSubject)
}

func (s *NotificationService) OrderStatusChanged(order *models.Order) {
	s.notify(order, "order_status", i18n.KeyEmailOrderStatusSubject)
}

func (s *NotificationService) notify(order *models.Order, templateName, subjectKey string) {
	log := logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"template": templateName,
	})
	if order.ContactEmail == "" {
		log.Debug("Order has no contact email, skipping notification")
		return
	}

	lang := i18n.DefaultLanguage()
	data := map[string]interface{}{
		"OrderNumber": shortOrderNumber(order),
		"Status":      order.Status,
		"Items":       order.Items,
		"Subtotal":    order.Subtotal.StringFixed(2),
		"ShippingFee": order.ShippingFee.StringFixed(2),
		"VATAmount":   order.VATAmount.StringFixed(2),
		"Total":       order.TotalAmount.StringFixed(2),
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.StorefrontURL, order.ID),
	}

	body, err := s.render(templateName, data)
	if err != nil {
		log.WithError(err).Error("Failed to render email template")
		return
	}

	subject := i18n.T(lang, subjectKey, shortOrderNumber(order))
	if err := s.sendEmail(order.ContactEmail, subject, body); err != nil {
		log.WithError(err).Warn("Failed to send order email")
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, email not sent")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.config.FromEmail, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.SMTPHost, s.config.SMTPPort)
	return s.send(addr, auth, s.config.FromEmail, []string{to}, msg)
}

func (s *NotificationService) render(name string, data interface{}) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func shortOrderNumber(order *models.Order) string {
	return order.ID.String()[:8]
}

var emailTemplates = map[string]string{
	"order_placed": `<!DOCTYPE html>
<html>
<body>
	<h2>Siparişiniz alındı / Order received #{{.OrderNumber}}</h2>
	<table>
	{{range .Items}}<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{.LineTotal.StringFixed 2}}</td></tr>
	{{end}}</table>
	<p>Ara toplam / Subtotal: {{.Subtotal}}</p>
	<p>KDV / VAT: {{.VATAmount}}</p>
	<p>Kargo / Shipping: {{.ShippingFee}}</p>
	<p><strong>Toplam / Total: {{.Total}}</strong></p>
	<a href="{{.OrderURL}}">{{.OrderURL}}</a>
</body>
</html>`,
	"order_status": `<!DOCTYPE html>
<html>
<body>
	<h2>#{{.OrderNumber}}: {{.Status}}</h2>
	<a href="{{.OrderURL}}">{{.OrderURL}}</a>
</body>
</html>`,
}
