// Package email sends transactional mail over SMTP.
package email

import (
	"fmt"
	"net/smtp"

	"github.com/example/order-service/internal/domain"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendOrderConfirmation sends an order confirmation email for a created
// order event.
func (s *Service) SendOrderConfirmation(to string, event domain.OrderEvent) error {
	subject := fmt.Sprintf("Order Confirmation - #%d", event.OrderID)
	body := BuildOrderConfirmationBody(event)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
