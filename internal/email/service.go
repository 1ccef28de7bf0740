package email

import (
	"fmt"
	"net/smtp"

	"github.com/pkg/errors"
)

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host     string
	port     string
	from     string
	sendMail sendFunc
}

func NewService(host, port, from string) *Service {
	return &Service{
		host:     host,
		port:     port,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

// SendLowStockAlert tells to that a product is running out
func (s *Service) SendLowStockAlert(to string, alert LowStockAlert) error {
	subject := fmt.Sprintf("[Low stock] %s (%s): %d left", alert.Name, alert.SKU, alert.StockLevel)
	body := BuildLowStockAlertBody(alert)
	return errors.Wrapf(s.send(to, subject, body), "send low stock alert for %s", alert.SKU)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.sendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
