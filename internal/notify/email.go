// Package notify sends transactional email over SMTP.
package notify

import (
	"fmt"

	"github.com/paytrack/paytrack-api/internal/config"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers mail through the configured SMTP relay
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(cfg *config.Config) *EmailSender {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)
	return &EmailSender{dialer: dialer, from: cfg.SMTP.From}
}

func (s *EmailSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendVerificationCode mails a newly registered user their email
// verification code.
func (s *EmailSender) SendVerificationCode(to, name, code string) error {
	subject := "Verify your PayTrack account"
	body := fmt.Sprintf(`
		<h2>Welcome to PayTrack, %s</h2>
		<p>Your verification code is:</p>
		<h1>%s</h1>
		<p>The code expires in 24 hours.</p>
	`, name, code)
	return s.Send(to, subject, body)
}
