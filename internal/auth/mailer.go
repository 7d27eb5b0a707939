// internal/auth/mailer.go
package auth

import (
	"fmt"

	"whispr/internal/config"

	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers OTP emails over SMTP.
type SMTPMailer struct {
	cfg *config.SMTPConfig
}

func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendOTP(email, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("\"Whispr\" <%s>", m.cfg.From))
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your OTP for Whispr")
	msg.SetBody("text/html", fmt.Sprintf("<p>Your OTP is: <strong>%s</strong></p>", code))

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	return d.DialAndSend(msg)
}
