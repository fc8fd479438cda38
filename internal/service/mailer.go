package service

import (
	"log"

	"gopkg.in/gomail.v2"

	"github.com/UniqBrio/UniqBrio-sub014/internal/config"
)

// Mailer delivers a single HTML email
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewMailer returns an SMTP mailer, or a log-only mailer when SMTP is not configured
func NewMailer(cfg config.SMTPConfig) Mailer {
	if !cfg.Enabled() {
		log.Println("Warning: SMTP_HOST not set, emails will only be logged")
		return LogMailer{}
	}
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("[Mailer] ERROR: failed to send to %s: %v", to, err)
		return err
	}
	log.Printf("[Mailer] sent %q to %s", subject, to)
	return nil
}

// LogMailer writes emails to the log instead of sending them
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("[Mailer] (log only) to=%s subject=%q", to, subject)
	return nil
}
