package utils

import (
	"context"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(to) == 0 {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}

// LogMailer is used when no SMTP relay is configured; it only records what would have been sent.
type LogMailer struct {
	Log *logrus.Logger
}

func (m *LogMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	m.Log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("email not sent: SMTP relay not configured")
	return nil
}
