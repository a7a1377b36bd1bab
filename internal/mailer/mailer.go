// Package mailer delivers plain-text email through SMTP, SendGrid, or the log.
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/logger"
)

// Message is a single plain-text email.
type Message struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer selected by cfg.Provider.
func New(cfg config.EmailConfig) (Mailer, error) {
	switch cfg.Provider {
	case config.EmailSMTP:
		return NewSMTPMailer(cfg.SMTP, cfg.From, cfg.FromName), nil
	case config.EmailSendGrid:
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.From, cfg.FromName), nil
	case config.EmailLog, "":
		return NewLogMailer(), nil
	}
	return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
}

type smtpMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPMailer(cfg config.SMTPConfig, from, fromName string) Mailer {
	return &smtpMailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:     from,
		fromName: fromName,
	}
}

func (s *smtpMailer) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	logger.ExternalServiceCall("smtp", "DialAndSend", "to", msg.To)
	err := s.dialer.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "DialAndSend", err)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridMailer(apiKey, from, fromName string) Mailer {
	return &sendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (s *sendGridMailer) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, "")
	if msg.ReplyTo != "" {
		message.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}

	logger.ExternalServiceCall("sendgrid", "Send", "to", msg.To)
	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "Send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err)
	return err
}

type logMailer struct{}

// NewLogMailer writes messages to the log instead of sending them.
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) Send(ctx context.Context, msg Message) error {
	logger.InfoContext(ctx, "Email (log provider)", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
