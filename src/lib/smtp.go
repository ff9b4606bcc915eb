package lib

import (
	"cinco/src/config"
	"context"
	"log"

	"github.com/wneessen/go-mail"
)

// EmailSender delivers one HTML message to a single recipient.
type EmailSender interface {
	Name() string
	SendEmail(ctx context.Context, to, subject, html string) error
}

func GetSMTPClient() (*mail.Client, error) {
	c, err := mail.NewClient(
		config.SMTPHost(),
		mail.WithPort(config.SMTPPort()),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(config.SMTPUsername()),
		mail.WithPassword(config.SMTPPassword()),
	)
	if err != nil {
		log.Printf("Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return c, nil
}

type SendMailInput struct {
	From     string
	FromName string
	To       string
	Subject  string
	Body     string
}

// NewMailMessage builds an HTML message from input.
func NewMailMessage(input *SendMailInput) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(input.FromName, input.From); err != nil {
		return nil, err
	}
	if err := msg.To(input.To); err != nil {
		return nil, err
	}
	msg.Subject(input.Subject)
	msg.SetBodyString(mail.TypeTextHTML, input.Body)
	return msg, nil
}

type SMTPEmailSender struct {
	From     string
	FromName string
}

func NewSMTPEmailSender() *SMTPEmailSender {
	return &SMTPEmailSender{From: config.MailFrom(), FromName: config.MailFromName()}
}

func (s *SMTPEmailSender) Name() string { return "SMTP" }

func (s *SMTPEmailSender) SendEmail(ctx context.Context, to, subject, html string) error {
	msg, err := NewMailMessage(&SendMailInput{
		From:     s.From,
		FromName: s.FromName,
		To:       to,
		Subject:  subject,
		Body:     html,
	})
	if err != nil {
		return err
	}
	c, err := GetSMTPClient()
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

var emailSender EmailSender

func GetEmailSender() EmailSender {
	if emailSender != nil {
		return emailSender
	}
	if config.EmailProvider() != "smtp" {
		log.Printf("[Email] No sender registered for provider %s\n", config.EmailProvider())
		return nil
	}
	emailSender = NewSMTPEmailSender()
	return emailSender
}

// NewEmailSender Replace email sender instance with custom implementation
func NewEmailSender(s EmailSender) {
	emailSender = s
}
