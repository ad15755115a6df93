// Package mailer sends the api's outgoing email.
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/config"
)

// Message is one outgoing email
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Plain   string
	HTML    string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns a sendgrid sender when an api key is configured and a log-only sender otherwise
func New(conf *config.Config) Sender {
	if conf.SendgridAPIKey == "" {
		zap.S().Warn("SENDGRID_API_KEY is not set, outgoing email will only be logged")
		return LogSender{}
	}
	return &SendgridSender{
		client:   sendgrid.NewSendClient(conf.SendgridAPIKey),
		fromName: conf.MailFromName,
		from:     conf.MailFrom,
	}
}

// SendgridSender delivers through the sendgrid v3 api
type SendgridSender struct {
	client   *sendgrid.Client
	fromName string
	from     string
}

func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Plain, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender only logs what would have been sent
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	zap.S().Infow("email not sent, no mail provider configured", "to", msg.ToEmail, "subject", msg.Subject)
	return nil
}
