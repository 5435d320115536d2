package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/riverbend-alliance/portal-backend/pkg/config"
	"github.com/riverbend-alliance/portal-backend/pkg/logger"
)

var errAPIKeyRequired = errors.New("sendgrid api key is required")

// Sender delivers transactional email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to, subject, plainText string) error
}

// Client wraps the SendGrid API with a configured default sender.
type Client struct {
	api  *sendgrid.Client
	from *mail.Email
	logg *logger.Logger
}

// NewClient builds a SendGrid-backed sender from configuration.
func NewClient(cfg config.SendgridConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	from := strings.TrimSpace(cfg.DefaultFrom)
	if from == "" {
		return nil, fmt.Errorf("sendgrid default from address is required")
	}

	return &Client{
		api:  sendgrid.NewSendClient(apiKey),
		from: mail.NewEmail("Riverbend Alliance", from),
		logg: logg,
	}, nil
}

// Send delivers a plain-text message to a single recipient.
func (c *Client) Send(ctx context.Context, to, subject, plainText string) error {
	if c == nil || c.api == nil {
		return errors.New("email client is not configured")
	}
	recipient := strings.TrimSpace(to)
	if recipient == "" {
		return errors.New("recipient address is required")
	}

	message := mail.NewSingleEmail(c.from, subject, mail.NewEmail("", recipient), plainText, "")
	resp, err := c.api.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}

	if c.logg != nil {
		c.logg.Info(ctx, fmt.Sprintf("email sent to %s (%s)", recipient, subject))
	}
	return nil
}

// Noop is a Sender that drops messages, used when SendGrid is not configured.
type Noop struct {
	logg *logger.Logger
}

// NewNoop builds a sender that logs and discards mail.
func NewNoop(logg *logger.Logger) *Noop {
	return &Noop{logg: logg}
}

func (n *Noop) Send(ctx context.Context, to, subject, _ string) error {
	if n != nil && n.logg != nil {
		n.logg.Info(ctx, fmt.Sprintf("email delivery disabled, dropping %q to %s", subject, to))
	}
	return nil
}
