// Package email sends notification emails through Resend.
//
// Without an API key the client runs in dry-run mode: the rendered message is logged instead of
// being delivered.
package email

import (
	"context"
	"fmt"

	"github.com/deppfellow/apiplayground/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

type sendFunc func(ctx context.Context, params *resend.SendEmailRequest) error

type Client struct {
	send   sendFunc
	from   string
	logger *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	c := &Client{
		from:   fmt.Sprintf("%s <%s>", "API Playground", cfg.Integration.EmailFrom),
		logger: logger,
	}

	if cfg.Integration.ResendAPIKey == "" {
		c.send = c.dryRun
		return c
	}

	client := resend.NewClient(cfg.Integration.ResendAPIKey)
	c.send = func(ctx context.Context, params *resend.SendEmailRequest) error {
		_, err := client.Emails.SendWithContext(ctx, params)
		return err
	}
	return c
}

func (c *Client) dryRun(_ context.Context, params *resend.SendEmailRequest) error {
	c.logger.Info().
		Strs("to", params.To).
		Str("subject", params.Subject).
		Msg("email delivery disabled, not sending")
	return nil
}

// SendEmail renders templateName with data and sends it to a single recipient.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data map[string]string) error {
	body, err := Render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}

	if err := c.send(ctx, params); err != nil {
		return errors.Wrap(err, "failed to send email")
	}
	return nil
}
