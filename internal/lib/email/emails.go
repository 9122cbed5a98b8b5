package email

import "context"

// SendNotification delivers a short notification message.
func (c *Client) SendNotification(ctx context.Context, to, message string) error {
	return c.SendEmail(ctx, to, "You have a new notification", TemplateNotification, map[string]string{
		"Recipient": to,
		"Message":   message,
		"Service":   "API Playground",
	})
}
